package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"portfolio-scene/internal/scene"
)

// Texture is a decoded-header image on disk; the renderer uploads it.
type Texture struct {
	Path          string
	Width, Height int
}

// Options configures a Registry.
type Options struct {
	Root             string // base for relative paths
	CacheDir         string // downloads land here
	Retries          int
	MaxBackdropWidth int
	Logger           zerolog.Logger
}

// settler is the part of a Handle the registry tracks regardless of its value type.
type settler interface {
	Name() string
	Done() <-chan struct{}
	Err() error
}

type entry struct {
	h      settler
	object func() *scene.Object // nil for non-model handles
	polled bool
}

// Registry starts loads in the background and hands finished objects to the main loop.
// Loads never touch the scene graph; Poll returns what has arrived so the caller can add it.
type Registry struct {
	root     string
	fetcher  *Fetcher
	maxWidth int
	log      zerolog.Logger

	mu      sync.Mutex
	entries []*entry
	sealed  bool
	closed  bool
	ready   chan struct{}
	wg      sync.WaitGroup

	total   atomic.Int32
	settled atomic.Int32
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	cache := opts.CacheDir
	if cache == "" {
		cache = filepath.Join(opts.Root, "cache")
	}
	return &Registry{
		root:     opts.Root,
		fetcher:  NewFetcher(cache, opts.Retries),
		maxWidth: opts.MaxBackdropWidth,
		log:      opts.Logger,
		ready:    make(chan struct{}),
	}
}

func (r *Registry) track(h settler, object func() *scene.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		r.log.Warn().Str("asset", h.Name()).Msg("load started after seal; not counted for ready")
	}
	r.entries = append(r.entries, &entry{h: h, object: object})
	r.total.Add(1)
	r.wg.Add(1)
}

func (r *Registry) finish() {
	r.settled.Add(1)
	r.wg.Done()
}

// resolve returns a local path for src, downloading remote sources.
func (r *Registry) resolve(ctx context.Context, src string) (string, error) {
	if IsRemote(src) {
		return r.fetcher.Fetch(ctx, src)
	}
	path := src
	if !filepath.IsAbs(path) && r.root != "" {
		path = filepath.Join(r.root, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// LoadModel builds the object for spec in the background: glTF bounds for models, a unit box for
// cubes and spheres, and a resolved texture when one is set.
func (r *Registry) LoadModel(ctx context.Context, spec ObjectSpec) *Handle[*scene.Object] {
	h := newHandle[*scene.Object](spec.Name)
	r.track(h, func() *scene.Object {
		obj, _ := h.Value()
		return obj
	})
	go func() {
		defer r.finish()
		obj, err := r.loadModel(ctx, spec)
		if err == nil && ctx.Err() != nil {
			obj, err = nil, ctx.Err()
		}
		h.settle(obj, err)
	}()
	return h
}

func (r *Registry) loadModel(ctx context.Context, spec ObjectSpec) (*scene.Object, error) {
	obj := spec.NewObject()
	switch obj.Kind {
	case scene.KindModel:
		path, err := r.resolve(ctx, spec.Path)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", spec.Name, err)
		}
		leaves, err := ReadModelBounds(path)
		if err != nil {
			return nil, err
		}
		obj.Source = path
		for _, l := range leaves {
			obj.AddMesh(l.Name, l.Bounds, l.Triangles)
		}
	case scene.KindSphere:
		// unit diameter, sized by Transform.Scale
		obj.AddLeaf(spec.Name, scene.CenteredBox(mgl32.Vec3{1, 1, 1})).Shape = scene.ShapeSphere
	default:
		obj.AddLeaf(spec.Name, scene.CenteredBox(mgl32.Vec3{1, 1, 1}))
	}
	if spec.Texture != "" {
		tex, err := r.loadTexture(ctx, spec.Texture)
		if err != nil {
			r.log.Warn().Err(err).Str("object", spec.Name).Msg("texture unavailable, drawing untextured")
			obj.Texture = ""
		} else {
			obj.Texture = tex.Path
		}
	}
	return obj, nil
}

// loadTexture resolves src and reads its dimensions.
func (r *Registry) loadTexture(ctx context.Context, src string) (Texture, error) {
	path, err := r.resolve(ctx, src)
	if err != nil {
		return Texture{}, fmt.Errorf("texture %s: %w", src, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return Texture{}, fmt.Errorf("texture %s: %w", src, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Texture{}, fmt.Errorf("texture %s: %w", src, err)
	}
	return Texture{Path: path, Width: cfg.Width, Height: cfg.Height}, nil
}

// BackdropHandle is a pending Backdrop that can already be registered as a live texture:
// Refresh is a no-op until the decode finishes.
type BackdropHandle struct {
	*Handle[*Backdrop]
}

// Refresh advances the backdrop's frame clock once it has loaded.
func (b *BackdropHandle) Refresh(elapsed time.Duration) {
	if bd, ok := b.Value(); ok {
		bd.Refresh(elapsed)
	}
}

// LoadBackdrop decodes an animated GIF in the background.
func (r *Registry) LoadBackdrop(ctx context.Context, src string) *BackdropHandle {
	h := newHandle[*Backdrop](src)
	r.track(h, nil)
	go func() {
		defer r.finish()
		path, err := r.resolve(ctx, src)
		if err != nil {
			h.settle(nil, fmt.Errorf("backdrop %s: %w", src, err))
			return
		}
		bd, err := DecodeBackdrop(path, r.maxWidth)
		h.settle(bd, err)
	}()
	return &BackdropHandle{Handle: h}
}

// LoadManifest starts every object and the backdrop in m, then seals the batch.
func (r *Registry) LoadManifest(ctx context.Context, m *Manifest) *BackdropHandle {
	for _, spec := range m.Objects {
		r.LoadModel(ctx, spec)
	}
	var bd *BackdropHandle
	if m.Backdrop != "" {
		bd = r.LoadBackdrop(ctx, m.Backdrop)
	}
	r.Seal()
	return bd
}

// Seal marks the batch complete. Ready closes once everything started before Seal has been polled.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Poll is called from the main loop. It returns objects that finished since the last call,
// logs failed loads and closes Ready when the sealed batch is fully drained.
func (r *Registry) Poll() []*scene.Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*scene.Object
	drained := true
	for _, e := range r.entries {
		if e.polled {
			continue
		}
		select {
		case <-e.h.Done():
		default:
			drained = false
			continue
		}
		e.polled = true
		if err := e.h.Err(); err != nil {
			r.log.Error().Err(err).Str("asset", e.h.Name()).Msg("load failed")
			continue
		}
		if e.object != nil {
			if obj := e.object(); obj != nil {
				out = append(out, obj)
				r.log.Debug().Str("object", obj.Name).Int("leaves", len(obj.Leaves)).Msg("loaded")
			}
		}
	}
	if drained && r.sealed && !r.closed {
		r.closed = true
		close(r.ready)
		r.log.Info().Int("assets", len(r.entries)).Msg("batch ready")
	}
	return out
}

// Progress returns how many loads have settled out of how many were started.
func (r *Registry) Progress() (settled, total int) {
	return int(r.settled.Load()), int(r.total.Load())
}

// Ready is closed once the sealed batch has settled and been polled.
func (r *Registry) Ready() <-chan struct{} { return r.ready }

// Wait blocks until every started load has settled or ctx ends. It does not poll.
func (r *Registry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
