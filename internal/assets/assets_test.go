package assets

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/scene"
	"portfolio-scene/internal/starfield"
)

// Two nested mesh nodes sharing a unit-radius cube accessor; the child is translated and halved.
const helmetGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "body", "mesh": 0, "translation": [0, 2, 0], "children": [1]},
    {"name": "visor", "mesh": 1, "translation": [1.5, 0.5, 0.5], "scale": [0.5, 0.5, 0.5]}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}}]},
    {"primitives": [{"attributes": {"POSITION": 1}}]}
  ],
  "accessors": [
    {"componentType": 5126, "count": 8, "type": "VEC3", "min": [-1, -1, -1], "max": [1, 1, 1]},
    {"componentType": 5126, "count": 8, "type": "VEC3", "min": [-1, -1, -1], "max": [1, 1, 1]}
  ]
}`

// An indexed triangle lifted to z=1 and an unindexed two-triangle strip, with real vertex data.
const trianglesGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [
    {"name": "tri", "mesh": 0, "translation": [0, 0, 1]},
    {"name": "strip", "mesh": 1}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]},
    {"primitives": [{"attributes": {"POSITION": 2}, "mode": 5}]}
  ],
  "buffers": [
    {"byteLength": 44, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAAAAQAAAAAAAAAAAAAAAAAAAAEAAAAAAAAABAAIAAAA="},
    {"byteLength": 48, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAACAPwAAgD8AAAAA"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6},
    {"buffer": 1, "byteOffset": 0, "byteLength": 48}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [2, 2, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
    {"bufferView": 2, "componentType": 5126, "count": 4, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]}
  ]
}`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	return path
}

func assertVec(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestReadModelBounds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "helmet.gltf", []byte(helmetGLTF))

	leaves, err := ReadModelBounds(path)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	assert.Equal(t, "body", leaves[0].Name)
	assertVec(t, mgl32.Vec3{-1, 1, -1}, leaves[0].Bounds.Min)
	assertVec(t, mgl32.Vec3{1, 3, 1}, leaves[0].Bounds.Max)

	assert.Equal(t, "visor", leaves[1].Name)
	assertVec(t, mgl32.Vec3{1, 2, 0}, leaves[1].Bounds.Min)
	assertVec(t, mgl32.Vec3{2, 3, 1}, leaves[1].Bounds.Max)
}

func TestReadModelTriangles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tri.gltf", []byte(trianglesGLTF))

	leaves, err := ReadModelBounds(path)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	require.Len(t, leaves[0].Triangles, 1)
	tri := leaves[0].Triangles[0]
	assertVec(t, mgl32.Vec3{0, 0, 1}, tri[0])
	assertVec(t, mgl32.Vec3{2, 0, 1}, tri[1])
	assertVec(t, mgl32.Vec3{0, 2, 1}, tri[2])
	assert.Len(t, leaves[1].Triangles, 2, "strip of four vertices")

	obj := scene.NewObject("tri", scene.KindModel)
	obj.Interactive = true
	l := obj.AddMesh(leaves[0].Name, leaves[0].Bounds, leaves[0].Triangles)
	assert.Equal(t, scene.ShapeMesh, l.Shape)
	g := scene.New()
	g.Add(obj)
	_, ok := g.Pick(scene.Ray{Origin: mgl32.Vec3{0.5, 0.5, 10}, Dir: mgl32.Vec3{0, 0, -1}})
	assert.True(t, ok)
	_, ok = g.Pick(scene.Ray{Origin: mgl32.Vec3{1.5, 1.5, 10}, Dir: mgl32.Vec3{0, 0, -1}})
	assert.False(t, ok, "inside the bounds but off the triangle")
}

func TestTriangleIndices(t *testing.T) {
	idx := []uint32{0, 1, 2, 3, 4}
	assert.Equal(t, [][3]uint32{{0, 1, 2}}, triangleIndices(gltf.PrimitiveTriangles, idx))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}, triangleIndices(gltf.PrimitiveTriangleStrip, idx))
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}, triangleIndices(gltf.PrimitiveTriangleFan, idx))
	assert.Empty(t, triangleIndices(gltf.PrimitiveLines, idx))
}

func TestReadModelBoundsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadModelBounds(filepath.Join(dir, "missing.glb"))
	assert.Error(t, err)

	empty := writeFile(t, dir, "empty.gltf", []byte(`{"asset": {"version": "2.0"}}`))
	_, err = ReadModelBounds(empty)
	assert.ErrorContains(t, err, "no mesh")
}

func TestParseManifestMergesDefaults(t *testing.T) {
	m, err := ParseManifest([]byte(`
defaults:
  kind: model
  scale: [0.5]
  interactive: false
  spin: [0, 0.2, 0]
objects:
  - name: python
    label: Python
    path: models/pyth.glb
    position: [-10, -5, 20]
  - name: profile
    kind: cube
    texture: images/profilepic.jpg
    scale: [5]
    interactive: true
backdrop: videos/drawing.gif
stars:
  count: 100
`))
	require.NoError(t, err)
	require.Len(t, m.Objects, 2)

	py := m.Objects[0]
	assert.Equal(t, "model", py.Kind)
	assert.Equal(t, []float32{0.5}, py.Scale)
	assert.False(t, py.IsInteractive())
	assertVec(t, mgl32.Vec3{0, 0.2, 0}, py.SpinRate())

	obj := py.NewObject()
	assert.Equal(t, "Python", obj.Label)
	assert.Equal(t, scene.KindModel, obj.Kind)
	assertVec(t, mgl32.Vec3{0.5, 0.5, 0.5}, obj.Transform.Scale)
	assertVec(t, mgl32.Vec3{-10, -5, 20}, obj.Transform.Position)

	profile := m.Objects[1]
	assert.Equal(t, "cube", profile.Kind)
	assert.True(t, profile.IsInteractive())
	assert.Equal(t, []float32{5}, profile.Scale)

	assert.Equal(t, "videos/drawing.gif", m.Backdrop)
	opts := m.Stars.Options()
	assert.Equal(t, 100, opts.Count)
	assert.Equal(t, float32(1000), opts.Spread)
	assertVec(t, mgl32.Vec3{0, 0.03, 0}, m.Stars.SpinRate())
}

func TestParseManifestValidation(t *testing.T) {
	_, err := ParseManifest([]byte(`
objects:
  - kind: cube
  - name: a
    kind: cube
  - name: a
    kind: cube
  - name: b
    kind: teapot
  - name: c
    kind: model
  - name: d
    kind: sphere
    position: [1, 2]
`))
	require.Error(t, err)
	for _, want := range []string{"missing name", "duplicate name", "unknown kind", "model without path", "position needs 3 values"} {
		assert.ErrorContains(t, err, want)
	}

	_, err = ParseManifest([]byte("objects: ["))
	assert.ErrorContains(t, err, "parse manifest")
}

func TestManifestAnimators(t *testing.T) {
	m, err := ParseManifest([]byte(`
objects:
  - name: profile
    kind: cube
    spin: [0, 0.18, 0]
  - name: base
    kind: model
    path: models/base.glb
    tilt: true
  - name: cg
    kind: sphere
    bob: {amplitude: 0.5, speed: 1.2}
  - name: still
    kind: cube
`))
	require.NoError(t, err)

	anims := m.Animators(nil, 60)
	require.Len(t, anims, 3)
	spin, ok := anims[0].(*controller.Spin)
	require.True(t, ok)
	assert.Equal(t, "profile", spin.Name)
	tilt, ok := anims[1].(*controller.PointerTilt)
	require.True(t, ok)
	assert.Equal(t, float32(0.6), tilt.YawGain)
	assert.Equal(t, float32(60), tilt.ReferenceFPS)
	bob, ok := anims[2].(*controller.Bob)
	require.True(t, ok)
	assert.Equal(t, float32(0.5), bob.Amplitude)

	field := starfield.Generate(starfield.Options{Count: 3, Spread: 10, Size: 1, Seed: 1})
	anims = m.Animators(field, 60)
	require.Len(t, anims, 5)
	stars, ok := anims[3].(*controller.Spin)
	require.True(t, ok)
	assert.Equal(t, StarsObject, stars.Name)
	assertVec(t, mgl32.Vec3{0, 0.03, 0}, stars.Rate)
	assert.IsType(t, &controller.Twinkle{}, anims[4])
}

func TestStarsObjectIsNotPickable(t *testing.T) {
	g := scene.New()
	g.Add(NewStarsObject())
	assert.Empty(t, g.Interactive())
	_, ok := g.Pick(scene.Ray{Dir: mgl32.Vec3{0, 0, -1}})
	assert.False(t, ok)
}

func TestNilStarsUsesDefaults(t *testing.T) {
	var s *StarsSpec
	assert.Equal(t, 800, s.Options().Count)
	assertVec(t, mgl32.Vec3{0, 0.03, 0}, s.SpinRate())
}

func TestHandle(t *testing.T) {
	h := newHandle[int]("n")
	_, ok := h.Value()
	assert.False(t, ok)
	assert.NoError(t, h.Err())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	h.settle(7, nil)
	v, ok := h.Value()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	v, err = h.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "n", h.Name())
}

func pollUntilReady(t *testing.T, r *Registry) []*scene.Object {
	t.Helper()
	var got []*scene.Object
	deadline := time.After(5 * time.Second)
	for {
		got = append(got, r.Poll()...)
		select {
		case <-r.Ready():
			return got
		case <-deadline:
			t.Fatal("registry never became ready")
			return nil
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRegistryLoadsBatchAndToleratesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helmet.gltf", []byte(helmetGLTF))
	writePNG(t, dir, "profile.png", 4, 2)

	r := NewRegistry(Options{Root: dir, Logger: zerolog.Nop()})
	ctx := context.Background()
	helmet := r.LoadModel(ctx, ObjectSpec{Name: "helmet", Kind: "model", Path: "helmet.gltf", Label: "Helmet"})
	cube := r.LoadModel(ctx, ObjectSpec{Name: "profile", Kind: "cube", Texture: "profile.png", Scale: []float32{5}})
	broken := r.LoadModel(ctx, ObjectSpec{Name: "broken", Kind: "model", Path: "missing.glb"})
	r.Seal()

	select {
	case <-r.Ready():
		t.Fatal("ready before poll")
	default:
	}

	objs := pollUntilReady(t, r)
	require.NoError(t, r.Wait(ctx))
	settled, total := r.Progress()
	assert.Equal(t, 3, settled)
	assert.Equal(t, 3, total)

	names := map[string]*scene.Object{}
	for _, o := range objs {
		names[o.Name] = o
	}
	require.Len(t, names, 2)
	require.Contains(t, names, "helmet")
	require.Contains(t, names, "profile")

	h := names["helmet"]
	assert.Len(t, h.Leaves, 2)
	for _, l := range h.Leaves {
		assert.Same(t, h, l.Owner)
	}

	p := names["profile"]
	require.Len(t, p.Leaves, 1)
	assert.Equal(t, scene.CenteredBox(mgl32.Vec3{1, 1, 1}), p.Leaves[0].Bounds)
	assert.Equal(t, filepath.Join(dir, "profile.png"), p.Texture)

	v, ok := helmet.Value()
	assert.True(t, ok)
	assert.Same(t, h, v)
	_, ok = cube.Value()
	assert.True(t, ok)
	assert.Error(t, broken.Err())

	assert.Empty(t, r.Poll(), "objects are handed out once")
}

func TestRegistryMissingTextureKeepsObject(t *testing.T) {
	r := NewRegistry(Options{Root: t.TempDir(), Logger: zerolog.Nop()})
	h := r.LoadModel(context.Background(), ObjectSpec{Name: "eye", Kind: "sphere", Texture: "nope.jpg"})
	obj, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Empty(t, obj.Texture)
	require.Len(t, obj.Leaves, 1)
	assert.Equal(t, scene.ShapeSphere, obj.Leaves[0].Shape)
}

func TestRegistryResolvesTexture(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 3, 7)
	r := NewRegistry(Options{Root: dir, Logger: zerolog.Nop()})
	tex, err := r.loadTexture(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, 7, tex.Height)

	obj, err := r.LoadModel(context.Background(), ObjectSpec{Name: "eye", Kind: "sphere", Texture: "a.png"}).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.png"), obj.Texture)
}

func TestRegistryCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "helmet.gltf", []byte(helmetGLTF))
	r := NewRegistry(Options{Root: dir, Logger: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := r.LoadModel(ctx, ObjectSpec{Name: "helmet", Kind: "model", Path: "helmet.gltf"})
	r.Seal()
	objs := pollUntilReady(t, r)
	assert.Empty(t, objs)
	assert.ErrorIs(t, h.Err(), context.Canceled)
}

func TestRegistryEmptyBatchIsReadyAfterSeal(t *testing.T) {
	r := NewRegistry(Options{Logger: zerolog.Nop()})
	r.Poll()
	select {
	case <-r.Ready():
		t.Fatal("ready before seal")
	default:
	}
	r.Seal()
	r.Poll()
	select {
	case <-r.Ready():
	default:
		t.Fatal("sealed empty batch should be ready")
	}
}

func TestFetcherCachesDownloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "model/gltf-binary")
		_, _ = w.Write([]byte("glTF"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 0)
	path, err := f.Fetch(context.Background(), srv.URL+"/models/react?v=2")
	require.NoError(t, err)
	assert.Equal(t, ".glb", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data))

	again, err := f.Fetch(context.Background(), srv.URL+"/models/react?v=2")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), hits.Load())

	other, err := f.Fetch(context.Background(), srv.URL+"/models/react?v=3")
	require.NoError(t, err)
	assert.NotEqual(t, path, other)
}

func TestFetcherRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 2)
	f.Backoff = time.Millisecond
	path, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(path))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcherDoesNotRetryNotFound(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		http.NotFound(w, req)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), 3)
	f.Backoff = time.Millisecond
	_, err := f.Fetch(context.Background(), srv.URL+"/gone.glb")
	assert.ErrorContains(t, err, "HTTP 404")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheStem(t *testing.T) {
	assert.True(t, IsRemote("HTTPS://example.com/a.glb"))
	assert.False(t, IsRemote("models/a.glb"))
	assert.Regexp(t, `^c_-[0-9a-f]{8}$`, cacheStem("https://example.com/c++.glb"))
}

func writeGIF(t *testing.T, dir string, delays []int) string {
	t.Helper()
	palette := color.Palette{color.Transparent, color.RGBA{255, 0, 0, 255}, color.RGBA{0, 255, 0, 255}, color.RGBA{0, 0, 255, 255}}
	g := &gif.GIF{Config: image.Config{Width: 4, Height: 4, ColorModel: palette}}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
		for p := range frame.Pix {
			frame.Pix[p] = uint8(i%3 + 1)
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	path := filepath.Join(dir, "drawing.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gif.EncodeAll(f, g))
	return path
}

func TestBackdropFrameClock(t *testing.T) {
	path := writeGIF(t, t.TempDir(), []int{10, 0, 20})
	b, err := DecodeBackdrop(path, 0)
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())
	assert.Equal(t, 400*time.Millisecond, b.Duration())

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, b.Frame().RGBAAt(0, 0))

	b.Refresh(50 * time.Millisecond)
	assert.Equal(t, 0, b.Index())
	assert.Equal(t, 0, b.Version())

	b.Refresh(150 * time.Millisecond)
	assert.Equal(t, 1, b.Index())
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, b.Frame().RGBAAt(0, 0))

	b.Refresh(399 * time.Millisecond)
	assert.Equal(t, 2, b.Index())

	b.Refresh(450 * time.Millisecond)
	assert.Equal(t, 0, b.Index(), "loops")
	assert.Equal(t, 3, b.Version())
}

func TestBackdropDownscales(t *testing.T) {
	path := writeGIF(t, t.TempDir(), []int{5})
	b, err := DecodeBackdrop(path, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), b.Frame().Bounds())
	b.Refresh(time.Second)
	assert.Equal(t, 0, b.Index(), "single frame never advances")
}

func TestBackdropHandleRefresh(t *testing.T) {
	dir := t.TempDir()
	writeGIF(t, dir, []int{10, 10})
	r := NewRegistry(Options{Root: dir, Logger: zerolog.Nop()})
	h := r.LoadBackdrop(context.Background(), "drawing.gif")
	h.Refresh(time.Second) // may still be pending; must not panic

	bd, err := h.Wait(context.Background())
	require.NoError(t, err)
	h.Refresh(150 * time.Millisecond)
	assert.Equal(t, 1, bd.Index())

	_, err = r.LoadBackdrop(context.Background(), "missing.gif").Wait(context.Background())
	assert.Error(t, err)
}

func TestBundledManifest(t *testing.T) {
	m, err := LoadManifest(filepath.Join("..", "..", "assets", "scene.yaml"))
	require.NoError(t, err)
	byName := map[string]ObjectSpec{}
	for _, o := range m.Objects {
		byName[o.Name] = o
	}
	require.Contains(t, byName, "cluster")
	assert.True(t, byName["cluster"].IsInteractive(), "every scene object reacts to hover")
	assert.Empty(t, byName["cluster"].Label)
	assert.True(t, byName["base"].IsInteractive())
	assert.True(t, byName["base"].Tilt)
	assert.Equal(t, "VS Code", byName["vscode"].Label)
	assert.Equal(t, "videos/drawing.gif", m.Backdrop)
}
