package render

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"portfolio-scene/internal/assets"
	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/primitives"
	"portfolio-scene/internal/scene"
	"portfolio-scene/internal/starfield"
)

var _ controller.Renderer = (*Renderer)(nil)

// OutlineSource reports the object to outline, normally the ui overlay.
type OutlineSource interface {
	Outline() *scene.Object
}

// Options configures a Renderer. Colors are already parsed.
type Options struct {
	Background     color.RGBA
	Bloom          bool
	BloomStrength  float32
	BloomThreshold float32
	Outline        bool
	OutlineColor   color.RGBA
	Logger         zerolog.Logger
}

// Renderer draws the scene graph with raylib: backdrop, objects, stars, then an optional
// bloom pass. GPU resources are created on first use, after the window exists.
type Renderer struct {
	opts    Options
	log     zerolog.Logger
	prims   *primitives.Registry
	outline OutlineSource

	models   map[string]rl.Model
	textures map[string]rl.Texture2D
	failed   map[string]bool

	backdrop    *assets.BackdropHandle
	backdropTex rl.Texture2D
	backdropVer int
	pixels      []color.RGBA

	stars   *starfield.Field
	starTex rl.Texture2D

	target    rl.RenderTexture2D
	hasTarget bool
	bloom     rl.Shader
	width     int
	height    int
}

// NewRenderer returns a renderer for a window of the given size.
func NewRenderer(opts Options, width, height int) *Renderer {
	return &Renderer{
		opts:     opts,
		log:      opts.Logger,
		prims:    primitives.NewRegistry(),
		models:   make(map[string]rl.Model),
		textures: make(map[string]rl.Texture2D),
		failed:   make(map[string]bool),
		width:    width,
		height:   height,
	}
}

// SetOptions swaps colors and post-processing settings, e.g. after a config reload.
func (r *Renderer) SetOptions(opts Options) {
	opts.Logger = r.log
	r.opts = opts
}

// SetOutlineSource sets where the hovered outline comes from.
func (r *Renderer) SetOutlineSource(src OutlineSource) { r.outline = src }

// SetBackdrop sets the animated backdrop; it is drawn once loaded.
func (r *Renderer) SetBackdrop(b *assets.BackdropHandle) { r.backdrop = b }

// SetStars sets the starfield, rotated by the assets.StarsObject transform.
func (r *Renderer) SetStars(f *starfield.Field) { r.stars = f }

// Resize drops the offscreen target; it is recreated at the new size on the next frame.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	if r.hasTarget {
		rl.UnloadRenderTexture(r.target)
		r.hasTarget = false
	}
}

// RenderFrame draws one frame. Must be called between BeginDrawing and EndDrawing.
func (r *Renderer) RenderFrame(g *scene.Graph, cam controller.CameraState) {
	post := r.opts.Bloom && r.ensureTarget()
	if post {
		rl.BeginTextureMode(r.target)
	}
	rl.ClearBackground(toColor(r.opts.Background))
	r.drawBackdrop()

	camera := rl.Camera3D{
		Position:   vec3(cam.Position),
		Target:     vec3(cam.LookAt()),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       cam.FOV,
		Projection: rl.CameraPerspective,
	}
	rl.BeginMode3D(camera)
	p := cam.Position
	r.prims.SetView([3]float32{p.X(), p.Y(), p.Z()}, primitives.DefaultLight())
	for _, obj := range g.Objects() {
		r.drawObject(obj)
	}
	r.drawOutline()
	r.drawStars(g, camera)
	rl.EndMode3D()

	if post {
		rl.EndTextureMode()
		r.composite()
	}
}

func (r *Renderer) drawObject(obj *scene.Object) {
	world := obj.WorldMatrix()
	switch obj.Kind {
	case scene.KindModel:
		m, ok := r.model(obj.Source)
		if !ok {
			return
		}
		m.Transform = primitives.Matrix(world)
		rl.DrawModel(m, rl.NewVector3(0, 0, 0), 1, rl.White)
	case scene.KindCube, scene.KindSphere:
		if obj.Texture != "" {
			if tex, ok := r.texture(obj.Texture); ok {
				r.prims.DrawWithTexture(string(obj.Kind), world, tex)
				return
			}
		}
		r.prims.Draw(string(obj.Kind), world)
	}
}

// drawOutline boxes the hovered object in the outline color, plus its wireframe for models.
func (r *Renderer) drawOutline() {
	if !r.opts.Outline || r.outline == nil {
		return
	}
	obj := r.outline.Outline()
	if obj == nil {
		return
	}
	c := toColor(r.opts.OutlineColor)
	if b := obj.WorldBounds(); !b.Empty() {
		rl.DrawBoundingBox(rl.BoundingBox{Min: vec3(b.Min), Max: vec3(b.Max)}, c)
	}
	if obj.Kind == scene.KindModel {
		if m, ok := r.model(obj.Source); ok {
			m.Transform = primitives.Matrix(obj.WorldMatrix())
			rl.DrawModelWires(m, rl.NewVector3(0, 0, 0), 1, c)
		}
	}
}

func (r *Renderer) drawStars(g *scene.Graph, camera rl.Camera3D) {
	if r.stars == nil || r.stars.Len() == 0 {
		return
	}
	if !rl.IsTextureValid(r.starTex) {
		img := rl.NewImageFromImage(starfield.GlowSprite(32, 6))
		r.starTex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
	}
	world := mgl32.Ident4()
	if obj := g.Find(assets.StarsObject); obj != nil {
		world = obj.WorldMatrix()
	}
	size := r.stars.Size * 2 // the sprite's glow margin
	rl.BeginBlendMode(rl.BlendAdditive)
	for _, s := range r.stars.Stars {
		pos := mgl32.TransformCoordinate(s.Position, world)
		rl.DrawBillboard(camera, r.starTex, vec3(pos), size, rl.Fade(rl.White, s.Intensity))
	}
	rl.EndBlendMode()
}

// drawBackdrop stretches the current backdrop frame over the screen, uploading it when it changed.
func (r *Renderer) drawBackdrop() {
	if r.backdrop == nil {
		return
	}
	bd, ok := r.backdrop.Value()
	if !ok || bd.Frame() == nil {
		return
	}
	frame := bd.Frame()
	if !rl.IsTextureValid(r.backdropTex) {
		img := rl.NewImageFromImage(frame)
		r.backdropTex = rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		r.backdropVer = bd.Version()
	} else if bd.Version() != r.backdropVer {
		rl.UpdateTexture(r.backdropTex, r.rgbaPixels(frame))
		r.backdropVer = bd.Version()
	}
	src := rl.NewRectangle(0, 0, float32(r.backdropTex.Width), float32(r.backdropTex.Height))
	dst := rl.NewRectangle(0, 0, float32(r.width), float32(r.height))
	rl.DrawTexturePro(r.backdropTex, src, dst, rl.NewVector2(0, 0), 0, rl.White)
}

func (r *Renderer) rgbaPixels(img *image.RGBA) []color.RGBA {
	n := len(img.Pix) / 4
	if cap(r.pixels) < n {
		r.pixels = make([]color.RGBA, n)
	}
	r.pixels = r.pixels[:n]
	for i := range r.pixels {
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		r.pixels[i] = color.RGBA{p[0], p[1], p[2], p[3]}
	}
	return r.pixels
}

func (r *Renderer) model(path string) (rl.Model, bool) {
	if m, ok := r.models[path]; ok {
		return m, true
	}
	if path == "" || r.failed[path] {
		return rl.Model{}, false
	}
	m := rl.LoadModel(path)
	if !rl.IsModelValid(m) {
		r.failed[path] = true
		r.log.Error().Str("path", path).Msg("model upload failed")
		return rl.Model{}, false
	}
	r.models[path] = m
	return m, true
}

func (r *Renderer) texture(path string) (rl.Texture2D, bool) {
	if t, ok := r.textures[path]; ok {
		return t, true
	}
	if r.failed[path] {
		return rl.Texture2D{}, false
	}
	t := rl.LoadTexture(path)
	if !rl.IsTextureValid(t) {
		r.failed[path] = true
		r.log.Error().Str("path", path).Msg("texture upload failed")
		return rl.Texture2D{}, false
	}
	r.textures[path] = t
	return t, true
}

// Unload frees every GPU resource the renderer created.
func (r *Renderer) Unload() {
	for _, m := range r.models {
		rl.UnloadModel(m)
	}
	for _, t := range r.textures {
		rl.UnloadTexture(t)
	}
	if rl.IsTextureValid(r.backdropTex) {
		rl.UnloadTexture(r.backdropTex)
	}
	if rl.IsTextureValid(r.starTex) {
		rl.UnloadTexture(r.starTex)
	}
	if r.hasTarget {
		rl.UnloadRenderTexture(r.target)
		r.hasTarget = false
	}
	if rl.IsShaderValid(r.bloom) {
		rl.UnloadShader(r.bloom)
	}
	r.prims.Unload()
	r.models = make(map[string]rl.Model)
	r.textures = make(map[string]rl.Texture2D)
}

func vec3(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}
