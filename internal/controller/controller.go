// Package controller turns pointer, scroll and click input plus elapsed time into camera and
// object transforms, once per frame, and hands the result to a renderer.
//
// All methods must be called from the frame loop goroutine. Input handlers only record state;
// the work (hit-testing, interpolation, animation) happens in Tick.
package controller

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"portfolio-scene/internal/scene"
)

// Renderer draws the scene graph through a camera.
type Renderer interface {
	RenderFrame(g *scene.Graph, cam CameraState)
	Resize(width, height int)
}

// Overlay is the on-screen chrome the controller drives: tooltip, cursor, outline.
type Overlay interface {
	MoveTooltip(x, y float32)
	ShowTooltip(text string)
	HideTooltip()
	SetPointerCursor(on bool)
	SetOutline(obj *scene.Object)
}

// Picker hit-tests a ray against the interactive set. *scene.Graph implements it.
type Picker interface {
	Pick(r scene.Ray) (scene.Hit, bool)
}

// Refresher is a live texture source, such as the animated backdrop.
type Refresher interface {
	Refresh(elapsed time.Duration)
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the renderer. Without one, Tick draws nothing.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithOverlay sets the tooltip/cursor/outline sink.
func WithOverlay(o Overlay) Option {
	return func(c *Controller) { c.overlay = o }
}

// WithPicker replaces the scene graph as hit-test source.
func WithPicker(p Picker) Option {
	return func(c *Controller) { c.picker = p }
}

// WithRefresher registers a live texture to refresh every tick.
func WithRefresher(r Refresher) Option {
	return func(c *Controller) { c.refreshers = append(c.refreshers, r) }
}

// WithAnimators registers per-object animations, advanced in order every tick.
func WithAnimators(a ...Animator) Option {
	return func(c *Controller) { c.animators = append(c.animators, a...) }
}

// WithReady delays animations until ready is closed (the asset batch-ready signal).
func WithReady(ready <-chan struct{}) Option {
	return func(c *Controller) { c.ready = ready }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns interaction state and the camera. Construct one per window.
type Controller struct {
	cfg   Config
	graph *scene.Graph

	renderer   Renderer
	overlay    Overlay
	picker     Picker
	refreshers []Refresher
	animators  []Animator
	ready      <-chan struct{}
	log        zerolog.Logger

	state  InteractionState
	camera CameraState

	width, height float32
	pickPending   bool
	hitTests      int

	lastElapsed time.Duration
	ticked      bool
	animating   bool
}

// New builds a controller with the camera at its scroll-top resting position.
func New(cfg Config, graph *scene.Graph, opts ...Option) *Controller {
	if graph == nil {
		graph = scene.New()
	}
	c := &Controller{
		cfg:    cfg,
		graph:  graph,
		picker: graph,
		log:    zerolog.Nop(),
		width:  cfg.Width,
		height: cfg.Height,
	}
	for _, opt := range opts {
		opt(c)
	}
	start := mgl32.Vec3{0, 0, cfg.BaseDistance}
	c.camera = CameraState{
		Position:       start,
		TargetPosition: start,
		FOV:            cfg.FOV,
		Aspect:         c.aspect(),
		Near:           cfg.Near,
		Far:            cfg.Far,
	}
	c.animating = c.ready == nil
	return c
}

func (c *Controller) aspect() float32 {
	if c.width <= 0 || c.height <= 0 {
		return 1
	}
	return c.width / c.height
}

// State returns a copy of the interaction state.
func (c *Controller) State() InteractionState { return c.state }

// Camera returns a copy of the camera state.
func (c *Controller) Camera() CameraState { return c.camera }

// Hovered returns the hovered object, or nil.
func (c *Controller) Hovered() *scene.Object { return c.state.Hovered }

// HitTests returns how many ray casts Tick has performed.
func (c *Controller) HitTests() int { return c.hitTests }

// Animating reports whether the batch-ready signal has been seen.
func (c *Controller) Animating() bool { return c.animating }

// SetConfig applies new tuning. Scroll targets are recomputed from the current scroll
// position without cancelling zoom; the viewport keeps its current size.
func (c *Controller) SetConfig(cfg Config) {
	cfg.Width, cfg.Height = c.width, c.height
	c.cfg = cfg
	c.camera.FOV = cfg.FOV
	c.camera.Near = cfg.Near
	c.camera.Far = cfg.Far
	c.applyScroll(-c.state.ScrollTop)
}

// OnPointerMove records a pointer sample in window pixels. The hit-test runs on the next Tick.
func (c *Controller) OnPointerMove(clientX, clientY float32) {
	if c.width > 0 && c.height > 0 {
		c.state.Pointer = mgl32.Vec2{
			clientX/c.width*2 - 1,
			-(clientY/c.height)*2 + 1,
		}
	}
	c.pickPending = true
	if c.overlay != nil {
		c.overlay.MoveTooltip(clientX+c.cfg.TooltipOffset, clientY+c.cfg.TooltipOffset)
	}
}

// OnScroll takes the page's top offset t (minus the scrolled distance), derives the default
// camera targets and cancels zoom.
func (c *Controller) OnScroll(t float32) {
	c.state.ScrollTop = -t
	c.applyScroll(t)
	if c.state.Zoomed {
		c.state.Zoomed = false
		c.log.Debug().Float32("t", t).Msg("zoom cancelled by scroll")
	}
}

func (c *Controller) applyScroll(t float32) {
	distance := math32.Max(c.cfg.MinDistance, c.cfg.BaseDistance+t*-c.cfg.DistanceGain)
	pan := t * -c.cfg.PanGain
	c.camera.TargetPosition = mgl32.Vec3{pan, 0, distance}
	c.camera.TargetRotationY = t * -c.cfg.PanGain
}

// ScrollBy moves the virtual page by delta pixels (positive scrolls down), clamped to
// [0, MaxScroll]. Nothing happens at a boundary, like a page that cannot scroll further.
func (c *Controller) ScrollBy(delta float32) {
	top := c.state.ScrollTop + delta
	if top < 0 {
		top = 0
	}
	if c.cfg.MaxScroll > 0 && top > c.cfg.MaxScroll {
		top = c.cfg.MaxScroll
	}
	if top == c.state.ScrollTop {
		return
	}
	c.OnScroll(-top)
}

// OnWheel converts mouse wheel notches (positive is away from the user) into ScrollBy.
func (c *Controller) OnWheel(move float32) {
	if move == 0 {
		return
	}
	c.ScrollBy(-move * c.cfg.ScrollStep)
}

// OnClick zooms to the hovered object. With nothing hovered it does nothing.
func (c *Controller) OnClick() {
	target := scene.Resolve(c.state.Hovered)
	if target == nil {
		return
	}
	c.state.ZoomTarget = target.WorldPosition().Sub(c.camera.Forward().Mul(c.cfg.ZoomStandoff))
	c.state.Zoomed = true
	c.log.Debug().Str("object", target.Name).Msg("zoom")
}

// OnResize updates the viewport and forwards the new size to the renderer.
func (c *Controller) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = float32(width), float32(height)
	c.camera.Aspect = c.aspect()
	if c.renderer != nil {
		c.renderer.Resize(width, height)
	}
}

// Tick advances one frame. elapsed is the time since the loop started and must not decrease.
func (c *Controller) Tick(elapsed time.Duration) {
	dt := float32(0)
	if c.ticked {
		dt = float32((elapsed - c.lastElapsed).Seconds())
		if dt < 0 {
			dt = 0
		}
	} else {
		dt = float32(elapsed.Seconds())
	}
	c.lastElapsed = elapsed
	c.ticked = true

	if c.pickPending {
		c.pickPending = false
		c.hitTest()
	}

	c.moveCamera(dt)

	if !c.animating {
		select {
		case <-c.ready:
			c.animating = true
			c.log.Info().Msg("scene ready, starting animation")
		default:
		}
	}
	if c.animating {
		f := Frame{Graph: c.graph, DT: dt, Elapsed: elapsed, Pointer: c.state.Pointer}
		for _, a := range c.animators {
			a.Animate(f)
		}
	}

	for _, r := range c.refreshers {
		r.Refresh(elapsed)
	}

	if c.renderer != nil {
		c.renderer.RenderFrame(c.graph, c.camera)
	}
}

func (c *Controller) hitTest() {
	c.hitTests++
	var target *scene.Object
	if c.picker != nil {
		if hit, ok := c.picker.Pick(c.camera.Ray(c.state.Pointer)); ok {
			target = scene.Resolve(hit.Object)
		}
	}
	c.setHovered(target)
}

// setHovered is the hover state machine. Same target is a no-op.
func (c *Controller) setHovered(target *scene.Object) {
	prev := c.state.Hovered
	if target == prev {
		return
	}
	if prev != nil {
		prev.SetEmphasis(1)
	}
	c.state.Hovered = target

	if target == nil {
		c.log.Debug().Str("object", prev.Name).Msg("hover end")
		if c.overlay != nil {
			c.overlay.SetOutline(nil)
			c.overlay.SetPointerCursor(false)
			c.overlay.HideTooltip()
		}
		return
	}

	target.SetEmphasis(c.cfg.HoverScale)
	c.log.Debug().Str("object", target.Name).Msg("hover")
	if c.overlay == nil {
		return
	}
	c.overlay.SetOutline(target)
	c.overlay.SetPointerCursor(true)
	if target.Label != "" {
		c.overlay.ShowTooltip(target.Label)
	} else {
		c.overlay.HideTooltip()
	}
}

func (c *Controller) moveCamera(dt float32) {
	alpha := smoothing(c.cfg.Smoothing, c.cfg.ReferenceFPS, dt)
	if c.state.Zoomed {
		c.camera.Position = lerpVec(c.camera.Position, c.state.ZoomTarget, alpha)
		return
	}
	c.camera.Position = lerpVec(c.camera.Position, c.camera.TargetPosition, alpha)
	c.camera.RotationY += (c.camera.TargetRotationY - c.camera.RotationY) * alpha
}

// smoothing returns the lerp fraction for a tick of dt seconds. factor is the fraction per
// frame at refFPS; refFPS <= 0 applies factor once per tick regardless of dt.
func smoothing(factor, refFPS, dt float32) float32 {
	if refFPS <= 0 {
		return factor
	}
	if dt <= 0 {
		return 0
	}
	return 1 - math32.Pow(1-factor, dt*refFPS)
}

func lerpVec(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}
