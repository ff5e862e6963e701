package controller

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-scene/internal/scene"
)

const frame = time.Second / 60

type fakeOverlay struct {
	tooltipX, tooltipY float32
	text               string
	visible            bool
	pointer            bool
	outline            *scene.Object
	outlineCalls       int
}

func (o *fakeOverlay) MoveTooltip(x, y float32) { o.tooltipX, o.tooltipY = x, y }
func (o *fakeOverlay) ShowTooltip(text string)  { o.text, o.visible = text, true }
func (o *fakeOverlay) HideTooltip()             { o.visible = false }
func (o *fakeOverlay) SetPointerCursor(on bool) { o.pointer = on }
func (o *fakeOverlay) SetOutline(obj *scene.Object) {
	o.outline = obj
	o.outlineCalls++
}

type fakeRenderer struct {
	frames  int
	last    CameraState
	resized [2]int
}

func (r *fakeRenderer) RenderFrame(g *scene.Graph, cam CameraState) {
	r.frames++
	r.last = cam
}

func (r *fakeRenderer) Resize(w, h int) { r.resized = [2]int{w, h} }

type countingPicker struct {
	g     *scene.Graph
	calls int
}

func (p *countingPicker) Pick(r scene.Ray) (scene.Hit, bool) {
	p.calls++
	return p.g.Pick(r)
}

func cube(name string, pos mgl32.Vec3) *scene.Object {
	o := scene.NewObject(name, scene.KindCube)
	o.Label = name
	o.Interactive = true
	o.Transform.Position = pos
	o.AddLeaf("mesh", scene.CenteredBox(mgl32.Vec3{2, 2, 2}))
	return o
}

// newController returns an 800x600 controller with the camera at (0,0,15) looking down -Z.
func newController(t *testing.T, objs ...*scene.Object) (*Controller, *fakeOverlay, *fakeRenderer) {
	t.Helper()
	g := scene.New()
	for _, o := range objs {
		g.Add(o)
	}
	ov := &fakeOverlay{}
	r := &fakeRenderer{}
	c := New(DefaultConfig(), g, WithOverlay(ov), WithRenderer(r))
	require.Equal(t, mgl32.Vec3{0, 0, 15}, c.Camera().Position)
	return c, ov, r
}

func center(c *Controller) {
	c.OnPointerMove(400, 300)
}

func TestPointerNormalisation(t *testing.T) {
	c, ov, _ := newController(t)
	c.OnPointerMove(0, 0)
	assert.Equal(t, mgl32.Vec2{-1, 1}, c.State().Pointer)
	c.OnPointerMove(800, 600)
	assert.Equal(t, mgl32.Vec2{1, -1}, c.State().Pointer)
	c.OnPointerMove(400, 300)
	assert.Equal(t, mgl32.Vec2{0, 0}, c.State().Pointer)
	assert.Equal(t, float32(415), ov.tooltipX)
	assert.Equal(t, float32(315), ov.tooltipY)
}

func TestCenterPointerHoversOriginObject(t *testing.T) {
	obj := cube("logo", mgl32.Vec3{})
	obj.Transform.Scale = mgl32.Vec3{0.5, 0.5, 0.5}
	c, ov, r := newController(t, obj)

	center(c)
	c.Tick(frame)

	assert.Same(t, obj, c.Hovered())
	assert.Equal(t, "hovered(logo)", c.State().HoverState())
	assert.InDelta(t, 0.575, obj.EffectiveScale().X(), 1e-6)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, obj.Transform.Scale)
	assert.Same(t, obj, ov.outline)
	assert.True(t, ov.pointer)
	assert.True(t, ov.visible)
	assert.Equal(t, "logo", ov.text)
	assert.Equal(t, 1, r.frames)
}

func TestHoverTransitions(t *testing.T) {
	a := cube("a", mgl32.Vec3{0, 0, 0})
	b := cube("b", mgl32.Vec3{6, 0, 0})
	c, ov, _ := newController(t, a, b)

	// Unhovered --no hit--> Unhovered
	c.OnPointerMove(0, 0)
	c.Tick(frame)
	assert.Nil(t, c.Hovered())
	assert.Equal(t, 0, ov.outlineCalls)

	// Unhovered --hit--> Hovered(a)
	center(c)
	c.Tick(2 * frame)
	assert.Same(t, a, c.Hovered())
	assert.Equal(t, float32(1.15), a.Emphasis())

	// Hovered(a) --same--> Hovered(a), no re-application
	for i := 0; i < 10; i++ {
		center(c)
		c.Tick(time.Duration(3+i) * frame)
	}
	assert.Equal(t, float32(1.15), a.Emphasis())
	assert.Equal(t, 1, ov.outlineCalls)

	// Hovered(a) --different--> Hovered(b): project b's center through the settled camera
	c.OnPointerMove(toScreen(c, b.Transform.Position))
	c.Tick(14 * frame)
	require.Same(t, b, c.Hovered())
	assert.Equal(t, float32(1), a.Emphasis())
	assert.Equal(t, float32(1.15), b.Emphasis())
	assert.Equal(t, "b", ov.text)

	// Hovered(b) --no hit--> Unhovered
	c.OnPointerMove(0, 0)
	c.Tick(15 * frame)
	assert.Nil(t, c.Hovered())
	assert.Equal(t, float32(1), b.Emphasis())
	assert.Nil(t, ov.outline)
	assert.False(t, ov.pointer)
	assert.False(t, ov.visible)
}

// toScreen projects p into window pixels through c's current camera.
func toScreen(c *Controller, p mgl32.Vec3) (float32, float32) {
	cam := c.Camera()
	proj := mgl32.Perspective(mgl32.DegToRad(cam.FOV), cam.Aspect, cam.Near, cam.Far)
	view := mgl32.LookAtV(cam.Position, cam.LookAt(), mgl32.Vec3{0, 1, 0})
	ndc := mgl32.TransformCoordinate(p, proj.Mul4(view))
	return (ndc.X() + 1) / 2 * 800, (1 - ndc.Y()) / 2 * 600
}

func TestRepeatedHoverNeverCompounds(t *testing.T) {
	obj := cube("a", mgl32.Vec3{})
	c, _, _ := newController(t, obj)
	elapsed := time.Duration(0)
	for i := 0; i < 50; i++ {
		elapsed += frame
		center(c)
		c.Tick(elapsed)
		elapsed += frame
		c.OnPointerMove(0, 0)
		c.Tick(elapsed)
	}
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, obj.EffectiveScale())
	center(c)
	c.Tick(elapsed + frame)
	assert.Equal(t, float32(1.15), obj.EffectiveScale().X())
}

func TestHoverWithoutLabelHidesTooltip(t *testing.T) {
	named := cube("named", mgl32.Vec3{})
	c, ov, _ := newController(t, named)
	center(c)
	c.Tick(frame)
	require.True(t, ov.visible)

	named.Label = ""
	c.OnPointerMove(0, 0)
	c.Tick(2 * frame)
	center(c)
	c.Tick(3 * frame)
	assert.Same(t, named, c.Hovered())
	assert.False(t, ov.visible)
}

func TestPointerBurstPerformsOneHitTest(t *testing.T) {
	g := scene.New()
	g.Add(cube("a", mgl32.Vec3{}))
	p := &countingPicker{g: g}
	c := New(DefaultConfig(), g, WithPicker(p))

	c.Tick(frame)
	assert.Equal(t, 0, c.HitTests(), "no pointer sample, no ray cast")

	for i := 0; i < 100; i++ {
		c.OnPointerMove(float32(i), float32(i))
	}
	c.Tick(2 * frame)
	assert.Equal(t, 1, c.HitTests())
	assert.Equal(t, 1, p.calls)

	c.Tick(3 * frame)
	assert.Equal(t, 1, c.HitTests())
}

func TestCameraConvergesMonotonically(t *testing.T) {
	c, _, _ := newController(t)
	c.OnScroll(-200)
	target := c.Camera().TargetPosition
	require.InDelta(t, 25, target.Z(), 1e-5)

	before := c.Camera().Position
	c.Tick(frame)
	mid := c.Camera().Position
	c.Tick(2 * frame)
	after := c.Camera().Position

	first := mid.Sub(before).Len()
	second := after.Sub(mid).Len()
	assert.Greater(t, first, float32(0))
	assert.Less(t, second, first)
	assert.InDelta(t, 15+10*0.07, mid.Z(), 1e-3)
}

func TestFixedFactorWhenReferenceFPSZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReferenceFPS = 0
	c := New(cfg, scene.New())
	c.OnScroll(-200)
	c.Tick(time.Second) // dt ignored
	assert.InDelta(t, 15.7, c.Camera().Position.Z(), 1e-4)
	assert.InDelta(t, -0.0002*-200*0.07, c.Camera().RotationY, 1e-7)
}

func TestSmoothingIsFrameRateIndependent(t *testing.T) {
	at60 := smoothing(0.07, 60, 1.0/60)
	assert.InDelta(t, 0.07, at60, 1e-6)

	at120 := smoothing(0.07, 60, 1.0/120)
	assert.InDelta(t, at60, 1-(1-at120)*(1-at120), 1e-6)
	assert.Equal(t, float32(0), smoothing(0.07, 60, 0))
}

func TestScrollDistanceClampsAtFloor(t *testing.T) {
	c, _, _ := newController(t)
	// a positive top offset (page pulled down) pulls the camera in
	for _, top := range []float32{0, 100, 220, 5000, 1e6} {
		c.OnScroll(top)
		assert.GreaterOrEqual(t, c.Camera().TargetPosition.Z(), float32(4))
	}
	c.OnScroll(1e6)
	assert.Equal(t, float32(4), c.Camera().TargetPosition.Z())
	c.OnScroll(-100)
	assert.InDelta(t, 20, c.Camera().TargetPosition.Z(), 1e-5)

	for i := 0; i < 600; i++ {
		c.OnScroll(1e6)
		c.Tick(time.Duration(i+1) * frame)
	}
	assert.GreaterOrEqual(t, c.Camera().Position.Z(), float32(4))
	assert.InDelta(t, 4, c.Camera().Position.Z(), 1e-3)
}

func TestScrollTargets(t *testing.T) {
	c, _, _ := newController(t)
	c.OnScroll(-1000)
	cam := c.Camera()
	assert.InDelta(t, 0.2, cam.TargetPosition.X(), 1e-6)
	assert.InDelta(t, 0.2, cam.TargetRotationY, 1e-6)
	assert.Equal(t, float32(1000), c.State().ScrollTop)
}

func TestScrollThenClickWithoutHoverStaysUnzoomed(t *testing.T) {
	c, _, _ := newController(t)
	c.OnScroll(-50)
	c.OnClick()
	assert.False(t, c.State().Zoomed)
	assert.Equal(t, "scrolling", c.State().ZoomMode())
}

func TestClickWithoutHoverLeavesZoomTarget(t *testing.T) {
	c, _, _ := newController(t)
	before := c.State().ZoomTarget
	c.OnClick()
	assert.False(t, c.State().Zoomed)
	assert.Equal(t, before, c.State().ZoomTarget)
}

func TestClickZoomsThenScrollCancels(t *testing.T) {
	obj := cube("eye", mgl32.Vec3{0, 0, -20})
	c, _, _ := newController(t, obj)
	center(c)
	c.Tick(frame)
	require.Same(t, obj, c.Hovered())

	c.OnClick()
	st := c.State()
	require.True(t, st.Zoomed)
	assert.InDelta(t, -10, st.ZoomTarget.Z(), 1e-5)
	assert.InDelta(t, 0, st.ZoomTarget.X(), 1e-5)

	start := c.Camera().Position
	c.Tick(2 * frame)
	assert.Less(t, c.Camera().Position.Z(), start.Z(), "camera moves toward the zoom target")

	c.OnScroll(-10)
	assert.False(t, c.State().Zoomed)
}

func TestZoomStandoffFollowsYaw(t *testing.T) {
	obj := cube("a", mgl32.Vec3{})
	c, _, _ := newController(t, obj)
	center(c)
	c.Tick(frame)
	require.NotNil(t, c.Hovered())

	c.camera.RotationY = mgl32.DegToRad(90)
	c.OnClick()
	// forward is -X at yaw 90 degrees, so the camera settles on +X
	assert.InDelta(t, 10, c.State().ZoomTarget.X(), 1e-4)
	assert.InDelta(t, 0, c.State().ZoomTarget.Z(), 1e-4)
}

func TestScrollByClampsAndKeepsZoomAtBoundary(t *testing.T) {
	obj := cube("a", mgl32.Vec3{})
	c, _, _ := newController(t, obj)
	center(c)
	c.Tick(frame)
	c.OnClick()
	require.True(t, c.State().Zoomed)

	c.ScrollBy(-100)
	assert.True(t, c.State().Zoomed, "already at the top, nothing scrolls")

	c.OnWheel(-1)
	assert.False(t, c.State().Zoomed)
	assert.Equal(t, float32(120), c.State().ScrollTop)

	c.ScrollBy(1e9)
	assert.Equal(t, float32(6000), c.State().ScrollTop)
}

func TestResize(t *testing.T) {
	c, _, r := newController(t)
	c.OnResize(1920, 1080)
	assert.Equal(t, [2]int{1920, 1080}, r.resized)
	assert.InDelta(t, 16.0/9.0, c.Camera().Aspect, 1e-6)

	c.OnPointerMove(1920, 0)
	assert.Equal(t, mgl32.Vec2{1, 1}, c.State().Pointer)

	c.OnResize(0, 10)
	assert.Equal(t, [2]int{1920, 1080}, r.resized)
}

func TestEmptySceneHasNoHit(t *testing.T) {
	c, ov, r := newController(t)
	center(c)
	assert.NotPanics(t, func() { c.Tick(frame) })
	assert.Nil(t, c.Hovered())
	assert.Equal(t, 1, c.HitTests())
	assert.Equal(t, 0, ov.outlineCalls)
	assert.Equal(t, 1, r.frames)
}

func TestSetConfigKeepsZoom(t *testing.T) {
	obj := cube("a", mgl32.Vec3{})
	c, _, _ := newController(t, obj)
	c.OnScroll(-100)
	center(c)
	c.Tick(frame)
	c.OnClick()

	cfg := DefaultConfig()
	cfg.BaseDistance = 30
	c.SetConfig(cfg)
	assert.True(t, c.State().Zoomed)
	assert.InDelta(t, 35, c.Camera().TargetPosition.Z(), 1e-5)
}

func TestHoverIgnoresEmptySpaceInsideRotatedBounds(t *testing.T) {
	bar := scene.NewObject("bar", scene.KindCube)
	bar.Label = "bar"
	bar.Interactive = true
	bar.Transform.Rotation = mgl32.Vec3{0, 0, mgl32.DegToRad(45)}
	bar.AddLeaf("bar", scene.CenteredBox(mgl32.Vec3{4, 0.2, 0.2}))
	c, ov, _ := newController(t, bar)

	c.OnPointerMove(toScreen(c, mgl32.Vec3{1.2, -1.2, 0}))
	c.Tick(frame)
	assert.Nil(t, c.Hovered())
	assert.Equal(t, "unhovered", c.State().HoverState())
	assert.False(t, ov.pointer)

	c.OnPointerMove(toScreen(c, mgl32.Vec3{1, 1, 0}))
	c.Tick(2 * frame)
	assert.Same(t, bar, c.Hovered())
}

func TestHoverPrefersNearerObjectInsideHollowModel(t *testing.T) {
	const h = 5
	var walls []scene.Triangle
	for _, x := range []float32{-h, h} {
		walls = append(walls,
			scene.Triangle{{x, -h, -h}, {x, h, -h}, {x, h, h}},
			scene.Triangle{{x, -h, -h}, {x, h, h}, {x, -h, h}},
			scene.Triangle{{-h, x, -h}, {h, x, -h}, {h, x, h}},
			scene.Triangle{{-h, x, -h}, {h, x, h}, {-h, x, h}},
		)
	}
	ring := scene.NewObject("ring", scene.KindModel)
	ring.Label = "ring"
	ring.Interactive = true
	ring.AddMesh("walls", scene.CenteredBox(mgl32.Vec3{10, 10, 10}), walls)
	logo := cube("logo", mgl32.Vec3{})
	c, ov, _ := newController(t, ring, logo)

	center(c)
	c.Tick(frame)
	assert.Same(t, logo, c.Hovered())
	assert.Equal(t, "hovered(logo)", c.State().HoverState())
	assert.Equal(t, "logo", ov.text)
	assert.Equal(t, float32(1), ring.Emphasis())
}
