package controller

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"portfolio-scene/internal/scene"
)

// InteractionState is everything the input handlers write and Tick reads.
type InteractionState struct {
	Pointer    mgl32.Vec2 // normalised, y up
	ScrollTop  float32
	Zoomed     bool
	ZoomTarget mgl32.Vec3
	Hovered    *scene.Object
}

// HoverState names the hover state machine's current state.
func (s InteractionState) HoverState() string {
	if s.Hovered == nil {
		return "unhovered"
	}
	return "hovered(" + s.Hovered.Name + ")"
}

// ZoomMode names the zoom state machine's current state.
func (s InteractionState) ZoomMode() string {
	if s.Zoomed {
		return "zoomed"
	}
	return "scrolling"
}

// CameraState is the smoothed camera and its targets. RotationY is yaw in radians.
type CameraState struct {
	Position        mgl32.Vec3
	RotationY       float32
	TargetPosition  mgl32.Vec3
	TargetRotationY float32

	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// Forward is the unit view direction: -Z rotated by yaw.
func (c CameraState) Forward() mgl32.Vec3 {
	return mgl32.Rotate3DY(c.RotationY).Mul3x1(mgl32.Vec3{0, 0, -1})
}

// LookAt is a point one unit ahead of the camera.
func (c CameraState) LookAt() mgl32.Vec3 {
	return c.Position.Add(c.Forward())
}

// Ray returns the world-space ray from the camera through a normalised pointer sample.
func (c CameraState) Ray(p mgl32.Vec2) scene.Ray {
	tanHalf := math32.Tan(mgl32.DegToRad(c.FOV) / 2)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	local := mgl32.Vec3{p.X() * tanHalf * aspect, p.Y() * tanHalf, -1}
	dir := mgl32.Rotate3DY(c.RotationY).Mul3x1(local).Normalize()
	return scene.Ray{Origin: c.Position, Dir: dir}
}
