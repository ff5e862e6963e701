package controller

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"portfolio-scene/internal/scene"
	"portfolio-scene/internal/starfield"
)

// Frame is what an animator sees each tick.
type Frame struct {
	Graph   *scene.Graph
	DT      float32 // seconds since the previous tick
	Elapsed time.Duration
	Pointer mgl32.Vec2
}

// Animator advances one periodic local-transform update. Targets are looked up by name each
// frame; a target that has not loaded yet makes the step a no-op.
type Animator interface {
	Animate(f Frame)
}

// Spin rotates an object continuously. Rate is radians per second around each axis.
type Spin struct {
	Name string
	Rate mgl32.Vec3
}

func (s *Spin) Animate(f Frame) {
	obj := f.Graph.Find(s.Name)
	if obj == nil {
		return
	}
	obj.Transform.Rotation = obj.Transform.Rotation.Add(s.Rate.Mul(f.DT))
}

// Bob floats an object up and down: y = base + Amplitude*sin(phase), phase += Speed*dt.
// The base height is taken from the object the first time it is seen.
type Bob struct {
	Name      string
	Amplitude float32
	Speed     float32 // radians per second
	Phase     float32

	base float32
	seen *scene.Object
}

func (b *Bob) Animate(f Frame) {
	obj := f.Graph.Find(b.Name)
	if obj == nil {
		return
	}
	if b.seen != obj {
		b.seen = obj
		b.base = obj.Transform.Position.Y()
	}
	b.Phase += b.Speed * f.DT
	obj.Transform.Position[1] = b.base + b.Amplitude*math32.Sin(b.Phase)
}

// PointerTilt eases an object's rotation toward the pointer: yaw toward x*YawGain and pitch
// toward -y*PitchGain, by Factor per frame at ReferenceFPS.
type PointerTilt struct {
	Name         string
	YawGain      float32
	PitchGain    float32
	Factor       float32
	ReferenceFPS float32
}

func (p *PointerTilt) Animate(f Frame) {
	obj := f.Graph.Find(p.Name)
	if obj == nil {
		return
	}
	alpha := smoothing(p.Factor, p.ReferenceFPS, f.DT)
	rot := &obj.Transform.Rotation
	rot[1] += (f.Pointer.X()*p.YawGain - rot[1]) * alpha
	rot[0] += (-f.Pointer.Y()*p.PitchGain - rot[0]) * alpha
}

// Twinkle drives a starfield's per-star intensity.
type Twinkle struct {
	Field *starfield.Field
}

func (t *Twinkle) Animate(f Frame) {
	if t.Field == nil {
		return
	}
	t.Field.Twinkle(f.Elapsed)
}
