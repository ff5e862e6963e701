package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// parallelEpsilon: ray direction components smaller than this are treated as parallel to a slab.
const parallelEpsilon = 1e-8

// Ray is a half-line. Dir need not be normalized, but distances are in units of |Dir|.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Box is an axis-aligned bounding box. A box with any Min component greater than Max is empty.
type Box struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox returns a box that contains nothing; extending it with a point yields that point.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// CenteredBox returns a box of the given full size centered on the origin.
func CenteredBox(size mgl32.Vec3) Box {
	half := size.Mul(0.5)
	return Box{Min: half.Mul(-1), Max: half}
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Extend grows the box to contain p.
func (b Box) Extend(p mgl32.Vec3) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Transform returns the axis-aligned box enclosing the eight transformed corners.
func (b Box) Transform(m mgl32.Mat4) Box {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		out = out.Extend(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// IntersectRay returns the ray parameter of the nearest intersection in front of the origin
// (slab method). A ray starting inside the box hits at t=0.
func (b Box) IntersectRay(r Ray) (float32, bool) {
	if b.Empty() {
		return 0, false
	}
	tNear := -math32.Inf(1)
	tFar := math32.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Dir[i]
		if math32.Abs(d) < parallelEpsilon {
			if o < b.Min[i] || o > b.Max[i] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[i] - o) / d
		t2 := (b.Max[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tNear = math32.Max(tNear, t1)
		tFar = math32.Min(tFar, t2)
		if tNear > tFar {
			return 0, false
		}
	}
	if tFar < 0 {
		return 0, false
	}
	return math32.Max(tNear, 0), true
}
