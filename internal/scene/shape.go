package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// triangleEpsilon: determinants below this mean the ray runs in the triangle's plane.
const triangleEpsilon = 1e-12

// Shape selects the exact test Pick runs once a leaf's world bounds are struck.
type Shape uint8

const (
	// ShapeBox is the leaf's Bounds, oriented with the object.
	ShapeBox Shape = iota
	// ShapeSphere is the sphere inscribed in Bounds.
	ShapeSphere
	// ShapeMesh is the leaf's Triangles.
	ShapeMesh
)

// Triangle is three vertices in the owner's local space.
type Triangle [3]mgl32.Vec3

// IntersectRay returns the ray parameter where r crosses the triangle (Möller-Trumbore).
// Both faces count.
func (tr Triangle) IntersectRay(r Ray) (float32, bool) {
	e1 := tr[1].Sub(tr[0])
	e2 := tr[2].Sub(tr[0])
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < triangleEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(tr[0])
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectSphere returns the nearest ray parameter on the sphere. A ray starting inside hits at t=0.
func IntersectSphere(r Ray, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := r.Origin.Sub(center)
	c := oc.Dot(oc) - radius*radius
	if c <= 0 {
		return 0, true
	}
	a := r.Dir.Dot(r.Dir)
	if a == 0 {
		return 0, false
	}
	b := oc.Dot(r.Dir)
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b - math32.Sqrt(disc)) / a
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Transform maps the ray through m. Dir is not renormalised, so parameters along the
// transformed ray equal parameters along r.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	return Ray{
		Origin: mgl32.TransformCoordinate(r.Origin, m),
		Dir:    mgl32.TransformNormal(r.Dir, m),
	}
}

// intersect runs the leaf's exact test against a ray already in the owner's local space.
func (l *Leaf) intersect(local Ray) (float32, bool) {
	switch l.Shape {
	case ShapeSphere:
		size := l.Bounds.Size()
		radius := math32.Min(size.X(), math32.Min(size.Y(), size.Z())) / 2
		return IntersectSphere(local, l.Bounds.Center(), radius)
	case ShapeMesh:
		best, found := float32(0), false
		for _, tr := range l.Triangles {
			if t, ok := tr.IntersectRay(local); ok && (!found || t < best) {
				best, found = t, true
			}
		}
		return best, found
	}
	return l.Bounds.IntersectRay(local)
}
