package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind tells the renderer how to draw an object.
type Kind string

const (
	KindModel  Kind = "model"
	KindCube   Kind = "cube"
	KindSphere Kind = "sphere"
)

// Transform is position, Euler rotation (radians, applied X then Y then Z) and scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// Identity returns a transform at the origin with unit scale.
func Identity() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Matrix returns T * Rx * Ry * Rz * S.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Leaf is one hit-testable sub-mesh. Owner points back at the object that loaded it.
type Leaf struct {
	Name      string
	Bounds    Box // local to Owner
	Shape     Shape
	Triangles []Triangle // ShapeMesh only, local to Owner
	Owner     *Object
}

// Object is a named, transformed renderable unit. It may be a composite of several leaves.
//
// Emphasis is a multiplier kept apart from Transform.Scale so that a hover highlight can
// be removed exactly, however many times it is applied and reverted.
type Object struct {
	Name        string
	Label       string // tooltip text; empty means no tooltip
	Kind        Kind
	Source      string // model path for KindModel
	Texture     string // optional albedo texture
	Transform   Transform
	Interactive bool
	Parent      *Object
	Leaves      []*Leaf

	emphasis float32
}

// NewObject returns an object with identity transform and no emphasis.
func NewObject(name string, kind Kind) *Object {
	return &Object{
		Name:      name,
		Kind:      kind,
		Transform: Identity(),
		emphasis:  1,
	}
}

// AddLeaf appends a sub-mesh with local bounds and sets its back-reference.
func (o *Object) AddLeaf(name string, bounds Box) *Leaf {
	l := &Leaf{Name: name, Bounds: bounds, Owner: o}
	o.Leaves = append(o.Leaves, l)
	return l
}

// AddMesh appends a leaf hit-tested against its triangles. Bounds must enclose them.
func (o *Object) AddMesh(name string, bounds Box, tris []Triangle) *Leaf {
	l := o.AddLeaf(name, bounds)
	if len(tris) > 0 {
		l.Shape = ShapeMesh
		l.Triangles = tris
	}
	return l
}

// SetEmphasis sets the scale multiplier applied on top of Transform.Scale. Values <= 0 reset it to 1.
func (o *Object) SetEmphasis(factor float32) {
	if factor <= 0 {
		factor = 1
	}
	o.emphasis = factor
}

// Emphasis returns the current scale multiplier (1 when not emphasized).
func (o *Object) Emphasis() float32 {
	if o.emphasis == 0 {
		return 1
	}
	return o.emphasis
}

// Emphasized reports whether a multiplier other than 1 is applied.
func (o *Object) Emphasized() bool {
	return o.Emphasis() != 1
}

// EffectiveScale is Transform.Scale times the emphasis multiplier.
func (o *Object) EffectiveScale() mgl32.Vec3 {
	return o.Transform.Scale.Mul(o.Emphasis())
}

// LocalMatrix is the object's transform including emphasis.
func (o *Object) LocalMatrix() mgl32.Mat4 {
	t := o.Transform
	t.Scale = o.EffectiveScale()
	return t.Matrix()
}

// WorldMatrix composes the parent chain with the local matrix.
func (o *Object) WorldMatrix() mgl32.Mat4 {
	m := o.LocalMatrix()
	for p := o.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition is the translation of WorldMatrix.
func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.WorldMatrix().Col(3).Vec3()
}

// WorldBounds is the union of every leaf's bounds in world space. Empty for objects without leaves.
func (o *Object) WorldBounds() Box {
	m := o.WorldMatrix()
	out := EmptyBox()
	for _, l := range o.Leaves {
		out = out.Union(l.Bounds.Transform(m))
	}
	return out
}
