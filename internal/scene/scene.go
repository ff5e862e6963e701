package scene

// maxAncestorDepth bounds the walk from a leaf's owner up to its interactive ancestor.
const maxAncestorDepth = 32

// Graph holds every object in the scene in insertion order. It is read by the renderer and
// mutated only by the frame loop; it does no locking.
type Graph struct {
	objects []*Object
	byName  map[string]*Object
}

// New returns an empty scene graph.
func New() *Graph {
	return &Graph{byName: make(map[string]*Object)}
}

// Add appends obj. Objects are never removed before teardown. A later object with the same
// name shadows the earlier one for Find but both stay in the draw list.
func (g *Graph) Add(obj *Object) {
	if obj == nil {
		return
	}
	g.objects = append(g.objects, obj)
	if obj.Name != "" {
		g.byName[obj.Name] = obj
	}
}

// Len returns the number of objects.
func (g *Graph) Len() int {
	return len(g.objects)
}

// Objects returns the draw list. Callers must not modify the slice.
func (g *Graph) Objects() []*Object {
	return g.objects
}

// Find returns the object with the given name, or nil.
func (g *Graph) Find(name string) *Object {
	return g.byName[name]
}

// Interactive returns the objects flagged as hit-testable.
func (g *Graph) Interactive() []*Object {
	var out []*Object
	for _, o := range g.objects {
		if o.Interactive {
			out = append(out, o)
		}
	}
	return out
}

// Resolve walks from obj up the parent chain and returns the first interactive object, or nil.
func Resolve(obj *Object) *Object {
	for i := 0; obj != nil && i < maxAncestorDepth; i++ {
		if obj.Interactive {
			return obj
		}
		obj = obj.Parent
	}
	return nil
}

// Hit is the result of a successful Pick.
type Hit struct {
	Object   *Object // top-level interactive object
	Leaf     *Leaf   // sub-mesh actually struck
	Distance float32 // ray parameter
}

// Pick casts r against every leaf that belongs to (or descends from) an interactive object
// and returns the nearest hit resolved to its interactive ancestor. A leaf's world bounds are
// tested first; only leaves whose bounds are struck nearer than the best hit so far get the
// exact test of their Shape. An empty or not yet populated graph yields no hit.
func (g *Graph) Pick(r Ray) (Hit, bool) {
	var best Hit
	found := false
	for _, o := range g.objects {
		if len(o.Leaves) == 0 || Resolve(o) == nil {
			continue
		}
		m := o.WorldMatrix()
		var local Ray
		inverted := false
		for _, l := range o.Leaves {
			entry, ok := l.Bounds.Transform(m).IntersectRay(r)
			if !ok || (found && entry >= best.Distance) {
				continue
			}
			if !inverted {
				if m.Det() == 0 {
					break
				}
				local = r.Transform(m.Inv())
				inverted = true
			}
			t, ok := l.intersect(local)
			if !ok || (found && t >= best.Distance) {
				continue
			}
			best = Hit{Object: Resolve(l.Owner), Leaf: l, Distance: t}
			found = true
		}
	}
	if found && best.Object == nil {
		return Hit{}, false
	}
	return best, found
}
