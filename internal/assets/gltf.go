package assets

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"portfolio-scene/internal/scene"
)

// maxNodeDepth bounds the node walk; glTF forbids cycles but files are untrusted.
const maxNodeDepth = 64

// maxLeafTriangles caps the triangles kept for picking per mesh node. Larger meshes are
// picked by their bounds alone.
const maxLeafTriangles = 1 << 18

// ModelLeaf is the model-space geometry of one mesh node. Triangles is empty when the
// vertex data could not be read; the leaf is then picked by Bounds.
type ModelLeaf struct {
	Name      string
	Bounds    scene.Box
	Triangles []scene.Triangle
}

// ReadModelBounds opens a .glb or .gltf file and returns one leaf per mesh node, with bounds
// taken from the POSITION accessor min/max and triangles from the vertex data, both placed by
// the node hierarchy's transforms.
func ReadModelBounds(path string) ([]ModelLeaf, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf %s: %w", path, err)
	}
	leaves := modelLeaves(doc)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("gltf %s: no mesh with position bounds", path)
	}
	return leaves, nil
}

func modelLeaves(doc *gltf.Document) []ModelLeaf {
	var out []ModelLeaf
	var walk func(idx int, parent mgl32.Mat4, depth int)
	walk = func(idx int, parent mgl32.Mat4, depth int) {
		if idx < 0 || idx >= len(doc.Nodes) || depth > maxNodeDepth {
			return
		}
		node := doc.Nodes[idx]
		m := parent.Mul4(nodeMatrix(node))
		if node.Mesh != nil {
			if b := meshBounds(doc, int(*node.Mesh)); !b.Empty() {
				name := node.Name
				if name == "" {
					name = fmt.Sprintf("mesh%d", len(out))
				}
				out = append(out, ModelLeaf{Name: name, Bounds: b.Transform(m)})
			}
		}
		for _, child := range node.Children {
			walk(int(child), m, depth+1)
		}
	}
	for _, root := range rootNodes(doc) {
		walk(root, mgl32.Ident4(), 0)
	}
	if len(out) == 0 {
		// no scene graph: use each mesh untransformed
		for i, mesh := range doc.Meshes {
			if b := meshBounds(doc, i); !b.Empty() {
				name := mesh.Name
				if name == "" {
					name = fmt.Sprintf("mesh%d", i)
				}
				out = append(out, ModelLeaf{Name: name, Bounds: b})
			}
		}
	}
	return out
}

// rootNodes returns the default scene's nodes, the first scene's when no default is set.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	s := 0
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		s = int(*doc.Scene)
	}
	roots := make([]int, 0, len(doc.Scenes[s].Nodes))
	for _, n := range doc.Scenes[s].Nodes {
		roots = append(roots, int(n))
	}
	return roots
}

// nodeMatrix uses the explicit matrix when present, TRS otherwise.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	raw := n.MatrixOrDefault()
	if raw != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range raw {
			m[i] = float32(v)
		}
		return m
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// meshBounds unions the POSITION accessor bounds of every primitive.
func meshBounds(doc *gltf.Document, idx int) scene.Box {
	out := scene.EmptyBox()
	if idx < 0 || idx >= len(doc.Meshes) {
		return out
	}
	for _, prim := range doc.Meshes[idx].Primitives {
		acc, ok := prim.Attributes[gltf.POSITION]
		if !ok || int(acc) >= len(doc.Accessors) {
			continue
		}
		a := doc.Accessors[int(acc)]
		if len(a.Min) < 3 || len(a.Max) < 3 {
			continue
		}
		out = out.Union(scene.Box{
			Min: mgl32.Vec3{float32(a.Min[0]), float32(a.Min[1]), float32(a.Min[2])},
			Max: mgl32.Vec3{float32(a.Max[0]), float32(a.Max[1]), float32(a.Max[2])},
		})
	}
	return out
}

// meshTriangles reads every triangle primitive of a mesh through m. Primitives whose data
// cannot be read are skipped; degenerate triangles are dropped.
func meshTriangles(doc *gltf.Document, idx int, m mgl32.Mat4) []scene.Triangle {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil
	}
	var out []scene.Triangle
	for _, prim := range doc.Meshes[idx].Primitives {
		acc, ok := prim.Attributes[gltf.POSITION]
		if !ok || int(acc) >= len(doc.Accessors) {
			continue
		}
		pos, err := modeler.ReadPosition(doc, doc.Accessors[int(acc)], nil)
		if err != nil || len(pos) < 3 {
			continue
		}
		var indices []uint32
		if prim.Indices != nil && int(*prim.Indices) < len(doc.Accessors) {
			if indices, err = modeler.ReadIndices(doc, doc.Accessors[int(*prim.Indices)], nil); err != nil {
				continue
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for _, tri := range triangleIndices(prim.Mode, indices) {
			if int(tri[0]) >= len(pos) || int(tri[1]) >= len(pos) || int(tri[2]) >= len(pos) {
				continue
			}
			t := scene.Triangle{
				mgl32.TransformCoordinate(mgl32.Vec3(pos[tri[0]]), m),
				mgl32.TransformCoordinate(mgl32.Vec3(pos[tri[1]]), m),
				mgl32.TransformCoordinate(mgl32.Vec3(pos[tri[2]]), m),
			}
			if t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Len() == 0 {
				continue
			}
			if len(out) == maxLeafTriangles {
				return nil
			}
			out = append(out, t)
		}
	}
	return out
}

// triangleIndices expands lists, strips and fans into index triples. Other modes yield nothing.
func triangleIndices(mode gltf.PrimitiveMode, idx []uint32) [][3]uint32 {
	var out [][3]uint32
	switch mode {
	case gltf.PrimitiveTriangles:
		for i := 0; i+2 < len(idx); i += 3 {
			out = append(out, [3]uint32{idx[i], idx[i+1], idx[i+2]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				out = append(out, [3]uint32{idx[i], idx[i+1], idx[i+2]})
			} else {
				out = append(out, [3]uint32{idx[i+1], idx[i], idx[i+2]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			out = append(out, [3]uint32{idx[0], idx[i], idx[i+1]})
		}
	}
	return out
}
