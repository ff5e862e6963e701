package ui

import "fmt"

// Inspector is a right-side panel that shows name, position, scale and emphasis of the hovered
// object, plus the camera mode. It owns its nodes and updates their text when AppendNodes is
// called with visible true.
type Inspector struct {
	panel    *Node
	title    *Node
	name     *Node
	position *Node
	scale    *Node
	emphasis *Node
	mode     *Node
}

// NewInspector creates an Inspector with nodes styled by the engine's CSS (.inspector, .inspector-title, etc.).
func NewInspector() *Inspector {
	return &Inspector{
		panel:    NewNode("panel", "inspector", "", ""),
		title:    NewNode("label", "inspector-title", "", "Inspector"),
		name:     NewNode("label", "inspector-name", "", ""),
		position: NewNode("label", "inspector-position", "", ""),
		scale:    NewNode("label", "inspector-scale", "", ""),
		emphasis: NewNode("label", "inspector-emphasis", "", ""),
		mode:     NewNode("label", "inspector-mode", "", ""),
	}
}

// Selection holds the data shown in the inspector.
// Pass this from the controller layer; ui does not read the scene graph.
type Selection struct {
	Name     string
	Label    string
	Position [3]float32
	Scale    [3]float32
	Emphasis float32
	Mode     string // "scrolling" or "zoomed"
}

// AppendNodes appends inspector nodes to dst when visible is true, after updating labels from sel.
// When visible is false, dst is returned unchanged. Call every frame so visibility and content stay in sync.
func (in *Inspector) AppendNodes(dst []*Node, visible bool, sel Selection) []*Node {
	if !visible {
		return dst
	}
	name := sel.Name
	if name == "" {
		name = "-"
	}
	if sel.Label != "" && sel.Label != sel.Name {
		name += " (" + sel.Label + ")"
	}
	in.name.Text = "Name: " + name
	in.position.Text = fmt.Sprintf("Position: %.2f, %.2f, %.2f", sel.Position[0], sel.Position[1], sel.Position[2])
	in.scale.Text = fmt.Sprintf("Scale: %.2f, %.2f, %.2f", sel.Scale[0], sel.Scale[1], sel.Scale[2])
	in.emphasis.Text = fmt.Sprintf("Emphasis: x%.2f", sel.Emphasis)
	in.mode.Text = "Camera: " + sel.Mode
	return append(dst, in.panel, in.title, in.name, in.position, in.scale, in.emphasis, in.mode)
}
