package ui

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float32
}

// Node is a single UI element: panel, label, etc. It has optional class and id for CSS matching,
// bounds (position and size), and optional text for labels.
// Hidden nodes are skipped by Layout.
type Node struct {
	Type   string // "panel", "label", etc.
	Class  string // e.g. "tooltip" for .tooltip
	ID     string // e.g. "loading-screen" for #loading-screen
	Bounds Rect
	Text   string // for label-type nodes
	Hidden bool

	// Opacity multiplies the stylesheet opacity. NewNode sets it to 1.
	Opacity float32
	// Positioned marks Bounds.X/Y as set by code; the stylesheet's left/top are then ignored.
	Positioned bool
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{
		Type:    typ,
		Class:   class,
		ID:      id,
		Text:    text,
		Opacity: 1,
	}
}
