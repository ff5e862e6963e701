package ui

import (
	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/scene"
)

var _ controller.Overlay = (*Overlay)(nil)

// MeasureFunc returns the pixel width of text at a font size.
type MeasureFunc func(text string, fontSize int32) float32

// Overlay is the chrome over the 3D view: tooltip, loading screen, inspector, plus the
// cursor and outline state the renderer reads. It implements controller.Overlay.
type Overlay struct {
	engine    *Engine
	tooltip   *Node
	loading   *LoadingScreen
	inspector *Inspector
	measure   MeasureFunc

	pointer bool
	outline *scene.Object

	inspecting bool
	selection  Selection
	nodes      []*Node
}

// NewOverlay builds the overlay nodes on engine. A nil engine gets an empty one.
func NewOverlay(engine *Engine) *Overlay {
	if engine == nil {
		engine = New()
	}
	o := &Overlay{
		engine:    engine,
		tooltip:   NewNode("label", "tooltip", "tooltip", ""),
		loading:   NewLoadingScreen(),
		inspector: NewInspector(),
		measure:   approxMeasure,
	}
	o.tooltip.Hidden = true
	o.tooltip.Positioned = true
	return o
}

// approxMeasure assumes a glyph is a bit over half as wide as it is tall.
func approxMeasure(text string, fontSize int32) float32 {
	return float32(len(text)) * float32(fontSize) * 0.55
}

// SetMeasure installs the renderer's text measurer.
func (o *Overlay) SetMeasure(fn MeasureFunc) {
	if fn != nil {
		o.measure = fn
	}
}

// Engine returns the style engine.
func (o *Overlay) Engine() *Engine { return o.engine }

// Loading returns the loading screen.
func (o *Overlay) Loading() *LoadingScreen { return o.loading }

// MoveTooltip places the tooltip's top-left corner.
func (o *Overlay) MoveTooltip(x, y float32) {
	o.tooltip.Bounds.X = x
	o.tooltip.Bounds.Y = y
}

// ShowTooltip sets the text and shows the tooltip, sized to fit the text plus padding.
func (o *Overlay) ShowTooltip(text string) {
	o.tooltip.Text = text
	o.tooltip.Hidden = false
	style := o.engine.Style(o.tooltip)
	o.tooltip.Bounds.Width = o.measure(text, style.FontSize) + 2*float32(style.PaddingX)
	o.tooltip.Bounds.Height = float32(style.FontSize + 2*style.PaddingY)
}

// HideTooltip hides the tooltip, keeping its text.
func (o *Overlay) HideTooltip() {
	o.tooltip.Hidden = true
}

// Tooltip returns the tooltip text, position and visibility.
func (o *Overlay) Tooltip() (text string, x, y float32, visible bool) {
	return o.tooltip.Text, o.tooltip.Bounds.X, o.tooltip.Bounds.Y, !o.tooltip.Hidden
}

// SetPointerCursor records whether the pointing-hand cursor should show.
func (o *Overlay) SetPointerCursor(on bool) { o.pointer = on }

// PointerCursor reports the cursor affordance.
func (o *Overlay) PointerCursor() bool { return o.pointer }

// SetOutline sets the object to outline, or nil for none.
func (o *Overlay) SetOutline(obj *scene.Object) { o.outline = obj }

// Outline returns the outlined object, or nil.
func (o *Overlay) Outline() *scene.Object { return o.outline }

// Inspect shows (or hides) the inspector panel with sel.
func (o *Overlay) Inspect(visible bool, sel Selection) {
	o.inspecting = visible
	o.selection = sel
}

// Layout returns the draw list for a screen of the given size: loading screen, inspector,
// then tooltip on top.
func (o *Overlay) Layout(screenW, screenH int32) []Item {
	nodes := o.nodes[:0]
	if o.loading.Visible() {
		nodes = append(nodes, o.loading.Nodes()...)
	}
	nodes = o.inspector.AppendNodes(nodes, o.inspecting, o.selection)
	nodes = append(nodes, o.tooltip)
	o.nodes = nodes
	if !sameNodes(o.engine.Nodes(), nodes) {
		o.engine.SetNodes(append([]*Node(nil), nodes...))
	}
	items := o.engine.Layout(screenW, screenH)
	if o.loading.Visible() {
		// the fill is placed from the bar's bounds, so lay out twice only when it moved
		before := o.loading.fill.Bounds
		o.loading.place(items)
		if o.loading.fill.Bounds != before {
			items = o.engine.Layout(screenW, screenH)
		}
	}
	return items
}

func sameNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
