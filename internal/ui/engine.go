package ui

import (
	"fmt"
	"os"
)

// Engine holds the current stylesheet and nodes and lays them out for the renderer.
// Draw order is node order (first node drawn first, then on top the next).
// Resolved styles are cached and only recomputed when sheet or nodes change to avoid per-frame allocations.
type Engine struct {
	sheet        *Stylesheet
	nodes        []*Node
	cachedStyles []ComputedStyle
	cacheValid   bool
	items        []Item
}

// Item is one node ready to draw: absolute bounds and its resolved style.
type Item struct {
	Node    *Node
	Style   ComputedStyle
	Bounds  Rect
	Opacity float32
}

// New creates an empty UI engine (no stylesheet, no nodes).
func New() *Engine {
	return &Engine{}
}

// LoadCSS loads and parses a CSS file from path. Replaces the current stylesheet.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	sheet, err := ParseCSS(string(data))
	if err != nil {
		return err
	}
	e.SetStylesheet(sheet)
	return nil
}

// SetStylesheet sets the stylesheet directly (e.g. from embedded or merged CSS).
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
	e.cacheValid = false
}

// AddNode appends a node. Nodes are drawn in order.
func (e *Engine) AddNode(n *Node) {
	e.nodes = append(e.nodes, n)
	e.cacheValid = false
}

// SetNodes replaces all nodes.
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
	e.cacheValid = false
}

// Nodes returns the current node list.
func (e *Engine) Nodes() []*Node {
	return e.nodes
}

// resolveProps merges the properties of every rule matching n, later rules winning.
func (e *Engine) resolveProps(n *Node) map[string]string {
	merged := make(map[string]string)
	if e.sheet == nil {
		return merged
	}
	for _, rule := range e.sheet.Rules {
		if !rule.Matches(n) {
			continue
		}
		for k, v := range rule.Props {
			merged[k] = v
		}
	}
	return merged
}

// Style returns the resolved style for n.
func (e *Engine) Style(n *Node) ComputedStyle {
	return ResolveProps(e.resolveProps(n))
}

// Layout resolves every visible node against the screen size and returns the draw list.
// The returned slice is reused by the next call.
func (e *Engine) Layout(screenW, screenH int32) []Item {
	if !e.cacheValid {
		e.cachedStyles = make([]ComputedStyle, len(e.nodes))
		for i, n := range e.nodes {
			e.cachedStyles[i] = e.Style(n)
		}
		e.cacheValid = true
	}
	e.items = e.items[:0]
	for i, n := range e.nodes {
		if n.Hidden {
			continue
		}
		style := e.cachedStyles[i]
		b := n.Bounds
		if style.Width > 0 {
			b.Width = float32(style.Width)
		}
		if style.Height > 0 {
			b.Height = float32(style.Height)
		}
		if style.WidthPct >= 0 {
			b.Width = float32(screenW * style.WidthPct / 100)
		}
		if style.HeightPct >= 0 {
			b.Height = float32(screenH * style.HeightPct / 100)
		}
		if !n.Positioned {
			b.X = float32(style.Left)
			b.Y = float32(style.Top)
			if style.LeftPct >= 0 {
				b.X = float32((screenW - int32(b.Width)) * style.LeftPct / 100)
			}
			if style.TopPct >= 0 {
				b.Y = float32((screenH - int32(b.Height)) * style.TopPct / 100)
			}
		}
		e.items = append(e.items, Item{Node: n, Style: style, Bounds: b, Opacity: style.Opacity * n.Opacity})
	}
	return e.items
}

// HasStylesheet returns whether a CSS file has been loaded.
func (e *Engine) HasStylesheet() bool {
	return e.sheet != nil && len(e.sheet.Rules) > 0
}

// Stylesheet returns the current stylesheet (may be nil).
func (e *Engine) Stylesheet() *Stylesheet {
	return e.sheet
}
