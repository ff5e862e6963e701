package ui

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FadeDuration is how long the loading screen takes to fade out, in seconds.
const FadeDuration = 0.5

// LoadingScreen is the full-window cover shown while assets load: a progress bar with a
// percentage label. Finish starts a fade; once it completes the nodes are hidden for good.
type LoadingScreen struct {
	screen *Node
	bar    *Node
	fill   *Node
	label  *Node

	loaded, total int
	fade          *gween.Tween
	opacity       float32
	done          bool
}

// NewLoadingScreen creates the nodes, styled by #loading-screen, .loading-bar, .loading-fill
// and .loading-label.
func NewLoadingScreen() *LoadingScreen {
	l := &LoadingScreen{
		screen:  NewNode("panel", "loading-screen", "loading-screen", ""),
		bar:     NewNode("panel", "loading-bar", "", ""),
		fill:    NewNode("panel", "loading-fill", "", ""),
		label:   NewNode("label", "loading-label", "", ""),
		opacity: 1,
	}
	// the fill follows the bar; see place
	l.fill.Positioned = true
	l.SetProgress(0, 0)
	return l
}

// Nodes returns the nodes in draw order.
func (l *LoadingScreen) Nodes() []*Node {
	return []*Node{l.screen, l.bar, l.fill, l.label}
}

// SetProgress updates the bar. total 0 shows an empty bar.
func (l *LoadingScreen) SetProgress(loaded, total int) {
	if loaded < 0 {
		loaded = 0
	}
	if total > 0 && loaded > total {
		loaded = total
	}
	l.loaded, l.total = loaded, total
	l.label.Text = fmt.Sprintf("Loading %d%%", int(l.Fraction()*100+0.5))
}

// Fraction returns loaded/total in [0,1].
func (l *LoadingScreen) Fraction() float32 {
	if l.total <= 0 {
		return 0
	}
	return float32(l.loaded) / float32(l.total)
}

// Finish starts the fade-out. Calling it again has no effect.
func (l *LoadingScreen) Finish() {
	if l.fade != nil || l.done {
		return
	}
	if l.total > 0 {
		l.SetProgress(l.total, l.total)
	}
	l.fade = gween.New(1, 0, FadeDuration, ease.Linear)
}

// Fading reports whether Finish has been called and the fade is still running.
func (l *LoadingScreen) Fading() bool {
	return l.fade != nil && !l.done
}

// Update advances the fade by dt seconds.
func (l *LoadingScreen) Update(dt float32) {
	if l.fade == nil || l.done {
		return
	}
	v, finished := l.fade.Update(dt)
	l.opacity = v
	for _, n := range l.Nodes() {
		n.Opacity = v
	}
	if finished {
		l.opacity = 0
		l.done = true
		for _, n := range l.Nodes() {
			n.Hidden = true
		}
	}
}

// Opacity returns the current fade value, 1 until Finish.
func (l *LoadingScreen) Opacity() float32 {
	return l.opacity
}

// Visible reports whether the screen still covers the scene.
func (l *LoadingScreen) Visible() bool {
	return !l.done
}

// place sizes the fill to the laid-out bar.
func (l *LoadingScreen) place(items []Item) {
	for _, it := range items {
		if it.Node != l.bar {
			continue
		}
		l.fill.Bounds = it.Bounds
		l.fill.Bounds.Width = it.Bounds.Width * l.Fraction()
		return
	}
}
