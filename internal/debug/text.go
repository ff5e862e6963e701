package debug

import "fmt"

// State is the controller snapshot shown by the state overlay.
type State struct {
	Hover    string // "unhovered" or "hovered(name)"
	Mode     string // "scrolling" or "zoomed"
	Scroll   float32
	Camera   [3]float32
	HitTests int
	Loaded   int
	Total    int
}

// Options selects which stat lines to build.
type Options struct {
	FPS      bool
	MemAlloc bool
	State    bool
}

// StatLines formats the enabled stats, one line each, in display order.
func StatLines(opts Options, fps int, memAlloc uint64, s State) []string {
	lines := []string{}
	if opts.FPS {
		lines = append(lines, fmt.Sprintf("FPS: %d", fps))
	}
	if opts.MemAlloc {
		lines = append(lines, fmt.Sprintf("Mem: %.2f MiB", float64(memAlloc)/(1024*1024)))
	}
	if opts.State {
		lines = append(lines,
			"Hover: "+s.Hover,
			"Camera: "+s.Mode,
			fmt.Sprintf("Scroll: %.0f", s.Scroll),
			fmt.Sprintf("Pos: %.2f, %.2f, %.2f", s.Camera[0], s.Camera[1], s.Camera[2]),
			fmt.Sprintf("Picks: %d", s.HitTests),
			fmt.Sprintf("Assets: %d/%d", s.Loaded, s.Total),
		)
	}
	return lines
}
