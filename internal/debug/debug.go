package debug

import (
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fpsFontSize   = 20
	fpsPadding    = 12
	fpsLineHeight = fpsFontSize + 4
	logFontSize   = 14
	logLineHeight = logFontSize + 2
	// updateInterval: only refresh the text every N frames to reduce allocations.
	updateInterval = 30
)

// Debug holds runtime debugging overlays. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowState    bool
	ShowLog      bool
	font         rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	frameCount   uint32
	lines        []string
	lastMemStats runtime.MemStats
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetFont sets the font used to draw the overlays. Zero texture ID = use raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// Toggle flips every overlay on or off together (F3).
func (d *Debug) Toggle() {
	on := !(d.ShowFPS || d.ShowMemAlloc || d.ShowState || d.ShowLog)
	d.ShowFPS, d.ShowMemAlloc, d.ShowState, d.ShowLog = on, on, on, on
}

// Draw renders the enabled overlays: stats top-right in green, log tail bottom-left.
// Stats text is only rebuilt every updateInterval frames.
func (d *Debug) Draw(state State, logTail []string) {
	d.frameCount++
	if d.frameCount%updateInterval == 0 || d.lines == nil {
		var memAlloc uint64
		if d.ShowMemAlloc {
			runtime.ReadMemStats(&d.lastMemStats)
			memAlloc = d.lastMemStats.Alloc
		}
		d.lines = StatLines(d.options(), int(rl.GetFPS()), memAlloc, state)
	}

	screenW := float32(rl.GetScreenWidth())
	y := float32(fpsPadding)
	for _, text := range d.lines {
		w := d.measure(text, fpsFontSize)
		d.text(text, screenW-w-fpsPadding, y, fpsFontSize, rl.Green)
		y += fpsLineHeight
	}

	if d.ShowLog && len(logTail) > 0 {
		y := float32(rl.GetScreenHeight()) - fpsPadding - float32(len(logTail)*logLineHeight)
		for _, line := range logTail {
			d.text(line, fpsPadding, y, logFontSize, rl.LightGray)
			y += logLineHeight
		}
	}
}

func (d *Debug) options() Options {
	return Options{FPS: d.ShowFPS, MemAlloc: d.ShowMemAlloc, State: d.ShowState}
}

func (d *Debug) measure(text string, size int32) float32 {
	if d.font.Texture.ID != 0 {
		return rl.MeasureTextEx(d.font, text, float32(size), 1).X
	}
	return float32(rl.MeasureText(text, size))
}

func (d *Debug) text(text string, x, y float32, size int32, c rl.Color) {
	if d.font.Texture.ID != 0 {
		rl.DrawTextEx(d.font, text, rl.NewVector2(x, y), float32(size), 1, c)
		return
	}
	rl.DrawText(text, int32(x), int32(y), size, c)
}
