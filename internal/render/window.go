package render

import rl "github.com/gen2brain/raylib-go/raylib"

// WindowOptions sizes the window. Zero width or height uses the primary monitor.
type WindowOptions struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	TargetFPS  int
}

// Loop is driven by Run once per frame.
type Loop interface {
	Update() // input, loading, config
	Draw()   // called between BeginDrawing and EndDrawing; paints the whole frame
	Close()  // release GPU resources while the context still exists
}

// Run opens the window and runs the main loop until the window is closed.
func Run(opts WindowOptions, loop Loop) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if opts.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	defer rl.CloseWindow()
	if opts.Width <= 0 || opts.Height <= 0 {
		m := rl.GetCurrentMonitor()
		rl.SetWindowSize(rl.GetMonitorWidth(m), rl.GetMonitorHeight(m))
	}

	rl.SetExitKey(rl.KeyNull) // close via window button
	fps := opts.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))
	defer loop.Close()

	for !rl.WindowShouldClose() {
		loop.Update()

		rl.BeginDrawing()
		loop.Draw()
		rl.EndDrawing()
	}
}

// ScreenSize returns the current window size in pixels.
func ScreenSize() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}
