package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"portfolio-scene/internal/controller"
	"portfolio-scene/internal/ui"
)

// Function keys passed to Input.OnKey.
const (
	KeyInspector = rl.KeyF1
	KeyDebug     = rl.KeyF3
)

// Input translates raylib events into controller calls and applies the overlay's cursor.
type Input struct {
	// OnKey is called for KeyInspector and KeyDebug presses.
	OnKey func(key int32)

	lastX, lastY float32
	moved        bool
	pointer      bool
}

// Poll reads this frame's events. Call once per frame before the controller's Tick.
func (in *Input) Poll(ctl *controller.Controller, overlay *ui.Overlay) {
	if rl.IsWindowResized() {
		ctl.OnResize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	mouse := rl.GetMousePosition()
	if !in.moved || mouse.X != in.lastX || mouse.Y != in.lastY {
		in.lastX, in.lastY, in.moved = mouse.X, mouse.Y, true
		ctl.OnPointerMove(mouse.X, mouse.Y)
	}

	ctl.OnWheel(rl.GetMouseWheelMove())
	switch {
	case rl.IsKeyPressed(rl.KeyPageDown), rl.IsKeyPressed(rl.KeyDown):
		ctl.OnWheel(-1)
	case rl.IsKeyPressed(rl.KeyPageUp), rl.IsKeyPressed(rl.KeyUp):
		ctl.OnWheel(1)
	case rl.IsKeyPressed(rl.KeyHome):
		ctl.ScrollBy(-ctl.State().ScrollTop)
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		ctl.OnClick()
	}

	if in.OnKey != nil {
		for _, key := range []int32{KeyInspector, KeyDebug} {
			if rl.IsKeyPressed(key) {
				in.OnKey(key)
			}
		}
	}

	if overlay != nil && overlay.PointerCursor() != in.pointer {
		in.pointer = overlay.PointerCursor()
		if in.pointer {
			rl.SetMouseCursor(rl.MouseCursorPointingHand)
		} else {
			rl.SetMouseCursor(rl.MouseCursorDefault)
		}
	}
}
