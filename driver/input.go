package driver

import (
	"math"

	"github.com/pthm-cable/inkfield/shader"
)

// PointerFromScreen converts a pixel position with y down into the centred
// [-1,1]² pointer space FrameInput expects, with y up. A zero-sized viewport
// yields the centre.
func PointerFromScreen(x, y float32, width, height int) shader.Vec2 {
	if width <= 0 || height <= 0 {
		return shader.Vec2{}
	}
	return shader.Vec2{
		X: x/float32(width)*2 - 1,
		Y: -(y/float32(height))*2 + 1,
	}
}

// ScriptedPointer is a deterministic figure-eight pointer path for runs
// without a real pointer. It sweeps the middle of the viewport with a
// period of four seconds.
func ScriptedPointer(t float64) shader.Vec2 {
	a := 2 * math.Pi * t / 4
	return shader.Vec2{
		X: float32(0.6 * math.Sin(a)),
		Y: float32(0.4 * math.Sin(2*a)),
	}
}
