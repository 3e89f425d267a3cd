package driver

import (
	"testing"

	"github.com/pthm-cable/inkfield/shader"
)

func TestPointerFromScreen(t *testing.T) {
	tests := []struct {
		x, y float32
		w, h int
		want shader.Vec2
	}{
		{0, 0, 200, 100, shader.Vec2{X: -1, Y: 1}},
		{200, 100, 200, 100, shader.Vec2{X: 1, Y: -1}},
		{100, 50, 200, 100, shader.Vec2{X: 0, Y: 0}},
		{50, 75, 200, 100, shader.Vec2{X: -0.5, Y: -0.5}},
		{10, 10, 0, 100, shader.Vec2{}},
	}
	for _, tc := range tests {
		if got := PointerFromScreen(tc.x, tc.y, tc.w, tc.h); got != tc.want {
			t.Errorf("PointerFromScreen(%v,%v,%d,%d) = %+v, want %+v", tc.x, tc.y, tc.w, tc.h, got, tc.want)
		}
	}
}

func TestScriptedPointer(t *testing.T) {
	if got := ScriptedPointer(0); got != (shader.Vec2{}) {
		t.Errorf("ScriptedPointer(0) = %+v, want centre", got)
	}
	for i := 0; i < 100; i++ {
		p := ScriptedPointer(float64(i) * 0.13)
		if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 {
			t.Fatalf("ScriptedPointer left the viewport: %+v", p)
		}
	}
	a, b := ScriptedPointer(1.3), ScriptedPointer(5.3)
	if d := a.Distance(b); d > 1e-5 {
		t.Errorf("path is not periodic: %+v vs %+v", a, b)
	}
}
