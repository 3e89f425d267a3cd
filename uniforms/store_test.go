package uniforms

import (
	"testing"

	"github.com/pthm-cable/inkfield/shader"
)

var testPalette = shader.Palette{
	{R: 0.29, G: 0, B: 0.88},
	{R: 0.56, G: 0.18, B: 0.89},
	{R: 0.95, G: 0.15, B: 0.07},
	{R: 0.96, G: 0.69, B: 0.10},
}

func TestPaletteArityGuard(t *testing.T) {
	s := NewStore(SimulationParams{Decay: 0.98}, testPalette)

	tests := []struct {
		name   string
		colors []shader.Color
	}{
		{"nil", nil},
		{"three", []shader.Color{{R: 1}, {G: 1}, {B: 1}}},
		{"five", []shader.Color{{R: 1}, {G: 1}, {B: 1}, {R: 1, G: 1}, {G: 1, B: 1}}},
	}
	for _, tc := range tests {
		if s.SetPalette(tc.colors) {
			t.Errorf("%s: SetPalette accepted %d colours", tc.name, len(tc.colors))
		}
		if s.Palette() != testPalette {
			t.Errorf("%s: palette changed to %+v", tc.name, s.Palette())
		}
	}

	next := []shader.Color{{R: 1}, {G: 1}, {B: 1}, {R: 1, G: 1, B: 1}}
	if !s.SetPalette(next) {
		t.Fatal("SetPalette rejected four colours")
	}
	got := s.Palette()
	for i := range next {
		if got[i] != next[i] {
			t.Errorf("colour %d = %+v, want %+v", i, got[i], next[i])
		}
	}
	if s.Display().Palette != got {
		t.Error("display snapshot does not carry the new palette")
	}
}

func TestSetPaletteCopies(t *testing.T) {
	s := NewStore(SimulationParams{}, testPalette)
	in := []shader.Color{{R: 1}, {G: 1}, {B: 1}, {R: 1, G: 1, B: 1}}
	s.SetPalette(in)
	in[0] = shader.Color{}
	if s.Palette()[0] != (shader.Color{R: 1}) {
		t.Error("store aliases the caller's slice")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	p := SimulationParams{Decay: 0.97, BrushRadius: 0.1, AutoRadius: 0.25, AutoStrength: 0.05}
	s := NewStore(p, testPalette)
	if got := s.Params(); got != p {
		t.Errorf("Params() = %+v, want %+v", got, p)
	}

	sim := s.Simulation()
	if sim.Decay != 0.97 || sim.Pointer.Radius != 0.1 || sim.Auto.Radius != 0.25 || sim.Auto.Strength != 0.05 {
		t.Errorf("simulation snapshot does not reflect params: %+v", sim.SimulationUniforms)
	}
	if sim.Pointer.Strength != 0 {
		t.Errorf("pointer strength should start at 0, got %f", sim.Pointer.Strength)
	}
}

func TestSettersFeedSnapshots(t *testing.T) {
	s := NewStore(SimulationParams{Decay: 0.98, BrushRadius: 0.15}, testPalette)
	s.SetResolution(320, 200)
	s.SetPointerBrush(shader.Vec2{X: 0.2, Y: 0.8}, 0.05)
	s.SetAutoBrush(shader.Vec2{X: 0.6, Y: 0.4})
	s.SetTime(12.5)

	sim := s.Simulation()
	if sim.Resolution != (shader.Vec2{X: 320, Y: 200}) {
		t.Errorf("sim resolution = %+v", sim.Resolution)
	}
	if sim.Pointer.Pos != (shader.Vec2{X: 0.2, Y: 0.8}) || sim.Pointer.Strength != 0.05 {
		t.Errorf("pointer brush = %+v", sim.Pointer)
	}
	if sim.Auto.Pos != (shader.Vec2{X: 0.6, Y: 0.4}) {
		t.Errorf("auto brush = %+v", sim.Auto)
	}

	disp := s.Display()
	if disp.Time != 12.5 || disp.Resolution != sim.Resolution {
		t.Errorf("display snapshot = time %f res %+v", disp.Time, disp.Resolution)
	}
	if disp.Params != shader.DefaultDisplayParams() {
		t.Errorf("display params = %+v, want defaults", disp.Params)
	}
}
