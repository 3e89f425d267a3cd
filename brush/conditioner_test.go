package brush

import (
	"math"
	"testing"

	"github.com/pthm-cable/inkfield/shader"
)

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestInitialState(t *testing.T) {
	c := NewConditioner(DefaultParams())
	s := c.State()
	if s.Pointer != center || s.Last != center || s.Strength != 0 {
		t.Errorf("initial state = %+v, want centred with zero strength", s)
	}
}

func TestVelocityCap(t *testing.T) {
	c := NewConditioner(DefaultParams())

	s, _ := c.Update(shader.Vec2{X: 0, Y: 0}, 0)
	if s.Strength != 0 {
		t.Fatalf("raw (0,0) maps to the centre; expected zero strength, got %f", s.Strength)
	}

	s, _ = c.Update(shader.Vec2{X: 1, Y: 1}, 0.016)
	// Smoothed pointer moves 0.005 on each axis, a speed of ~0.00707 > cap.
	if !near(s.Strength, 0.05, 1e-6) {
		t.Errorf("strength after jump = %f, want capped 0.05", s.Strength)
	}
	if s.Strength > DefaultParams().MaxStrength()+1e-6 {
		t.Errorf("strength %f exceeds MaxStrength", s.Strength)
	}
}

func TestStrengthBelowCapIsProportional(t *testing.T) {
	c := NewConditioner(DefaultParams())
	// Target 0.6 moves the pointer by 0.001 on x only.
	s, _ := c.Update(shader.Vec2{X: 0.2, Y: 0}, 0)
	if !near(s.Strength, 0.01, 1e-5) {
		t.Errorf("strength = %f, want 0.01", s.Strength)
	}
}

func TestStillPointerDecaysToZero(t *testing.T) {
	c := NewConditioner(DefaultParams())
	raw := shader.Vec2{X: 0.8, Y: -0.4}
	var s State
	for i := 0; i < 5000; i++ {
		s, _ = c.Update(raw, float64(i)/60)
	}
	if s.Strength > 1e-4 {
		t.Errorf("strength after settling = %f, want ~0", s.Strength)
	}
	want := shader.Vec2{X: 0.9, Y: 0.3}
	if !near(s.Pointer.X, want.X, 1e-3) || !near(s.Pointer.Y, want.Y, 1e-3) {
		t.Errorf("pointer settled at %+v, want %+v", s.Pointer, want)
	}
}

func TestLastCommitsPointer(t *testing.T) {
	c := NewConditioner(DefaultParams())
	s, _ := c.Update(shader.Vec2{X: -1, Y: 1}, 0)
	if s.Last != s.Pointer {
		t.Errorf("last = %+v, want pointer %+v", s.Last, s.Pointer)
	}
}

func TestReset(t *testing.T) {
	c := NewConditioner(DefaultParams())
	c.Update(shader.Vec2{X: 1, Y: 1}, 0)
	c.Reset()
	if s := c.State(); s.Pointer != center || s.Strength != 0 {
		t.Errorf("state after Reset = %+v", s)
	}
}

func TestAutoPosition(t *testing.T) {
	tests := []struct {
		t    float64
		want shader.Vec2
	}{
		{0, shader.Vec2{X: 0.5, Y: 1}},
		{math.Pi / 0.4, shader.Vec2{X: 1, Y: float32((math.Cos(math.Pi*0.75) + 1) / 2)}},
	}
	for _, tc := range tests {
		got := AutoPosition(tc.t, 0.2, 0.3)
		if !near(got.X, tc.want.X, 1e-6) || !near(got.Y, tc.want.Y, 1e-6) {
			t.Errorf("AutoPosition(%f) = %+v, want %+v", tc.t, got, tc.want)
		}
	}

	c := NewConditioner(DefaultParams())
	for i := 0; i < 1000; i++ {
		p := c.AutoPosition(float64(i) * 0.37)
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("auto position %+v outside the unit square", p)
		}
	}
}

func TestAutoPositionIgnoresPointer(t *testing.T) {
	a := NewConditioner(DefaultParams())
	b := NewConditioner(DefaultParams())
	b.Update(shader.Vec2{X: 1, Y: -1}, 0)
	_, pa := a.Update(shader.Vec2{}, 4.2)
	_, pb := b.Update(shader.Vec2{X: -1, Y: 1}, 4.2)
	if pa != pb {
		t.Errorf("auto position depends on pointer history: %+v vs %+v", pa, pb)
	}
}
