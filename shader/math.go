// Package shader holds the two fragment programs that drive the ink field and
// a CPU rendition of the same per-texel math.
//
// The GLSL sources are the programs the GPU backend compiles. Simulate and
// Shade compute the same values one texel at a time so the software backend
// and the tests agree with what the GPU draws.
package shader

import "math"

// Vec2 is a 2D vector in normalized texture space.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns the component-wise product.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length.
func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Distance returns |v - o|.
func (v Vec2) Distance(o Vec2) float32 { return v.Sub(o).Len() }

// Color is a linear RGB triple. Components are not clamped until output.
type Color struct {
	R, G, B float32
}

// Add returns c + o.
func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }

// AddScalar adds s to every channel.
func (c Color) AddScalar(s float32) Color { return Color{c.R + s, c.G + s, c.B + s} }

// Clamped limits every channel to [0,1], as an 8-bit render target would.
func (c Color) Clamped() Color {
	return Color{Clamp(c.R, 0, 1), Clamp(c.G, 0, 1), Clamp(c.B, 0, 1)}
}

// RGBA8 quantizes the clamped colour to 8 bits per channel.
func (c Color) RGBA8() (r, g, b uint8) {
	cc := c.Clamped()
	return uint8(cc.R*255 + 0.5), uint8(cc.G*255 + 0.5), uint8(cc.B*255 + 0.5)
}

// Palette is the ordered set of gradient colours used by the display pass.
type Palette [4]Color

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Smoothstep is GLSL smoothstep. edge0 may be greater than edge1, which gives
// a falloff from 0 at edge0 to 1 at edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix is GLSL mix for colours.
func Mix(a, b Color, t float32) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// oscillate maps sin/cos output from [-1,1] to [0,1].
func oscillate(v float64) float32 {
	return float32(v*0.5 + 0.5)
}
