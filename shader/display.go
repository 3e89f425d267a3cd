package shader

import "math"

// DisplayParams are the tunable constants of the display program.
type DisplayParams struct {
	Warp      float32 // uv offset per unit of ink
	TimeScale float32 // phase speed of the oscillators
	Zoom      float32 // base spatial frequency
	Brighten  float32 // additive brightening per unit of ink
}

// DefaultDisplayParams returns the stock look.
func DefaultDisplayParams() DisplayParams {
	return DisplayParams{
		Warp:      0.1,
		TimeScale: 0.2,
		Zoom:      60,
		Brighten:  0.03,
	}
}

// DisplayUniforms mirrors the uniform block of the display program.
type DisplayUniforms struct {
	Time       float32
	Resolution Vec2
	Palette    Palette
	Params     DisplayParams
}

// Shade computes the output colour of one pixel from the ink value sampled
// at uv. The result is unclamped; the render target clamps it.
func Shade(u DisplayUniforms, uv Vec2, fluid float32) Color {
	p := u.Params
	d := uv.Add(Vec2{fluid * p.Warp, fluid * p.Warp})

	t := float64(u.Time * p.TimeScale)
	zoom := float64(p.Zoom)
	dx, dy := float64(d.X), float64(d.Y)

	n1 := oscillate(math.Sin(dx*zoom + t))
	n2 := oscillate(math.Cos(dy*(zoom*1.2) - t*0.8))
	n3 := oscillate(math.Sin((dx+dy)*(zoom*0.8) + t))

	colA := Mix(u.Palette[0], u.Palette[1], n1)
	colB := Mix(u.Palette[2], u.Palette[3], n2)

	return Mix(colA, colB, n3).AddScalar(fluid * p.Brighten)
}
