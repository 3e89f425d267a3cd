package shader

// Brush is a circular ink source in normalized field space.
type Brush struct {
	Pos      Vec2
	Radius   float32
	Strength float32
}

// SimulationUniforms mirrors the uniform block of the simulation program.
type SimulationUniforms struct {
	Resolution Vec2
	Decay      float32
	Pointer    Brush // uMouse, uBrushSize, uBrushStrength
	Auto       Brush // uRandomPos, uRandomBrushSize, uRandomBrushStrength
}

// Aspect returns the aspect correction vector (width/height, 1).
// A degenerate resolution yields (1, 1).
func (u SimulationUniforms) Aspect() Vec2 {
	if u.Resolution.Y == 0 {
		return Vec2{1, 1}
	}
	return Vec2{u.Resolution.X / u.Resolution.Y, 1}
}

// BrushContribution returns the intensity a brush adds at aspect-corrected
// point p. It is zero at and beyond the radius and equals Strength at the centre.
func BrushContribution(b Brush, p, aspect Vec2) float32 {
	d := p.Distance(b.Pos.Mul(aspect))
	if d >= b.Radius {
		return 0
	}
	return Smoothstep(b.Radius, 0, d) * b.Strength
}

// Simulate advances one texel of the field. prev is the previous intensity
// sampled at uv. The result is always in [0,1].
func Simulate(u SimulationUniforms, uv Vec2, prev float32) float32 {
	v := prev * u.Decay

	aspect := u.Aspect()
	p := uv.Mul(aspect)

	v += BrushContribution(u.Pointer, p, aspect)
	v += BrushContribution(u.Auto, p, aspect)

	return Clamp(v, 0, 1)
}
