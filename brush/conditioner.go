// Package brush turns raw pointer samples into the two ink sources of the
// simulation: a smoothed pointer brush whose strength follows pointer speed,
// and an autonomous brush that wanders on its own.
package brush

import (
	"math"

	"github.com/pthm-cable/inkfield/shader"
)

// Params tune the pointer smoother and the autonomous wander.
type Params struct {
	LerpFactor    float32 // fraction of the remaining distance covered per frame
	MaxVelocity   float32 // per-frame speed above which strength stops growing
	VelocityScale float32 // strength = min(velocity, MaxVelocity) * VelocityScale
	AutoFreqX     float64 // rad/s of the auto brush x oscillator
	AutoFreqY     float64 // rad/s of the auto brush y oscillator
}

// DefaultParams returns the stock smoothing constants.
func DefaultParams() Params {
	return Params{
		LerpFactor:    0.01,
		MaxVelocity:   0.005,
		VelocityScale: 10,
		AutoFreqX:     0.2,
		AutoFreqY:     0.3,
	}
}

// MaxStrength is the largest strength Update can produce.
func (p Params) MaxStrength() float32 {
	return p.MaxVelocity * p.VelocityScale
}

// State is the pointer brush after one update.
type State struct {
	Pointer  shader.Vec2 // smoothed position in [0,1]²
	Last     shader.Vec2 // smoothed position of the previous frame
	Strength float32
}

// Conditioner smooths pointer input frame by frame.
type Conditioner struct {
	params Params
	state  State
}

var center = shader.Vec2{X: 0.5, Y: 0.5}

// NewConditioner returns a conditioner with the pointer at the centre.
func NewConditioner(p Params) *Conditioner {
	c := &Conditioner{params: p}
	c.Reset()
	return c
}

// Reset puts the pointer back at the centre with zero strength.
func (c *Conditioner) Reset() {
	c.state = State{Pointer: center, Last: center}
}

// Params returns the active parameters.
func (c *Conditioner) Params() Params {
	return c.params
}

// SetParams replaces the parameters without touching the pointer state.
func (c *Conditioner) SetParams(p Params) {
	c.params = p
}

// State returns the latest pointer state.
func (c *Conditioner) State() State {
	return c.state
}

// Update advances the smoother by one frame. raw is the pointer in centred
// [-1,1]² coordinates; t is elapsed time in seconds. It returns the new
// pointer state and the autonomous brush position.
func (c *Conditioner) Update(raw shader.Vec2, t float64) (State, shader.Vec2) {
	target := shader.Vec2{X: (raw.X + 1) * 0.5, Y: (raw.Y + 1) * 0.5}

	s := &c.state
	s.Pointer = s.Pointer.Add(target.Sub(s.Pointer).Scale(c.params.LerpFactor))

	velocity := s.Pointer.Distance(s.Last)
	s.Strength = min(velocity, c.params.MaxVelocity) * c.params.VelocityScale
	s.Last = s.Pointer

	return *s, c.AutoPosition(t)
}

// AutoPosition returns the autonomous brush position at time t. It depends
// on t only.
func (c *Conditioner) AutoPosition(t float64) shader.Vec2 {
	return AutoPosition(t, c.params.AutoFreqX, c.params.AutoFreqY)
}

// AutoPosition is a slow Lissajous wander inside [0,1]².
func AutoPosition(t, freqX, freqY float64) shader.Vec2 {
	return shader.Vec2{
		X: float32((math.Sin(t*freqX) + 1) / 2),
		Y: float32((math.Cos(t*freqY) + 1) / 2),
	}
}
