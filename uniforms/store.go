// Package uniforms holds the values consumed by the simulation and display
// programs. The store does no rendering; backends read a snapshot once per pass.
package uniforms

import (
	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/shader"
)

// SimulationParams are the configured, per-run constants of the simulation pass.
// The pointer brush strength is not here: it is derived from pointer velocity
// every frame.
type SimulationParams struct {
	Decay        float32 // fraction of intensity kept per frame, in (0,1)
	BrushRadius  float32
	AutoRadius   float32
	AutoStrength float32
}

// Simulation is the snapshot handed to a backend for one simulation pass.
type Simulation struct {
	shader.SimulationUniforms
	Field field.Target // previous field, bound as texture0
}

// Display is the snapshot handed to a backend for one display pass.
type Display struct {
	shader.DisplayUniforms
	Field field.Target // current field, bound as texture0
}

// Store owns the mutable uniform state shared by both passes.
type Store struct {
	sim  shader.SimulationUniforms
	disp shader.DisplayUniforms

	simField  field.Target
	dispField field.Target
}

// NewStore returns a store with the given parameters, the palette and the
// stock display look. Brushes start centred with zero strength.
func NewStore(params SimulationParams, palette shader.Palette) *Store {
	s := &Store{}
	s.SetParams(params)
	s.sim.Pointer.Pos = shader.Vec2{X: 0.5, Y: 0.5}
	s.sim.Auto.Pos = shader.Vec2{X: 0.5, Y: 0.5}
	s.disp.Palette = palette
	s.disp.Params = shader.DefaultDisplayParams()
	return s
}

// SetResolution sets uResolution for both programs.
func (s *Store) SetResolution(width, height int) {
	res := shader.Vec2{X: float32(width), Y: float32(height)}
	s.sim.Resolution = res
	s.disp.Resolution = res
}

// SetParams replaces the simulation constants.
func (s *Store) SetParams(p SimulationParams) {
	s.sim.Decay = p.Decay
	s.sim.Pointer.Radius = p.BrushRadius
	s.sim.Auto.Radius = p.AutoRadius
	s.sim.Auto.Strength = p.AutoStrength
}

// Params returns the simulation constants currently stored.
func (s *Store) Params() SimulationParams {
	return SimulationParams{
		Decay:        s.sim.Decay,
		BrushRadius:  s.sim.Pointer.Radius,
		AutoRadius:   s.sim.Auto.Radius,
		AutoStrength: s.sim.Auto.Strength,
	}
}

// SetPointerBrush sets the smoothed pointer position and its velocity-derived strength.
func (s *Store) SetPointerBrush(pos shader.Vec2, strength float32) {
	s.sim.Pointer.Pos = pos
	s.sim.Pointer.Strength = strength
}

// SetAutoBrush sets the autonomous brush position.
func (s *Store) SetAutoBrush(pos shader.Vec2) {
	s.sim.Auto.Pos = pos
}

// SetTime sets uTime in seconds.
func (s *Store) SetTime(seconds float32) {
	s.disp.Time = seconds
}

// SetDisplayParams replaces the display tunables.
func (s *Store) SetDisplayParams(p shader.DisplayParams) {
	s.disp.Params = p
}

// SetPalette stores exactly four colours. Any other length leaves the stored
// palette untouched and returns false.
func (s *Store) SetPalette(colors []shader.Color) bool {
	if len(colors) != len(s.disp.Palette) {
		return false
	}
	copy(s.disp.Palette[:], colors)
	return true
}

// Palette returns the stored palette.
func (s *Store) Palette() shader.Palette {
	return s.disp.Palette
}

// BindSimulationField sets the texture the simulation pass reads.
func (s *Store) BindSimulationField(t field.Target) {
	s.simField = t
}

// BindDisplayField sets the texture the display pass reads.
func (s *Store) BindDisplayField(t field.Target) {
	s.dispField = t
}

// Simulation returns the simulation pass snapshot.
func (s *Store) Simulation() Simulation {
	return Simulation{SimulationUniforms: s.sim, Field: s.simField}
}

// Display returns the display pass snapshot.
func (s *Store) Display() Display {
	return Display{DisplayUniforms: s.disp, Field: s.dispField}
}
