// Package main provides CMA-ES optimization for ink field parameters.
package main

import (
	"github.com/pthm-cable/inkfield/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Simulation
			{Name: "decay", Path: "simulation.decay", Min: 0.85, Max: 0.995, Default: 0.98,
				field: func(c *config.Config) *float64 { return &c.Simulation.Decay }},
			{Name: "brush_radius", Path: "simulation.brush_radius", Min: 0.03, Max: 0.4, Default: 0.15,
				field: func(c *config.Config) *float64 { return &c.Simulation.BrushRadius }},
			{Name: "auto_radius", Path: "simulation.auto_radius", Min: 0.03, Max: 0.4, Default: 0.2,
				field: func(c *config.Config) *float64 { return &c.Simulation.AutoRadius }},
			{Name: "auto_strength", Path: "simulation.auto_strength", Min: 0.001, Max: 0.1, Default: 0.02,
				field: func(c *config.Config) *float64 { return &c.Simulation.AutoStrength }},
			// Input
			{Name: "lerp_factor", Path: "input.lerp_factor", Min: 0.002, Max: 0.2, Default: 0.01,
				field: func(c *config.Config) *float64 { return &c.Input.LerpFactor }},
			{Name: "velocity_scale", Path: "input.velocity_scale", Min: 1, Max: 40, Default: 10,
				field: func(c *config.Config) *float64 { return &c.Input.VelocityScale }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and recomputes
// its derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
	return cfg.Derive()
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
