package main

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/inkfield/config"
)

// slider binds one config value to a raygui slider.
type slider struct {
	Label  string
	Min    float64
	Max    float64
	Format string
	Value  func(*config.Config) *float64
}

var sliders = []slider{
	{"Decay (ink kept per frame)", 0.8, 0.999, "%.3f", func(c *config.Config) *float64 { return &c.Simulation.Decay }},
	{"Brush radius", 0.02, 0.5, "%.3f", func(c *config.Config) *float64 { return &c.Simulation.BrushRadius }},
	{"Auto radius", 0.02, 0.5, "%.3f", func(c *config.Config) *float64 { return &c.Simulation.AutoRadius }},
	{"Auto strength", 0, 0.1, "%.4f", func(c *config.Config) *float64 { return &c.Simulation.AutoStrength }},
	{"Lerp factor (lower = longer trails)", 0.001, 0.2, "%.3f", func(c *config.Config) *float64 { return &c.Input.LerpFactor }},
	{"Max velocity", 0.001, 0.05, "%.4f", func(c *config.Config) *float64 { return &c.Input.MaxVelocity }},
	{"Velocity scale", 1, 50, "%.1f", func(c *config.Config) *float64 { return &c.Input.VelocityScale }},
	{"Warp", 0, 0.5, "%.3f", func(c *config.Config) *float64 { return &c.Display.Warp }},
	{"Time scale", 0, 1, "%.2f", func(c *config.Config) *float64 { return &c.Display.TimeScale }},
	{"Zoom", 1, 200, "%.0f", func(c *config.Config) *float64 { return &c.Display.Zoom }},
	{"Brighten", 0, 0.2, "%.3f", func(c *config.Config) *float64 { return &c.Display.Brighten }},
}

// fragment is the subset of config the tuner edits.
type fragment struct {
	Simulation config.SimulationConfig `yaml:"simulation"`
	Input      config.InputConfig      `yaml:"input"`
	Display    config.DisplayConfig    `yaml:"display"`
	Palette    []string                `yaml:"palette"`
}

// yamlFragment renders the tuned sections as YAML that can be pasted into
// a config file.
func yamlFragment(c *config.Config) (string, error) {
	data, err := yaml.Marshal(fragment{
		Simulation: c.Simulation,
		Input:      c.Input,
		Display:    c.Display,
		Palette:    c.Palette,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling fragment: %w", err)
	}
	return string(data), nil
}

// setSlider stores v, clamped to the slider's range, and reports whether
// the value changed.
func setSlider(c *config.Config, s slider, v float64) bool {
	v = min(max(v, s.Min), s.Max)
	p := s.Value(c)
	if *p == v {
		return false
	}
	*p = v
	return true
}

// rotateHues shifts the hue of every palette entry by deg, keeping
// chroma and lightness.
func rotateHues(hex []string, deg float64) ([]string, error) {
	out := make([]string, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette[%d]: %w", i, err)
		}
		hue, chroma, l := c.Hcl()
		hue = math.Mod(hue+deg+360, 360)
		out[i] = colorful.Hcl(hue, chroma, l).Clamped().Hex()
	}
	return out, nil
}
