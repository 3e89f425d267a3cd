// Package config provides configuration loading and access for inkfield.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/inkfield/brush"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/shader"
	"github.com/pthm-cable/inkfield/uniforms"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Input      InputConfig      `yaml:"input"`
	Display    DisplayConfig    `yaml:"display"`
	Palette    []string         `yaml:"palette"` // exactly four hex colours
	GPU        GPUConfig        `yaml:"gpu"`
	Host       HostConfig       `yaml:"host"`
	Headless   HeadlessConfig   `yaml:"headless"`
	Terminal   TerminalConfig   `yaml:"terminal"`
	Audio      AudioConfig      `yaml:"audio"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// SimulationConfig holds the constants of the simulation pass.
type SimulationConfig struct {
	Decay        float64 `yaml:"decay"`         // Fraction of intensity kept per frame
	BrushRadius  float64 `yaml:"brush_radius"`  // Pointer brush radius in aspect-corrected uv
	AutoRadius   float64 `yaml:"auto_radius"`   // Autonomous brush radius
	AutoStrength float64 `yaml:"auto_strength"` // Autonomous brush deposit per frame
}

// InputConfig holds pointer smoothing parameters.
type InputConfig struct {
	LerpFactor    float64 `yaml:"lerp_factor"`    // Lower = longer trailing smoke
	MaxVelocity   float64 `yaml:"max_velocity"`   // Speed cap before scaling
	VelocityScale float64 `yaml:"velocity_scale"` // Strength per unit of capped speed
	AutoFreqX     float64 `yaml:"auto_freq_x"`
	AutoFreqY     float64 `yaml:"auto_freq_y"`
}

// DisplayConfig holds the display program tunables.
type DisplayConfig struct {
	Warp      float64 `yaml:"warp"`
	TimeScale float64 `yaml:"time_scale"`
	Zoom      float64 `yaml:"zoom"`
	Brighten  float64 `yaml:"brighten"`
}

// GPUConfig holds render target settings.
type GPUConfig struct {
	FieldFormat string `yaml:"field_format"` // float32 or float16
	Workers     int    `yaml:"workers"`      // Software backend goroutines (0 = GOMAXPROCS)
}

// HostConfig holds frame loop policy.
type HostConfig struct {
	MaxConsecutiveFailures int `yaml:"max_consecutive_failures"` // Abort after this many failed frames in a row
}

// HeadlessConfig holds snapshot mode settings.
type HeadlessConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Frames    int     `yaml:"frames"`
	FrameTime float64 `yaml:"frame_time"` // Seconds of simulated time per frame
}

// TerminalConfig holds terminal host settings.
type TerminalConfig struct {
	FPS int `yaml:"fps"`
}

// AudioConfig holds the brush hum settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	BaseHz  float64 `yaml:"base_hz"` // Pitch at zero strength; full strength is an octave up
	Volume  float64 `yaml:"volume"`
}

// TelemetryConfig holds statistics and perf output settings.
type TelemetryConfig struct {
	PerfWindow    int  `yaml:"perf_window"`    // Frames averaged per perf row
	StatsInterval int  `yaml:"stats_interval"` // Frames between field readbacks (0 = off)
	LogPerf       bool `yaml:"log_perf"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Palette     shader.Palette
	Simulation  uniforms.SimulationParams
	Brush       brush.Params
	Display     shader.DisplayParams
	FieldFormat renderer.Format
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Derive recomputes Derived after fields were edited in place.
func (c *Config) Derive() error {
	return c.computeDerived()
}

// computeDerived converts loaded values into the types the core consumes.
func (c *Config) computeDerived() error {
	palette, err := ParsePalette(c.Palette)
	if err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	format, err := renderer.ParseFormat(c.GPU.FieldFormat)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}

	c.Derived = DerivedConfig{
		Palette: palette,
		Simulation: uniforms.SimulationParams{
			Decay:        float32(c.Simulation.Decay),
			BrushRadius:  float32(c.Simulation.BrushRadius),
			AutoRadius:   float32(c.Simulation.AutoRadius),
			AutoStrength: float32(c.Simulation.AutoStrength),
		},
		Brush: brush.Params{
			LerpFactor:    float32(c.Input.LerpFactor),
			MaxVelocity:   float32(c.Input.MaxVelocity),
			VelocityScale: float32(c.Input.VelocityScale),
			AutoFreqX:     c.Input.AutoFreqX,
			AutoFreqY:     c.Input.AutoFreqY,
		},
		Display: shader.DisplayParams{
			Warp:      float32(c.Display.Warp),
			TimeScale: float32(c.Display.TimeScale),
			Zoom:      float32(c.Display.Zoom),
			Brighten:  float32(c.Display.Brighten),
		},
		FieldFormat: format,
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
