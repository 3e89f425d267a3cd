// Package driver runs one frame of the ink field: resize, input conditioning,
// simulation into the write buffer, swap, display.
package driver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/inkfield/brush"
	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/shader"
	"github.com/pthm-cable/inkfield/telemetry"
	"github.com/pthm-cable/inkfield/uniforms"
)

var (
	// ErrAliased is returned when the read and write buffers are the same object.
	ErrAliased = errors.New("driver: read and write buffers alias")

	// ErrClosed is returned by Frame after Close.
	ErrClosed = errors.New("driver: closed")
)

// FrameInput is what the host supplies every frame.
type FrameInput struct {
	Time    float64     // seconds since start
	Pointer shader.Vec2 // raw pointer in centred [-1,1]², +y up
	Width   int         // viewport in device pixels
	Height  int
	Surface renderer.Surface
}

// Options configure a Driver.
type Options struct {
	Params  uniforms.SimulationParams
	Brush   brush.Params
	Display shader.DisplayParams
	Palette shader.Palette

	// Perf, when set, receives per-phase timings of every frame.
	Perf *telemetry.PerfCollector

	// StatsInterval > 0 reads the field back every StatsInterval frames and
	// passes its statistics to OnStats.
	StatsInterval int
	OnStats       func(telemetry.FieldStats)

	Logger *slog.Logger
}

// Driver owns the buffer pair, the uniform store and the input conditioner.
type Driver struct {
	backend renderer.Backend
	pair    *field.Pair
	store   *uniforms.Store
	cond    *brush.Conditioner
	perf    *telemetry.PerfCollector
	log     *slog.Logger

	statsInterval int
	onStats       func(telemetry.FieldStats)
	readback      []float32
	sorted        []float32

	frames int64
	closed bool
}

// New returns a driver drawing through backend. No buffers exist until the
// first Frame.
func New(backend renderer.Backend, opts Options) *Driver {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	store := uniforms.NewStore(opts.Params, opts.Palette)
	store.SetDisplayParams(opts.Display)
	return &Driver{
		backend:       backend,
		pair:          field.NewPair(backend),
		store:         store,
		cond:          brush.NewConditioner(opts.Brush),
		perf:          opts.Perf,
		log:           log,
		statsInterval: opts.StatsInterval,
		onStats:       opts.OnStats,
	}
}

func (d *Driver) phase(name string) {
	if d.perf != nil {
		d.perf.Phase(name)
	}
}

// Frame renders one frame. On error the frame is abandoned; the next call
// starts over, including a retry of a failed allocation.
func (d *Driver) Frame(in FrameInput) error {
	if d.closed {
		return ErrClosed
	}
	if d.perf != nil {
		d.perf.BeginFrame()
		defer d.perf.EndFrame()
	}

	d.phase(telemetry.PhaseResize)
	resized, err := d.pair.EnsureSize(in.Width, in.Height)
	if err != nil {
		return fmt.Errorf("frame: resize: %w", err)
	}
	if resized {
		d.store.SetResolution(in.Width, in.Height)
		d.log.Debug("field resized", "width", in.Width, "height", in.Height)
	}

	d.phase(telemetry.PhaseInput)
	state, auto := d.cond.Update(in.Pointer, in.Time)
	d.store.SetPointerBrush(state.Pointer, state.Strength)
	d.store.SetAutoBrush(auto)
	d.store.SetTime(float32(in.Time))

	d.phase(telemetry.PhaseSimulate)
	read, write := d.pair.Current(), d.pair.Previous()
	if read == write {
		return fmt.Errorf("frame: simulate: %w", ErrAliased)
	}
	d.store.BindSimulationField(read)
	if err := d.backend.Simulate(write, d.store.Simulation()); err != nil {
		return fmt.Errorf("frame: simulate: %w", err)
	}
	d.pair.Swap()

	d.phase(telemetry.PhaseDisplay)
	d.store.BindDisplayField(d.pair.Current())
	if err := d.backend.Display(in.Surface, d.store.Display()); err != nil {
		return fmt.Errorf("frame: display: %w", err)
	}
	d.frames++

	if d.statsInterval > 0 && d.frames%int64(d.statsInterval) == 0 {
		d.phase(telemetry.PhaseReadback)
		stats, err := d.Stats()
		switch {
		case err != nil:
			d.log.Warn("field readback failed", "frame", d.frames, "error", err)
		case d.onStats != nil:
			stats.Time = in.Time
			d.onStats(stats)
		}
	}
	return nil
}

// Stats reads the current field back and summarizes it.
func (d *Driver) Stats() (telemetry.FieldStats, error) {
	if !d.pair.Allocated() {
		return telemetry.FieldStats{}, nil
	}
	vals, err := d.backend.ReadField(d.pair.Current(), d.readback)
	if err != nil {
		return telemetry.FieldStats{}, err
	}
	d.readback = vals

	var stats telemetry.FieldStats
	stats, d.sorted = telemetry.ComputeFieldStats(vals, d.sorted)
	stats.Frame = d.frames
	stats.Width, stats.Height = d.pair.Size()
	return stats, nil
}

// SetPalette replaces the palette. Anything but four colours is ignored,
// keeping the previous palette, and reported as false.
func (d *Driver) SetPalette(colors []shader.Color) bool {
	if !d.store.SetPalette(colors) {
		d.log.Warn("palette update ignored", "colors", len(colors))
		return false
	}
	return true
}

// Palette returns the palette in use.
func (d *Driver) Palette() shader.Palette {
	return d.store.Palette()
}

// SetParams replaces the simulation constants from the next frame on.
func (d *Driver) SetParams(p uniforms.SimulationParams) {
	d.store.SetParams(p)
}

// Params returns the simulation constants in use.
func (d *Driver) Params() uniforms.SimulationParams {
	return d.store.Params()
}

// SetBrushParams replaces the pointer smoothing constants.
func (d *Driver) SetBrushParams(p brush.Params) {
	d.cond.SetParams(p)
}

// SetDisplayParams replaces the display tunables.
func (d *Driver) SetDisplayParams(p shader.DisplayParams) {
	d.store.SetDisplayParams(p)
}

// DisplayParams returns the display tunables in use.
func (d *Driver) DisplayParams() shader.DisplayParams {
	return d.store.Display().Params
}

// Brush returns the pointer brush after the latest frame.
func (d *Driver) Brush() brush.State {
	return d.cond.State()
}

// Field returns the buffer written by the latest simulation pass, or nil
// before the first successful allocation.
func (d *Driver) Field() field.Target {
	if !d.pair.Allocated() {
		return nil
	}
	return d.pair.Current()
}

// Frames returns the number of completed frames.
func (d *Driver) Frames() int64 {
	return d.frames
}

// Close releases both buffers and the backend. Safe to call repeatedly.
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.pair.Release()
	if err := d.backend.Close(); err != nil {
		return fmt.Errorf("closing backend: %w", err)
	}
	return nil
}
