package main

import (
	"errors"
	"image"
	"math"
	"sync"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/telemetry"
)

// failurePenalty is the fitness of a run that could not render.
const failurePenalty = 1e3

var errNaN = errors.New("field statistics are NaN")

// Target is the field look the optimizer steers towards.
type Target struct {
	Coverage float64 // fraction of texels holding visible ink
	P90      float64 // 90th percentile intensity
}

// FitnessEvaluator runs headless fields and scores their final statistics.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	width      int
	height     int
	offsets    []float64 // start times along the scripted pointer path
	baseConfig *config.Config
	target     Target

	mu        sync.Mutex
	lastStats telemetry.FieldStats // averaged over offsets
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames, width, height int, offsets []float64, baseCfg *config.Config, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		width:      width,
		height:     height,
		offsets:    offsets,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastStats returns the field statistics of the most recent evaluation,
// averaged over all start offsets.
func (fe *FitnessEvaluator) LastStats() telemetry.FieldStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return failurePenalty
	}

	// Run all offsets in parallel
	results := make([]telemetry.FieldStats, len(fe.offsets))
	errs := make([]error, len(fe.offsets))
	var wg sync.WaitGroup
	for i, off := range fe.offsets {
		wg.Add(1)
		go func(idx int, start float64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runField(cfg, start)
		}(i, off)
	}
	wg.Wait()

	var avg telemetry.FieldStats
	var loss float64
	for i, r := range results {
		if errs[i] != nil {
			return failurePenalty
		}
		loss += fe.score(r)
		avg.Mean += r.Mean / float64(len(results))
		avg.Coverage += r.Coverage / float64(len(results))
		avg.P90 += r.P90 / float64(len(results))
		avg.Max = max(avg.Max, r.Max)
	}
	avg.Width, avg.Height = fe.width, fe.height

	fe.mu.Lock()
	fe.lastStats = avg
	fe.mu.Unlock()

	return loss / float64(len(results))
}

// score is the squared distance from the target look.
func (fe *FitnessEvaluator) score(s telemetry.FieldStats) float64 {
	dc := s.Coverage - fe.target.Coverage
	dp := s.P90 - fe.target.P90
	return dc*dc + dp*dp
}

// runField renders one field from scratch and returns its final statistics.
func (fe *FitnessEvaluator) runField(cfg *config.Config, start float64) (telemetry.FieldStats, error) {
	backend := renderer.NewSoftware(renderer.SoftwareOptions{
		Format:  cfg.Derived.FieldFormat,
		Workers: 1, // offsets already run in parallel
	})
	d := driver.New(backend, driver.Options{
		Params:  cfg.Derived.Simulation,
		Brush:   cfg.Derived.Brush,
		Display: cfg.Derived.Display,
		Palette: cfg.Derived.Palette,
	})
	defer d.Close()

	// Display is not scored; a 1x1 surface keeps it cheap.
	surface := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for i := 0; i < fe.frames; i++ {
		t := start + float64(i)*cfg.Headless.FrameTime
		err := d.Frame(driver.FrameInput{
			Time:    t,
			Pointer: driver.ScriptedPointer(t),
			Width:   fe.width,
			Height:  fe.height,
			Surface: surface,
		})
		if err != nil {
			return telemetry.FieldStats{}, err
		}
	}
	stats, err := d.Stats()
	if err != nil {
		return telemetry.FieldStats{}, err
	}
	if math.IsNaN(stats.Mean) {
		return telemetry.FieldStats{}, errNaN
	}
	return stats, nil
}

func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Palette = append([]string(nil), fe.baseConfig.Palette...)
	return &cfg
}
