package main

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/telemetry"
)

// runHeadless renders a fixed number of frames on the CPU, following a
// scripted pointer, and writes the last frame as a PNG.
func runHeadless(cfg *config.Config, opts runOptions) error {
	frames := cfg.Headless.Frames
	if opts.MaxFrames > 0 {
		frames = opts.MaxFrames
	}
	w, h := cfg.Headless.Width, cfg.Headless.Height

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("config snapshot not written", "error", err)
	}

	backend := renderer.NewSoftware(renderer.SoftwareOptions{
		Format:  cfg.Derived.FieldFormat,
		Workers: cfg.GPU.Workers,
	})
	dopts, perf := driverOptions(cfg, opts, out)
	d := driver.New(backend, dopts)
	defer d.Close()

	slog.Info("starting headless run",
		"width", w,
		"height", h,
		"frames", frames,
		"format", cfg.Derived.FieldFormat,
	)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	policy := framePolicy{maxFailures: cfg.Host.MaxConsecutiveFailures}
	for i := 0; i < frames; i++ {
		t := float64(i) * cfg.Headless.FrameTime
		err := d.Frame(driver.FrameInput{
			Time:    t,
			Pointer: driver.ScriptedPointer(t),
			Width:   w,
			Height:  h,
			Surface: img,
		})
		if policy.record(int64(i), err) {
			return fmt.Errorf("giving up after %d consecutive failed frames: %w", policy.failures, err)
		}
		if err == nil {
			flushPerf(perf, out, d.Frames(), cfg.Telemetry.PerfWindow, opts.LogStats)
		}
	}

	if err := writePNG(opts.Snapshot, img); err != nil {
		return err
	}
	slog.Info("snapshot written", "path", opts.Snapshot, "frames", d.Frames())
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}
