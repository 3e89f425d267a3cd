package main

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer/rlbackend"
	"github.com/pthm-cable/inkfield/telemetry"
	"github.com/pthm-cable/inkfield/ui"
)

// runWindow drives the field in a resizable raylib window until it is closed.
func runWindow(cfg *config.Config, opts runOptions) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	backend, err := rlbackend.New(cfg.Derived.FieldFormat)
	if err != nil {
		return fmt.Errorf("creating backend: %w", err)
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("config snapshot not written", "error", err)
	}

	dopts, perf := driverOptions(cfg, opts, out)
	var lastField telemetry.FieldStats
	writeStats := dopts.OnStats
	dopts.OnStats = func(s telemetry.FieldStats) {
		lastField = s
		writeStats(s)
	}
	d := driver.New(backend, dopts)
	defer d.Close()

	slog.Info("starting window",
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"format", cfg.Derived.FieldFormat,
	)

	hud := ui.NewHUD(10, 10, 260)
	showHUD := false

	hum := startHum(cfg)
	defer hum.Stop()

	policy := framePolicy{maxFailures: cfg.Host.MaxConsecutiveFailures}
	for !rl.WindowShouldClose() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		if w <= 0 || h <= 0 {
			// Minimized
			rl.BeginDrawing()
			rl.EndDrawing()
			continue
		}

		mouse := rl.GetMousePosition()
		in := driver.FrameInput{
			Time:    rl.GetTime(),
			Pointer: driver.PointerFromScreen(mouse.X, mouse.Y, w, h),
			Width:   w,
			Height:  h,
		}

		if rl.IsKeyPressed(rl.KeyH) {
			showHUD = !showHUD
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		err := d.Frame(in)
		if showHUD {
			hud.Draw(ui.HUDData{
				Title:   cfg.Screen.Title,
				Frame:   d.Frames(),
				FPS:     rl.GetFPS(),
				Width:   w,
				Height:  h,
				Format:  cfg.Derived.FieldFormat.String(),
				Brush:   brushLevel(d, cfg),
				Field:   lastField,
				Palette: d.Palette(),
				Perf:    perf.Stats(),
			})
			hud.DrawControls(int32(h), "H: toggle HUD  Esc: quit")
		}
		rl.EndDrawing()

		hum.SetLevel(brushLevel(d, cfg))

		if policy.record(d.Frames(), err) {
			return fmt.Errorf("giving up after %d consecutive failed frames: %w", policy.failures, err)
		}
		if err == nil {
			flushPerf(perf, out, d.Frames(), cfg.Telemetry.PerfWindow, opts.LogStats)
		}

		if opts.MaxFrames > 0 && d.Frames() >= int64(opts.MaxFrames) {
			slog.Info("max frames reached", "frame", d.Frames())
			break
		}
	}
	return nil
}
