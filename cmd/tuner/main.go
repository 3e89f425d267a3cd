// Ink field tuner - live preview with sliders for every simulation and
// display constant.
//
// Usage: go run ./cmd/tuner [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer/rlbackend"
)

const (
	windowWidth  = 1100
	windowHeight = 760
	previewSize  = 576
	panelWidth   = windowWidth - previewSize - 30
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml to start from (empty = use defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initial := *cfg
	initial.Palette = append([]string(nil), cfg.Palette...)

	rl.InitWindow(windowWidth, windowHeight, "Ink Field Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	backend, err := rlbackend.New(cfg.Derived.FieldFormat)
	if err != nil {
		slog.Error("failed to create backend", "error", err)
		os.Exit(1)
	}
	d := driver.New(backend, driver.Options{
		Params:  cfg.Derived.Simulation,
		Brush:   cfg.Derived.Brush,
		Display: cfg.Derived.Display,
		Palette: cfg.Derived.Palette,
	})
	defer d.Close()

	preview := rl.LoadRenderTexture(previewSize, previewSize)
	defer rl.UnloadRenderTexture(preview)

	var t float64
	paused := false
	status := ""

	apply := func() {
		if err := cfg.Derive(); err != nil {
			status = err.Error()
			return
		}
		d.SetParams(cfg.Derived.Simulation)
		d.SetBrushParams(cfg.Derived.Brush)
		d.SetDisplayParams(cfg.Derived.Display)
		d.SetPalette(cfg.Derived.Palette[:])
	}

	for !rl.WindowShouldClose() {
		if !paused {
			t += float64(rl.GetFrameTime())

			// Pointer only counts inside the preview
			mouse := rl.GetMousePosition()
			pointer := driver.PointerFromScreen(mouse.X-10, mouse.Y-10, previewSize, previewSize)
			if pointer.X < -1 || pointer.X > 1 || pointer.Y < -1 || pointer.Y > 1 {
				pointer = d.Brush().Pointer
			}
			err := d.Frame(driver.FrameInput{
				Time:    t,
				Pointer: pointer,
				Width:   previewSize,
				Height:  previewSize,
				Surface: &preview,
			})
			if err != nil {
				status = err.Error()
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Render textures are stored bottom-up
		rl.DrawTexturePro(
			preview.Texture,
			rl.Rectangle{X: 0, Y: 0, Width: previewSize, Height: -previewSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		if stats, err := d.Stats(); err == nil {
			rl.DrawText(fmt.Sprintf("Mean: %.3f  Max: %.3f  P90: %.3f  Coverage: %.1f%%",
				stats.Mean, stats.Max, stats.P90, stats.Coverage*100), 15, statsY, 16, rl.DarkGray)
		}
		rl.DrawText(fmt.Sprintf("Time: %.1f  Brush: %.4f  FPS: %d", t, d.Brush().Strength, rl.GetFPS()), 15, statsY+20, 16, rl.DarkGray)
		if status != "" {
			rl.DrawText(status, 15, statsY+40, 14, rl.Maroon)
		}

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Ink Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 32

		changed := false
		for _, s := range sliders {
			rl.DrawText(s.Label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 17
			v := s.Value(cfg)
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 18},
				"", "",
				float32(*v), float32(s.Min), float32(s.Max),
			)
			rl.DrawText(fmt.Sprintf(s.Format, *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if float64(nv) != float64(float32(*v)) && setSlider(cfg, s, float64(nv)) {
				changed = true
			}
			panelY += 27
		}

		// Palette swatches
		panelY += 5
		for i, c := range cfg.Derived.Palette {
			r, g, b := c.RGBA8()
			rl.DrawRectangle(int32(panelX)+int32(i)*40, int32(panelY), 34, 20, rl.NewColor(r, g, b, 255))
		}
		panelY += 30

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Rotate Hues") {
			if next, err := rotateHues(cfg.Palette, 30); err != nil {
				status = err.Error()
			} else {
				cfg.Palette = next
				changed = true
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 260, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			*cfg = initial
			cfg.Palette = append([]string(nil), initial.Palette...)
			changed = true
		}
		panelY += 40

		if changed {
			apply()
		}

		// Output YAML
		frag, err := yamlFragment(cfg)
		if err != nil {
			status = err.Error()
		}
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 20
		for _, line := range strings.Split(strings.TrimRight(frag, "\n"), "\n") {
			if panelY > windowHeight-40 {
				break
			}
			rl.DrawText(line, int32(panelX), int32(panelY), 12, rl.Gray)
			panelY += 13
		}

		// Instructions
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-25), 12, rl.LightGray)

		// Copy to clipboard on C key
		if rl.IsKeyPressed(rl.KeyC) && frag != "" {
			rl.SetClipboardText(frag)
			status = "copied YAML to clipboard"
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
