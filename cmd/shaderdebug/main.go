// Shader debug tool - runs the ink field on the GPU for a number of frames,
// writes the displayed image to a PNG, and optionally compares it with the
// software backend.
//
// Usage: go run ./cmd/shaderdebug -frames 120 -out debug.png -compare
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/renderer/rlbackend"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	frames := flag.Int("frames", 120, "Frames to simulate before capturing")
	compare := flag.Bool("compare", false, "Also render on the CPU and report the largest channel difference")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	backend, err := rlbackend.New(cfg.Derived.FieldFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load shaders: %v\n", err)
		os.Exit(1)
	}

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	if err := run(backend, cfg, *frames, *width, *height, &target); err != nil {
		fmt.Fprintf(os.Stderr, "GPU run failed: %v\n", err)
		os.Exit(1)
	}

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	defer rl.UnloadImage(img)

	// Export to PNG
	if !rl.ExportImage(*img, *outPath) {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
	fmt.Printf("Field rendered to: %s (%dx%d, %d frames)\n", *outPath, *width, *height, *frames)

	if !*compare {
		return
	}

	cpu := image.NewRGBA(image.Rect(0, 0, *width, *height))
	sw := renderer.NewSoftware(renderer.SoftwareOptions{Format: renderer.FormatFloat32, Workers: cfg.GPU.Workers})
	if err := run(sw, cfg, *frames, *width, *height, cpu); err != nil {
		fmt.Fprintf(os.Stderr, "CPU run failed: %v\n", err)
		os.Exit(1)
	}
	cpuPath := *outPath + ".cpu.png"
	if err := writePNG(cpuPath, cpu); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	gpu := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(gpu)
	diff, at := maxDiff(gpu, cpu)
	fmt.Printf("CPU reference: %s\n", cpuPath)
	fmt.Printf("Max channel difference: %d at (%d,%d)\n", diff, at.X, at.Y)
}

// run drives a fresh field for n frames along the scripted pointer path,
// displaying every frame into surface.
func run(backend renderer.Backend, cfg *config.Config, n, w, h int, surface renderer.Surface) error {
	d := driver.New(backend, driver.Options{
		Params:  cfg.Derived.Simulation,
		Brush:   cfg.Derived.Brush,
		Display: cfg.Derived.Display,
		Palette: cfg.Derived.Palette,
	})
	defer d.Close()

	for i := 0; i < n; i++ {
		t := float64(i) * cfg.Headless.FrameTime
		err := d.Frame(driver.FrameInput{
			Time:    t,
			Pointer: driver.ScriptedPointer(t),
			Width:   w,
			Height:  h,
			Surface: surface,
		})
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

// maxDiff returns the largest per-channel difference between a row-major
// pixel slice and img, and where it occurs.
func maxDiff(pixels []color.RGBA, img *image.RGBA) (uint8, image.Point) {
	b := img.Bounds()
	var worst uint8
	var at image.Point
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := y*b.Dx() + x
			if i >= len(pixels) {
				return worst, at
			}
			p, q := pixels[i], img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			for _, d := range []uint8{absDiff(p.R, q.R), absDiff(p.G, q.G), absDiff(p.B, q.B)} {
				if d > worst {
					worst, at = d, image.Pt(x, y)
				}
			}
		}
	}
	return worst, at
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
