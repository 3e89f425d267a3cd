// Command fluidterm renders the ink field in a terminal using half-block
// cells, two pixels per cell, with the mouse as the brush.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/sonify"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logPath := flag.String("log", "", "Write JSON logs to this file (terminal output is the screen)")
	hum := flag.Bool("hum", false, "Play a drone following the brush strength")
	flag.Parse()

	if err := setupLogging(*logPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.Init(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *hum {
		cfg.Audio.Enabled = true
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = newTerm(screen, cfg).run()
	screen.Fini()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(path string) error {
	if path == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	return nil
}

// term owns the screen, the driver and the pixel buffer behind the cells.
type term struct {
	screen tcell.Screen
	cfg    *config.Config
	driver *driver.Driver
	hum    *sonify.Hum
	img    *image.RGBA

	// Mouse in pixel space, y down; two pixel rows per cell.
	mouseX, mouseY float32
	start          time.Time
}

func newTerm(screen tcell.Screen, cfg *config.Config) *term {
	backend := renderer.NewSoftware(renderer.SoftwareOptions{
		Format:  cfg.Derived.FieldFormat,
		Workers: cfg.GPU.Workers,
	})
	d := driver.New(backend, driver.Options{
		Params:  cfg.Derived.Simulation,
		Brush:   cfg.Derived.Brush,
		Display: cfg.Derived.Display,
		Palette: cfg.Derived.Palette,
	})

	t := &term{screen: screen, cfg: cfg, driver: d, start: time.Now()}
	t.resize()
	t.mouseX, t.mouseY = float32(t.img.Rect.Dx())/2, float32(t.img.Rect.Dy())/2
	return t
}

// resize reallocates the pixel buffer to match the terminal.
func (t *term) resize() {
	w, h := t.screen.Size()
	t.img = image.NewRGBA(image.Rect(0, 0, w, 2*h))
}

// frame advances the field and paints it.
func (t *term) frame() error {
	b := t.img.Bounds()
	if b.Empty() {
		return nil
	}
	err := t.driver.Frame(driver.FrameInput{
		Time:    time.Since(t.start).Seconds(),
		Pointer: driver.PointerFromScreen(t.mouseX, t.mouseY, b.Dx(), b.Dy()),
		Width:   b.Dx(),
		Height:  b.Dy(),
		Surface: t.img,
	})
	if err != nil {
		return err
	}
	if peak := t.cfg.Derived.Brush.MaxStrength(); peak > 0 {
		t.hum.SetLevel(t.driver.Brush().Strength / peak)
	}
	paint(t.screen, t.img)
	t.screen.Show()
	return nil
}

// handle reacts to one event and reports whether to keep running.
func (t *term) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		t.mouseX = float32(x) + 0.5
		t.mouseY = float32(2*y) + 1
	case *tcell.EventResize:
		t.resize()
		t.screen.Sync()
	}
	return true
}

func (t *term) run() error {
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.screen.HideCursor()
	defer t.driver.Close()

	if t.cfg.Audio.Enabled {
		t.hum = sonify.NewHum(t.cfg.Audio.BaseHz, t.cfg.Audio.Volume)
		if err := t.hum.Start(); err != nil {
			slog.Warn("audio unavailable", "error", err)
			t.hum = nil
		}
		defer t.hum.Stop()
	}

	fps := max(t.cfg.Terminal.FPS, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	failures := 0
	for {
		select {
		case ev := <-events:
			if !t.handle(ev) {
				return nil
			}
		case <-ticker.C:
			if err := t.frame(); err != nil {
				failures++
				slog.Error("frame failed", "consecutive", failures, "error", err)
				if limit := t.cfg.Host.MaxConsecutiveFailures; limit > 0 && failures >= limit {
					return fmt.Errorf("giving up after %d consecutive failed frames: %w", failures, err)
				}
				continue
			}
			failures = 0
		}
	}
}

// paint draws img onto the screen, the upper pixel of each cell as the
// foreground of '▀' and the lower one as its background.
func paint(screen tcell.Screen, img *image.RGBA) {
	b := img.Bounds()
	for cy := 0; cy < b.Dy()/2; cy++ {
		for cx := 0; cx < b.Dx(); cx++ {
			top := img.RGBAAt(b.Min.X+cx, b.Min.Y+2*cy)
			bottom := img.RGBAAt(b.Min.X+cx, b.Min.Y+2*cy+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
}
