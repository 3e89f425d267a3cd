package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/inkfield/config"
	"github.com/pthm-cable/inkfield/driver"
	"github.com/pthm-cable/inkfield/sonify"
	"github.com/pthm-cable/inkfield/telemetry"
)

// runOptions are the command line settings shared by both hosts.
type runOptions struct {
	OutputDir string
	Snapshot  string
	MaxFrames int
	LogStats  bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render with the software backend and write a PNG snapshot")
	snapshot := flag.String("snapshot", "inkfield.png", "Snapshot PNG path (headless mode)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited, headless uses config)")
	logStats := flag.Bool("log-stats", false, "Log field statistics and perf via slog")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := runOptions{
		OutputDir: *outputDir,
		Snapshot:  *snapshot,
		MaxFrames: *maxFrames,
		LogStats:  *logStats || cfg.Telemetry.LogPerf,
	}

	var err error
	if *headless {
		err = runHeadless(cfg, opts)
	} else {
		err = runWindow(cfg, opts)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// driverOptions builds driver options from config, wiring telemetry output.
func driverOptions(cfg *config.Config, opts runOptions, out *telemetry.OutputManager) (driver.Options, *telemetry.PerfCollector) {
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	bookmarks := telemetry.NewBookmarkDetector(10)
	return driver.Options{
		Params:        cfg.Derived.Simulation,
		Brush:         cfg.Derived.Brush,
		Display:       cfg.Derived.Display,
		Palette:       cfg.Derived.Palette,
		Perf:          perf,
		StatsInterval: cfg.Telemetry.StatsInterval,
		OnStats: func(s telemetry.FieldStats) {
			if opts.LogStats {
				slog.Info("field", "stats", s)
			}
			for _, b := range bookmarks.Check(s) {
				b.LogBookmark()
			}
			if err := out.WriteField(s); err != nil {
				slog.Warn("field stats not written", "error", err)
			}
		},
	}, perf
}

// framePolicy counts consecutive frame failures.
type framePolicy struct {
	maxFailures int
	failures    int
}

// record logs a frame error and reports whether the host should stop.
func (p *framePolicy) record(frame int64, err error) bool {
	if err == nil {
		p.failures = 0
		return false
	}
	p.failures++
	slog.Error("frame failed", "frame", frame, "consecutive", p.failures, "error", err)
	return p.maxFailures > 0 && p.failures >= p.maxFailures
}

// flushPerf writes and logs perf stats once per window.
func flushPerf(perf *telemetry.PerfCollector, out *telemetry.OutputManager, frame int64, window int, logStats bool) {
	if window <= 0 || frame == 0 || frame%int64(window) != 0 {
		return
	}
	stats := perf.Stats()
	if logStats {
		stats.LogStats()
	}
	if err := out.WritePerf(stats, frame); err != nil {
		slog.Warn("perf stats not written", "error", err)
	}
}

// startHum opens the brush hum if enabled. Audio failure is not fatal.
func startHum(cfg *config.Config) *sonify.Hum {
	if !cfg.Audio.Enabled {
		return nil
	}
	hum := sonify.NewHum(cfg.Audio.BaseHz, cfg.Audio.Volume)
	if err := hum.Start(); err != nil {
		slog.Warn("audio unavailable", "error", err)
		return nil
	}
	return hum
}

// brushLevel normalizes the pointer brush strength to [0,1].
func brushLevel(d *driver.Driver, cfg *config.Config) float32 {
	peak := cfg.Derived.Brush.MaxStrength()
	if peak <= 0 {
		return 0
	}
	return d.Brush().Strength / peak
}
