package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame.
const (
	PhaseResize   = "resize"
	PhaseInput    = "input"
	PhaseSimulate = "simulate"
	PhaseDisplay  = "display"
	PhaseReadback = "readback"
)

const numPhases = 5

// Phases lists every frame phase in execution order.
var Phases = [numPhases]string{PhaseResize, PhaseInput, PhaseSimulate, PhaseDisplay, PhaseReadback}

func phaseIndex(name string) int {
	for i, p := range Phases {
		if p == name {
			return i
		}
	}
	return -1
}

// frameSample is the timing of one Driver.Frame call.
type frameSample struct {
	work   time.Duration // BeginFrame to EndFrame
	period time.Duration // since the previous BeginFrame, 0 for the first frame
	phases [numPhases]time.Duration
	seen   [numPhases]bool
}

// PerfCollector times frames and their phases over a rolling window.
type PerfCollector struct {
	samples []frameSample
	next    int
	count   int

	cur        frameSample
	frameStart time.Time
	phaseStart time.Time
	phase      int
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]frameSample, windowSize),
		phase:   -1,
	}
}

// BeginFrame starts timing a frame. The gap since the previous BeginFrame is
// the frame period.
func (p *PerfCollector) BeginFrame() {
	now := time.Now()
	p.cur = frameSample{}
	if !p.frameStart.IsZero() {
		p.cur.period = now.Sub(p.frameStart)
	}
	p.frameStart = now
	p.phase = -1
}

// Phase ends the running phase and starts the named one. Unknown names stop
// phase timing until the next call.
func (p *PerfCollector) Phase(name string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phaseIndex(name)
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase < 0 {
		return
	}
	p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	p.cur.seen[p.phase] = true
	p.phase = -1
}

// EndFrame closes the frame and adds it to the window.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	p.closePhase(now)
	p.cur.work = now.Sub(p.frameStart)

	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// PerfStats aggregates the frames in the window.
type PerfStats struct {
	Frames int

	// Time spent inside Frame
	AvgWork time.Duration
	MinWork time.Duration
	MaxWork time.Duration

	// Average duration and share of work per phase, only for phases that ran
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	// Wall clock between frame starts
	Period time.Duration
	FPS    float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		Frames:   p.count,
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.count == 0 {
		return stats
	}

	var work, period time.Duration
	var periods int
	var phaseSum [numPhases]time.Duration
	var seen [numPhases]bool
	for i, s := range p.samples[:p.count] {
		work += s.work
		if i == 0 || s.work < stats.MinWork {
			stats.MinWork = s.work
		}
		stats.MaxWork = max(stats.MaxWork, s.work)
		if s.period > 0 {
			period += s.period
			periods++
		}
		for j := range numPhases {
			phaseSum[j] += s.phases[j]
			seen[j] = seen[j] || s.seen[j]
		}
	}

	stats.AvgWork = work / time.Duration(p.count)
	for j, name := range Phases {
		if !seen[j] {
			continue
		}
		avg := phaseSum[j] / time.Duration(p.count)
		stats.PhaseAvg[name] = avg
		if stats.AvgWork > 0 {
			stats.PhasePct[name] = float64(avg) / float64(stats.AvgWork) * 100
		}
	}

	if periods > 0 {
		stats.Period = period / time.Duration(periods)
		stats.FPS = float64(time.Second) / float64(stats.Period)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_work_us", s.AvgWork.Microseconds()),
		slog.Int64("max_work_us", s.MaxWork.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", float64(int(s.FPS*10))/10))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat row of perf.csv.
type PerfStatsCSV struct {
	Frame       int64   `csv:"frame"`
	AvgWorkUS   int64   `csv:"avg_work_us"`
	MinWorkUS   int64   `csv:"min_work_us"`
	MaxWorkUS   int64   `csv:"max_work_us"`
	PeriodUS    int64   `csv:"period_us"`
	FPS         float64 `csv:"fps"`
	ResizePct   float64 `csv:"resize_pct"`
	InputPct    float64 `csv:"input_pct"`
	SimulatePct float64 `csv:"simulate_pct"`
	DisplayPct  float64 `csv:"display_pct"`
	ReadbackPct float64 `csv:"readback_pct"`
}

// ToCSV flattens the stats for the window ending at frame.
func (s PerfStats) ToCSV(frame int64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:       frame,
		AvgWorkUS:   s.AvgWork.Microseconds(),
		MinWorkUS:   s.MinWork.Microseconds(),
		MaxWorkUS:   s.MaxWork.Microseconds(),
		PeriodUS:    s.Period.Microseconds(),
		FPS:         s.FPS,
		ResizePct:   s.PhasePct[PhaseResize],
		InputPct:    s.PhasePct[PhaseInput],
		SimulatePct: s.PhasePct[PhaseSimulate],
		DisplayPct:  s.PhasePct[PhaseDisplay],
		ReadbackPct: s.PhasePct[PhaseReadback],
	}
}
