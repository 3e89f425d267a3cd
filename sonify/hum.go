// Package sonify turns pointer brush strength into a quiet drone.
package sonify

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// glideSeconds is how long the amplitude takes to cover most of a level change.
const glideSeconds = 0.08

// HumGenerator is a sine drone whose loudness and pitch follow a level in
// [0,1] set from another goroutine.
type HumGenerator struct {
	sr     beep.SampleRate
	base   float64
	volume float64

	level atomic.Uint32 // float32 bits
	amp   float64
	phase float64
}

// NewHumGenerator returns a generator at base Hz peaking at volume.
func NewHumGenerator(sr beep.SampleRate, base, volume float64) *HumGenerator {
	return &HumGenerator{sr: sr, base: base, volume: volume}
}

// SetLevel sets the target level, clamped to [0,1].
func (g *HumGenerator) SetLevel(level float32) {
	level = min(max(level, 0), 1)
	g.level.Store(math.Float32bits(level))
}

// Level returns the target level.
func (g *HumGenerator) Level() float32 {
	return math.Float32frombits(g.level.Load())
}

func (g *HumGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	target := float64(g.Level())
	k := 1 - math.Exp(-1/(glideSeconds*float64(g.sr)))
	for i := range samples {
		g.amp += (target - g.amp) * k

		// Pitch rises an octave at full strength
		freq := g.base * (1 + g.amp)
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}

		sample := g.volume * g.amp * (math.Sin(g.phase) + 0.3*math.Sin(2*g.phase)) / 1.3
		samples[i][0] = sample
		samples[i][1] = sample
	}
	return len(samples), true
}

func (g *HumGenerator) Err() error {
	return nil
}

// Hum plays a HumGenerator on the default speaker.
type Hum struct {
	mu     sync.Mutex
	gen    *HumGenerator
	ctrl   *beep.Ctrl
	active bool
}

// NewHum creates an idle hum. Start opens the audio device.
func NewHum(base, volume float64) *Hum {
	return &Hum{gen: NewHumGenerator(sampleRate, base, volume)}
}

// Start initializes the speaker and begins playback.
func (h *Hum) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	h.ctrl = &beep.Ctrl{Streamer: h.gen}
	speaker.Play(h.ctrl)
	h.active = true
	return nil
}

// SetLevel forwards the brush strength, already normalized to [0,1].
func (h *Hum) SetLevel(level float32) {
	if h == nil {
		return
	}
	h.gen.SetLevel(level)
}

// Stop silences playback. The speaker stays open.
func (h *Hum) Stop() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.active {
		return
	}
	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	speaker.Clear()
	h.active = false
}
