package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/shader"
	"github.com/pthm-cable/inkfield/telemetry"
)

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Title   string
	Frame   int64
	FPS     int32
	Width   int
	Height  int
	Format  string
	Brush   float32 // pointer brush strength, normalized to [0,1]
	Field   telemetry.FieldStats
	Palette shader.Palette
	Perf    telemetry.PerfStats
}

// HUD renders the heads-up display panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD whose panel starts at (x, y).
func NewHUD(x, y, width int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding
	lines := phaseLines(data.Perf)
	height := pad*2 + r.Theme.LineHeight*int32(9+len(lines)) + 16
	r.DrawPanel(h.x, h.y, h.width, height)

	x, y := h.x+pad, h.y+pad
	inner := h.width - pad*2

	y = r.DrawSectionHeader(x, y, data.Title)
	y = r.DrawLabelValue(x, y, "Frame", fmt.Sprintf("%d  (%d fps)", data.Frame, data.FPS))
	y = r.DrawLabelValue(x, y, "Field", fmt.Sprintf("%dx%d %s", data.Width, data.Height, data.Format))
	y = r.DrawBar(x, y, "Brush", data.Brush, 0.8, inner)
	y = r.DrawBar(x, y, "Coverage", float32(data.Field.Coverage), 0.8, inner)
	y = r.DrawLabelValue(x, y, "Mean/Max", fmt.Sprintf("%.3f / %.3f", data.Field.Mean, data.Field.Max))

	swatches := make([]rl.Color, len(data.Palette))
	for i, c := range data.Palette {
		red, green, blue := c.RGBA8()
		swatches[i] = rl.NewColor(red, green, blue, 255)
	}
	y = r.DrawSwatches(x, y, "Palette", swatches)

	y = r.DrawSectionHeader(x, y, "Frame phases")
	for _, line := range lines {
		rl.DrawText(line, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// phaseLines formats the timed phases in execution order, skipping phases
// that never ran.
func phaseLines(perf telemetry.PerfStats) []string {
	var lines []string
	for _, phase := range telemetry.Phases {
		avg, ok := perf.PhaseAvg[phase]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-9s %7dus %5.1f%%", phase, avg.Microseconds(), perf.PhasePct[phase]))
	}
	return lines
}
