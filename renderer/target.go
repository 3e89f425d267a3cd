package renderer

import (
	"math"

	"github.com/x448/float16"
)

// cpuTarget is a single-channel float field in host memory. Exactly one of
// f32 or f16 is set, depending on the backend format.
type cpuTarget struct {
	owner  *Software
	width  int
	height int

	f32 []float32
	f16 []uint16

	released bool
}

func (t *cpuTarget) Width() int  { return t.width }
func (t *cpuTarget) Height() int { return t.height }

// Release frees the storage and updates the owner's live count.
func (t *cpuTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	t.f32 = nil
	t.f16 = nil
	t.owner.live.Add(-1)
}

func (t *cpuTarget) at(x, y int) float32 {
	i := y*t.width + x
	if t.f16 != nil {
		return float16.Frombits(t.f16[i]).Float32()
	}
	return t.f32[i]
}

func (t *cpuTarget) set(x, y int, v float32) {
	i := y*t.width + x
	if t.f16 != nil {
		t.f16[i] = float16.Fromfloat32(v).Bits()
		return
	}
	t.f32[i] = v
}

// sample reads the field at normalized uv with bilinear filtering and
// clamp-to-edge addressing, as a GL texture with LINEAR and CLAMP_TO_EDGE.
func (t *cpuTarget) sample(u, v float32) float32 {
	fx := u*float32(t.width) - 0.5
	fy := v*float32(t.height) - 0.5

	x0f := float32(math.Floor(float64(fx)))
	y0f := float32(math.Floor(float64(fy)))
	tx := fx - x0f
	ty := fy - y0f

	x0 := clampIndex(int(x0f), t.width)
	x1 := clampIndex(int(x0f)+1, t.width)
	y0 := clampIndex(int(y0f), t.height)
	y1 := clampIndex(int(y0f)+1, t.height)

	v00 := t.at(x0, y0)
	v10 := t.at(x1, y0)
	v01 := t.at(x0, y1)
	v11 := t.at(x1, y1)

	top := v00 + (v10-v00)*tx
	bottom := v01 + (v11-v01)*tx
	return top + (bottom-top)*ty
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
