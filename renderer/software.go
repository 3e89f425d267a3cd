package renderer

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/shader"
	"github.com/pthm-cable/inkfield/uniforms"
)

// rowsPerWorkerMin keeps tiny targets on one goroutine.
const rowsPerWorkerMin = 8

// SoftwareOptions configure a Software backend.
type SoftwareOptions struct {
	Format  Format
	Workers int // 0 = GOMAXPROCS

	// MaxTexels rejects allocations above this many texels. 0 = no limit.
	MaxTexels int
}

// Software evaluates both programs on the CPU. Display draws into *image.RGBA.
type Software struct {
	format    Format
	workers   int
	maxTexels int

	live   atomic.Int64
	closed bool
}

// NewSoftware returns a CPU backend.
func NewSoftware(opts SoftwareOptions) *Software {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Software{
		format:    opts.Format,
		workers:   workers,
		maxTexels: opts.MaxTexels,
	}
}

// Format returns the storage format of allocated targets.
func (s *Software) Format() Format {
	return s.format
}

// Live returns the number of allocated, unreleased targets.
func (s *Software) Live() int {
	return int(s.live.Load())
}

// NewTarget allocates a zeroed field buffer.
func (s *Software) NewTarget(width, height int) (field.Target, error) {
	if s.closed {
		return nil, fmt.Errorf("software backend closed")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("target size %dx%d", width, height)
	}
	if s.maxTexels > 0 && width*height > s.maxTexels {
		return nil, fmt.Errorf("target %dx%d exceeds %d texels", width, height, s.maxTexels)
	}

	t := &cpuTarget{owner: s, width: width, height: height}
	switch s.format {
	case FormatFloat16:
		t.f16 = make([]uint16, width*height)
	default:
		t.f32 = make([]float32, width*height)
	}
	s.live.Add(1)
	return t, nil
}

func (s *Software) own(t field.Target) (*cpuTarget, error) {
	ct, ok := t.(*cpuTarget)
	if !ok || ct.owner != s {
		return nil, ErrForeignTarget
	}
	if ct.released {
		return nil, ErrReleased
	}
	return ct, nil
}

// Simulate writes decay plus brush deposition of u.Field into dst.
func (s *Software) Simulate(dst field.Target, u uniforms.Simulation) error {
	if u.Field == nil {
		return ErrNoField
	}
	out, err := s.own(dst)
	if err != nil {
		return fmt.Errorf("write target: %w", err)
	}
	in, err := s.own(u.Field)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}
	if in == out {
		return ErrAliased
	}

	w, h := float32(out.width), float32(out.height)
	s.rows(out.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / h
			for x := 0; x < out.width; x++ {
				uv := shader.Vec2{X: (float32(x) + 0.5) / w, Y: v}
				out.set(x, y, shader.Simulate(u.SimulationUniforms, uv, in.sample(uv.X, uv.Y)))
			}
		}
	})
	return nil
}

// Display shades every pixel of surface, which must be *image.RGBA. Image
// row 0 is the top of the screen, which is uv.y = 1.
func (s *Software) Display(surface Surface, u uniforms.Display) error {
	img, ok := surface.(*image.RGBA)
	if !ok || img == nil {
		return fmt.Errorf("%w: %T", ErrSurface, surface)
	}
	if u.Field == nil {
		return ErrNoField
	}
	in, err := s.own(u.Field)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}

	b := img.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	s.rows(b.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := 1 - (float32(y)+0.5)/h
			for x := 0; x < b.Dx(); x++ {
				uv := shader.Vec2{X: (float32(x) + 0.5) / w, Y: v}
				c := shader.Shade(u.DisplayUniforms, uv, in.sample(uv.X, uv.Y))
				r, g, bl := c.RGBA8()
				img.SetRGBA(b.Min.X+x, b.Min.Y+y, color.RGBA{R: r, G: g, B: bl, A: 255})
			}
		}
	})
	return nil
}

// ReadField copies the target's values in texture order.
func (s *Software) ReadField(t field.Target, dst []float32) ([]float32, error) {
	ct, err := s.own(t)
	if err != nil {
		return dst, err
	}
	n := ct.width * ct.height
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	if ct.f32 != nil {
		copy(dst, ct.f32)
		return dst, nil
	}
	for y := 0; y < ct.height; y++ {
		for x := 0; x < ct.width; x++ {
			dst[y*ct.width+x] = ct.at(x, y)
		}
	}
	return dst, nil
}

// Close marks the backend closed. Further allocations fail.
func (s *Software) Close() error {
	s.closed = true
	return nil
}

// rows splits [0,height) into contiguous stripes and runs fn on each in
// parallel, returning once every stripe is done.
func (s *Software) rows(height int, fn func(y0, y1 int)) {
	workers := min(s.workers, height/rowsPerWorkerMin)
	if workers <= 1 {
		fn(0, height)
		return
	}

	stripe := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += stripe {
		y1 := min(y0+stripe, height)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
