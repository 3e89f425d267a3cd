package renderer

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/shader"
	"github.com/pthm-cable/inkfield/uniforms"
)

func newTarget(t *testing.T, s *Software, w, h int) *cpuTarget {
	t.Helper()
	tgt, err := s.NewTarget(w, h)
	if err != nil {
		t.Fatalf("NewTarget(%d,%d): %v", w, h, err)
	}
	return tgt.(*cpuTarget)
}

func TestNewTargetIsZeroed(t *testing.T) {
	for _, format := range []Format{FormatFloat32, FormatFloat16} {
		s := NewSoftware(SoftwareOptions{Format: format})
		tgt := newTarget(t, s, 13, 7)
		vals, err := s.ReadField(tgt, nil)
		if err != nil {
			t.Fatalf("%v: ReadField: %v", format, err)
		}
		if len(vals) != 13*7 {
			t.Fatalf("%v: got %d values, want %d", format, len(vals), 13*7)
		}
		for i, v := range vals {
			if v != 0 {
				t.Fatalf("%v: texel %d = %f, want 0", format, i, v)
			}
		}
	}
}

func TestHalfStorageRoundTrip(t *testing.T) {
	s := NewSoftware(SoftwareOptions{Format: FormatFloat16})
	tgt := newTarget(t, s, 4, 1)
	in := []float32{0, 0.3, 0.98, 1}
	for x, v := range in {
		tgt.set(x, 0, v)
	}
	for x, v := range in {
		got := tgt.at(x, 0)
		// Half keeps 11 significant bits; relative error below 2^-11.
		if math.Abs(float64(got-v)) > float64(v)/2048+1e-7 {
			t.Errorf("texel %d: stored %f, read %f", x, v, got)
		}
	}
}

func TestSampleIsExactAtTexelCentres(t *testing.T) {
	s := NewSoftware(SoftwareOptions{})
	tgt := newTarget(t, s, 4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			tgt.set(x, y, float32(y*4+x)/16)
		}
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			u := (float32(x) + 0.5) / 4
			v := (float32(y) + 0.5) / 4
			if got, want := tgt.sample(u, v), tgt.at(x, y); got != want {
				t.Errorf("sample at texel (%d,%d) = %f, want %f", x, y, got, want)
			}
		}
	}
	// Clamp to edge outside the texture.
	if got := tgt.sample(-1, -1); got != tgt.at(0, 0) {
		t.Errorf("sample below range = %f, want corner %f", got, tgt.at(0, 0))
	}
	if got := tgt.sample(2, 2); got != tgt.at(3, 3) {
		t.Errorf("sample above range = %f, want corner %f", got, tgt.at(3, 3))
	}
	// Halfway between two texels along x.
	if got := tgt.sample(0.25, 0.125); math.Abs(float64(got-0.5/16)) > 1e-6 {
		t.Errorf("bilinear midpoint = %f, want %f", got, 0.5/16)
	}
}

func TestSimulateDecayBound(t *testing.T) {
	const (
		v0     = 0.9
		decay  = 0.98
		frames = 120
	)
	for _, format := range []Format{FormatFloat32, FormatFloat16} {
		s := NewSoftware(SoftwareOptions{Format: format})
		p := field.NewPair(s)
		if _, err := p.EnsureSize(32, 24); err != nil {
			t.Fatalf("EnsureSize: %v", err)
		}
		cur := p.Current().(*cpuTarget)
		for y := 0; y < 24; y++ {
			for x := 0; x < 32; x++ {
				cur.set(x, y, v0)
			}
		}

		u := uniforms.Simulation{SimulationUniforms: shader.SimulationUniforms{
			Resolution: shader.Vec2{X: 32, Y: 24},
			Decay:      decay,
		}}
		// Worst-case relative rounding per frame for the storage format.
		perFrame := 1e-7
		if format == FormatFloat16 {
			perFrame = 1.0/2048 + 1e-7
		}
		var vals []float32
		for n := 1; n <= frames; n++ {
			u.Field = p.Current()
			if err := s.Simulate(p.Previous(), u); err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			p.Swap()

			var err error
			vals, err = s.ReadField(p.Current(), vals)
			if err != nil {
				t.Fatalf("ReadField: %v", err)
			}
			bound := v0 * math.Pow(decay, float64(n)) * math.Pow(1+perFrame, float64(n+1))
			for i, v := range vals {
				if float64(v) > bound {
					t.Fatalf("%v frame %d texel %d: %f exceeds %f", format, n, i, v, bound)
				}
			}
		}
		p.Release()
	}
}

func TestSimulateClampsUnderHeavyDeposition(t *testing.T) {
	s := NewSoftware(SoftwareOptions{Workers: 4})
	p := field.NewPair(s)
	p.EnsureSize(64, 64)

	u := uniforms.Simulation{SimulationUniforms: shader.SimulationUniforms{
		Resolution: shader.Vec2{X: 64, Y: 64},
		Decay:      1,
		Pointer:    shader.Brush{Pos: shader.Vec2{X: 0.5, Y: 0.5}, Radius: 0.4, Strength: 0.7},
		Auto:       shader.Brush{Pos: shader.Vec2{X: 0.4, Y: 0.6}, Radius: 0.4, Strength: 0.7},
	}}
	var vals []float32
	for n := 0; n < 10; n++ {
		u.Field = p.Current()
		if err := s.Simulate(p.Previous(), u); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		p.Swap()
	}
	vals, _ = s.ReadField(p.Current(), vals)
	sawOne := false
	for i, v := range vals {
		if v < 0 || v > 1 {
			t.Fatalf("texel %d = %f outside [0,1]", i, v)
		}
		if v == 1 {
			sawOne = true
		}
	}
	if !sawOne {
		t.Error("expected saturated texels under the brushes")
	}
}

func TestParallelRowsMatchSerial(t *testing.T) {
	u := uniforms.Simulation{SimulationUniforms: shader.SimulationUniforms{
		Resolution: shader.Vec2{X: 40, Y: 70},
		Decay:      0.95,
		Pointer:    shader.Brush{Pos: shader.Vec2{X: 0.3, Y: 0.7}, Radius: 0.2, Strength: 0.05},
		Auto:       shader.Brush{Pos: shader.Vec2{X: 0.6, Y: 0.2}, Radius: 0.25, Strength: 0.02},
	}}

	run := func(workers int) []float32 {
		s := NewSoftware(SoftwareOptions{Workers: workers})
		p := field.NewPair(s)
		p.EnsureSize(40, 70)
		for n := 0; n < 5; n++ {
			u.Field = p.Current()
			if err := s.Simulate(p.Previous(), u); err != nil {
				t.Fatalf("Simulate: %v", err)
			}
			p.Swap()
		}
		vals, _ := s.ReadField(p.Current(), nil)
		return vals
	}

	serial := run(1)
	parallel := run(8)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("texel %d: serial %f, parallel %f", i, serial[i], parallel[i])
		}
	}
}

func TestDisplayUniformPalette(t *testing.T) {
	s := NewSoftware(SoftwareOptions{})
	tgt := newTarget(t, s, 16, 16)
	c := shader.Color{R: 0.2, G: 0.4, B: 0.6}

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	u := uniforms.Display{
		DisplayUniforms: shader.DisplayUniforms{
			Time:       1.5,
			Resolution: shader.Vec2{X: 20, Y: 10},
			Palette:    shader.Palette{c, c, c, c},
			Params:     shader.DefaultDisplayParams(),
		},
		Field: tgt,
	}
	if err := s.Display(img, u); err != nil {
		t.Fatalf("Display: %v", err)
	}
	r, g, b := c.RGBA8()
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			px := img.RGBAAt(x, y)
			if px.R != r || px.G != g || px.B != b || px.A != 255 {
				t.Fatalf("pixel (%d,%d) = %v, want (%d,%d,%d,255)", x, y, px, r, g, b)
			}
		}
	}
}

func TestDisplayBrightensInk(t *testing.T) {
	s := NewSoftware(SoftwareOptions{})
	tgt := newTarget(t, s, 1, 1)
	tgt.set(0, 0, 1)
	c := shader.Color{R: 0.5, G: 0.5, B: 0.5}
	params := shader.DefaultDisplayParams()
	params.Brighten = 0.2

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	err := s.Display(img, uniforms.Display{
		DisplayUniforms: shader.DisplayUniforms{Palette: shader.Palette{c, c, c, c}, Params: params},
		Field:           tgt,
	})
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	r, _, _ := shader.Color{R: 0.7, G: 0.7, B: 0.7}.RGBA8()
	if got := img.RGBAAt(0, 0).R; got != r {
		t.Errorf("brightened red = %d, want %d", got, r)
	}
}

func TestBackendErrors(t *testing.T) {
	s := NewSoftware(SoftwareOptions{})
	other := NewSoftware(SoftwareOptions{})
	a := newTarget(t, s, 4, 4)
	b := newTarget(t, s, 4, 4)
	foreign := newTarget(t, other, 4, 4)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"aliased", s.Simulate(a, uniforms.Simulation{Field: a}), ErrAliased},
		{"no field", s.Simulate(a, uniforms.Simulation{}), ErrNoField},
		{"foreign write", s.Simulate(foreign, uniforms.Simulation{Field: a}), ErrForeignTarget},
		{"foreign read", s.Simulate(a, uniforms.Simulation{Field: foreign}), ErrForeignTarget},
		{"bad surface", s.Display(image.NewGray(image.Rect(0, 0, 2, 2)), uniforms.Display{Field: a}), ErrSurface},
		{"nil surface", s.Display(nil, uniforms.Display{Field: a}), ErrSurface},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, tc.err, tc.want)
		}
	}

	b.Release()
	if err := s.Simulate(a, uniforms.Simulation{Field: b}); !errors.Is(err, ErrReleased) {
		t.Errorf("released read: got %v, want ErrReleased", err)
	}
}

func TestNoLeakedTargets(t *testing.T) {
	s := NewSoftware(SoftwareOptions{Format: FormatFloat16})
	p := field.NewPair(s)
	for i := 0; i < 30; i++ {
		if _, err := p.EnsureSize(16+i, 9+i%4); err != nil {
			t.Fatalf("EnsureSize: %v", err)
		}
		if s.Live() != 2 {
			t.Fatalf("resize %d: %d live targets, want 2", i, s.Live())
		}
	}
	p.Release()
	if s.Live() != 0 {
		t.Errorf("%d live targets after Release, want 0", s.Live())
	}
}

func TestMaxTexelsFailsAllocation(t *testing.T) {
	s := NewSoftware(SoftwareOptions{MaxTexels: 100})
	p := field.NewPair(s)
	_, err := p.EnsureSize(20, 20)
	if !errors.Is(err, field.ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}
	if s.Live() != 0 {
		t.Errorf("%d live targets after failed allocation", s.Live())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatFloat32, false},
		{"float32", FormatFloat32, false},
		{"Half", FormatFloat16, false},
		{"float16", FormatFloat16, false},
		{"rgba8", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
