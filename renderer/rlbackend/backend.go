// Package rlbackend runs the simulation and display programs on the GPU
// through raylib. Create the window before calling New; every method must
// be called from the thread that owns the GL context.
package rlbackend

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/renderer"
	"github.com/pthm-cable/inkfield/uniforms"
)

// Target is a single-channel float texture attached to its own framebuffer.
type Target struct {
	owner    *Backend
	rt       rl.RenderTexture2D
	width    int
	height   int
	released bool
}

func (t *Target) Width() int  { return t.width }
func (t *Target) Height() int { return t.height }

// Texture returns the colour attachment.
func (t *Target) Texture() rl.Texture2D { return t.rt.Texture }

// Release unloads the texture and framebuffer.
func (t *Target) Release() {
	if t.released {
		return
	}
	t.released = true
	rl.UnloadRenderTexture(t.rt)
	t.owner.live--
}

// Backend implements renderer.Backend with raylib.
//
// Display accepts a nil surface, meaning the default framebuffer inside the
// host's BeginDrawing/EndDrawing, or a *rl.RenderTexture2D.
type Backend struct {
	sim  simProgram
	disp dispProgram

	live   int
	closed bool
}

var _ renderer.Backend = (*Backend)(nil)

// New compiles both programs. Field buffers are always R32 float; raylib
// exposes no half-float pixel format, so FormatFloat16 is stored as float32.
func New(format renderer.Format) (*Backend, error) {
	if format == renderer.FormatFloat16 {
		slog.Warn("half float targets unavailable in raylib, using float32")
	}

	sim, err := loadSimProgram()
	if err != nil {
		return nil, err
	}
	disp, err := loadDispProgram()
	if err != nil {
		rl.UnloadShader(sim.shader)
		return nil, err
	}
	return &Backend{sim: sim, disp: disp}, nil
}

// Live returns the number of allocated, unreleased targets.
func (b *Backend) Live() int {
	return b.live
}

// NewTarget allocates a zeroed R32 float texture with a framebuffer,
// linear filtering and clamp-to-edge addressing.
func (b *Backend) NewTarget(width, height int) (field.Target, error) {
	if b.closed {
		return nil, errors.New("raylib backend closed")
	}

	img := rl.GenImageColor(width, height, rl.Black)
	rl.ImageFormat(img, rl.UncompressedR32)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.ID == 0 {
		return nil, fmt.Errorf("load %dx%d float texture", width, height)
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	fbo := rl.LoadFramebuffer()
	if fbo == 0 {
		rl.UnloadTexture(tex)
		return nil, errors.New("create framebuffer")
	}
	rl.EnableFramebuffer(fbo)
	rl.FramebufferAttach(fbo, tex.ID, rl.AttachmentColorChannel0, rl.AttachmentTexture2d, 0)
	complete := rl.FramebufferComplete(fbo)
	rl.DisableFramebuffer()

	rt := rl.NewRenderTexture2D(fbo, tex, rl.Texture2D{})
	if !complete {
		rl.UnloadRenderTexture(rt)
		return nil, fmt.Errorf("framebuffer %dx%d incomplete", width, height)
	}

	b.live++
	return &Target{owner: b, rt: rt, width: width, height: height}, nil
}

func (b *Backend) own(t field.Target) (*Target, error) {
	rt, ok := t.(*Target)
	if !ok || rt.owner != b {
		return nil, renderer.ErrForeignTarget
	}
	if rt.released {
		return nil, renderer.ErrReleased
	}
	return rt, nil
}

// fullQuad draws tex over a w×h destination. The negative source height
// keeps texture coordinates aligned with GL texture space, so the texel
// read at uv is written back at uv.
func fullQuad(tex rl.Texture2D, w, h float32) {
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(tex.Width), Height: -float32(tex.Height)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: w, Height: h}
	rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Simulate renders u.Field through the simulation program into dst.
func (b *Backend) Simulate(dst field.Target, u uniforms.Simulation) error {
	if u.Field == nil {
		return renderer.ErrNoField
	}
	out, err := b.own(dst)
	if err != nil {
		return fmt.Errorf("write target: %w", err)
	}
	in, err := b.own(u.Field)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}
	if in == out {
		return renderer.ErrAliased
	}

	rl.BeginTextureMode(out.rt)
	rl.BeginShaderMode(b.sim.shader)
	b.sim.apply(u.SimulationUniforms)
	fullQuad(in.rt.Texture, float32(out.width), float32(out.height))
	rl.EndShaderMode()
	rl.EndTextureMode()
	return nil
}

// Display renders the current field through the palette.
func (b *Backend) Display(surface renderer.Surface, u uniforms.Display) error {
	if u.Field == nil {
		return renderer.ErrNoField
	}
	in, err := b.own(u.Field)
	if err != nil {
		return fmt.Errorf("read target: %w", err)
	}

	switch s := surface.(type) {
	case nil:
		b.drawDisplay(in, u, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	case *rl.RenderTexture2D:
		rl.BeginTextureMode(*s)
		b.drawDisplay(in, u, float32(s.Texture.Width), float32(s.Texture.Height))
		rl.EndTextureMode()
	default:
		return fmt.Errorf("%w: %T", renderer.ErrSurface, surface)
	}
	return nil
}

func (b *Backend) drawDisplay(in *Target, u uniforms.Display, w, h float32) {
	rl.BeginShaderMode(b.disp.shader)
	b.disp.apply(u.DisplayUniforms)
	fullQuad(in.rt.Texture, w, h)
	rl.EndShaderMode()
}

// ReadField downloads the texture. Rows come back in GL order, row 0 at uv.y = 0.
func (b *Backend) ReadField(t field.Target, dst []float32) ([]float32, error) {
	rt, err := b.own(t)
	if err != nil {
		return dst, err
	}
	img := rl.LoadImageFromTexture(rt.rt.Texture)
	defer rl.UnloadImage(img)
	if img.Data == nil || img.Format != rl.UncompressedR32 {
		return dst, fmt.Errorf("read back %dx%d field: format %d", rt.width, rt.height, img.Format)
	}

	n := rt.width * rt.height
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	copy(dst, unsafe.Slice((*float32)(img.Data), n))
	return dst, nil
}

// Close unloads both programs. Targets are released by their Pair.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	rl.UnloadShader(b.sim.shader)
	rl.UnloadShader(b.disp.shader)
	if b.live != 0 {
		slog.Warn("raylib backend closed with live targets", "live", b.live)
	}
	return nil
}
