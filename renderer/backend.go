// Package renderer executes the simulation and display passes.
//
// A Backend allocates field buffers and runs both programs. The software
// backend in this package evaluates the shader math on the CPU; the raylib
// backend in renderer/rlbackend runs the GLSL programs on the GPU.
package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pthm-cable/inkfield/field"
	"github.com/pthm-cable/inkfield/uniforms"
)

var (
	// ErrSurface is returned when a display surface has a type the backend cannot draw to.
	ErrSurface = errors.New("renderer: unsupported surface")

	// ErrForeignTarget is returned for a target that this backend did not allocate.
	ErrForeignTarget = errors.New("renderer: target not owned by backend")

	// ErrReleased is returned when a pass touches a released target.
	ErrReleased = errors.New("renderer: target released")

	// ErrAliased is returned when a pass would read and write the same target.
	ErrAliased = errors.New("renderer: read and write target are the same")

	// ErrNoField is returned when a pass runs without a bound input field.
	ErrNoField = errors.New("renderer: no field bound")
)

// Surface is where the display pass draws. Each backend documents the
// concrete types it accepts.
type Surface any

// Backend runs the two passes against buffers it allocates itself.
type Backend interface {
	field.Allocator

	// Simulate renders one simulation step into dst, reading u.Field.
	Simulate(dst field.Target, u uniforms.Simulation) error

	// Display renders u.Field through the palette into surface.
	Display(surface Surface, u uniforms.Display) error

	// ReadField copies a target's intensities into dst in texture order:
	// row-major, row 0 at uv.y = 0. dst is grown as needed.
	ReadField(t field.Target, dst []float32) ([]float32, error)

	// Close releases programs and other backend-wide resources. Targets are
	// owned by their Pair and released there.
	Close() error
}

// Format is the storage format of field buffers.
type Format int

const (
	// FormatFloat32 stores one IEEE single per texel.
	FormatFloat32 Format = iota
	// FormatFloat16 stores one IEEE half per texel.
	FormatFloat16
)

func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "float32"
	case FormatFloat16:
		return "float16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a format name as written in configuration.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float32", "f32", "float":
		return FormatFloat32, nil
	case "float16", "f16", "half":
		return FormatFloat16, nil
	}
	return 0, fmt.Errorf("unknown field format %q", s)
}
