// Package field owns the two ping-pong buffers that hold the ink field.
//
// A Pair keeps both buffers in a fixed two-element array and a role index.
// Swap flips the index; buffers are never copied and never handed out in
// both roles at once.
package field

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation wraps any failure to allocate a field buffer.
	ErrAllocation = errors.New("field: allocation failed")

	// ErrInvalidSize is returned for non-positive buffer dimensions.
	ErrInvalidSize = errors.New("field: invalid size")
)

// Target is one offscreen colour buffer able to hold a floating point field.
type Target interface {
	Width() int
	Height() int
	// Release frees the buffer. Calling it twice is a no-op.
	Release()
}

// Allocator creates zero-initialised targets of a single storage format.
type Allocator interface {
	NewTarget(width, height int) (Target, error)
}

// Pair holds the current and previous field buffers.
type Pair struct {
	alloc   Allocator
	targets [2]Target
	current int // index of the buffer holding field(t)
	width   int
	height  int
}

// NewPair returns an empty pair. Buffers are allocated by the first EnsureSize.
func NewPair(alloc Allocator) *Pair {
	return &Pair{alloc: alloc}
}

// Size returns the allocated dimensions, or 0x0 when empty.
func (p *Pair) Size() (width, height int) {
	return p.width, p.height
}

// Allocated reports whether both buffers exist.
func (p *Pair) Allocated() bool {
	return p.targets[0] != nil && p.targets[1] != nil
}

// EnsureSize reallocates both buffers when the requested size differs from
// the current allocation. Fresh buffers are zero-filled, so a resize resets
// the field. It reports whether a reallocation happened.
//
// On failure nothing is kept: any buffer allocated during the attempt is
// released and the pair is left empty so that the next call retries.
func (p *Pair) EnsureSize(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if p.Allocated() && width == p.width && height == p.height {
		return false, nil
	}

	p.Release()

	a, err := p.alloc.NewTarget(width, height)
	if err != nil {
		return false, fmt.Errorf("%w: buffer A %dx%d: %w", ErrAllocation, width, height, err)
	}
	b, err := p.alloc.NewTarget(width, height)
	if err != nil {
		a.Release()
		return false, fmt.Errorf("%w: buffer B %dx%d: %w", ErrAllocation, width, height, err)
	}

	p.targets = [2]Target{a, b}
	p.current = 0
	p.width = width
	p.height = height
	return true, nil
}

// Current returns the buffer holding the most recent field.
func (p *Pair) Current() Target {
	return p.targets[p.current]
}

// Previous returns the buffer that the next simulation pass overwrites.
func (p *Pair) Previous() Target {
	return p.targets[1-p.current]
}

// Swap exchanges the roles of the two buffers.
func (p *Pair) Swap() {
	p.current = 1 - p.current
}

// Release frees both buffers and empties the pair. Safe to call repeatedly.
func (p *Pair) Release() {
	for i, t := range p.targets {
		if t != nil {
			t.Release()
			p.targets[i] = nil
		}
	}
	p.current = 0
	p.width = 0
	p.height = 0
}
