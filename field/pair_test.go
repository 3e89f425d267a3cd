package field

import (
	"errors"
	"testing"
)

type fakeTarget struct {
	id       int
	w, h     int
	released bool
	alloc    *fakeAllocator
}

func (t *fakeTarget) Width() int  { return t.w }
func (t *fakeTarget) Height() int { return t.h }
func (t *fakeTarget) Release() {
	if t.released {
		return
	}
	t.released = true
	t.alloc.live--
}

type fakeAllocator struct {
	next   int
	live   int
	failAt int // 1-based allocation number that fails; 0 = never
}

var errOutOfMemory = errors.New("out of memory")

func (a *fakeAllocator) NewTarget(w, h int) (Target, error) {
	a.next++
	if a.failAt != 0 && a.next == a.failAt {
		return nil, errOutOfMemory
	}
	a.live++
	return &fakeTarget{id: a.next, w: w, h: h, alloc: a}, nil
}

func TestEnsureSizeAllocatesPair(t *testing.T) {
	alloc := &fakeAllocator{}
	p := NewPair(alloc)

	changed, err := p.EnsureSize(64, 32)
	if err != nil {
		t.Fatalf("EnsureSize: %v", err)
	}
	if !changed {
		t.Error("expected first EnsureSize to allocate")
	}
	if alloc.live != 2 {
		t.Errorf("expected 2 live targets, got %d", alloc.live)
	}
	if p.Current() == p.Previous() {
		t.Error("current and previous must be distinct buffers")
	}
	w, h := p.Size()
	if w != 64 || h != 32 {
		t.Errorf("expected size 64x32, got %dx%d", w, h)
	}
	for _, tgt := range []Target{p.Current(), p.Previous()} {
		if tgt.Width() != 64 || tgt.Height() != 32 {
			t.Errorf("target size %dx%d, want 64x32", tgt.Width(), tgt.Height())
		}
	}
}

func TestEnsureSizeSameSizeKeepsBuffers(t *testing.T) {
	alloc := &fakeAllocator{}
	p := NewPair(alloc)
	p.EnsureSize(10, 10)
	cur := p.Current()

	changed, err := p.EnsureSize(10, 10)
	if err != nil {
		t.Fatalf("EnsureSize: %v", err)
	}
	if changed {
		t.Error("expected no reallocation for unchanged size")
	}
	if p.Current() != cur {
		t.Error("buffers replaced without a size change")
	}
	if alloc.next != 2 {
		t.Errorf("expected 2 allocations total, got %d", alloc.next)
	}
}

func TestEnsureSizeReleasesOldBuffers(t *testing.T) {
	alloc := &fakeAllocator{}
	p := NewPair(alloc)
	p.EnsureSize(10, 10)
	oldA := p.Current().(*fakeTarget)
	oldB := p.Previous().(*fakeTarget)

	for i := 0; i < 50; i++ {
		if _, err := p.EnsureSize(10+i%3+1, 10); err != nil {
			t.Fatalf("EnsureSize: %v", err)
		}
	}
	if !oldA.released || !oldB.released {
		t.Error("old buffers were not released on resize")
	}
	if alloc.live != 2 {
		t.Errorf("expected 2 live targets after repeated resizes, got %d", alloc.live)
	}

	p.Release()
	p.Release()
	if alloc.live != 0 {
		t.Errorf("expected 0 live targets after Release, got %d", alloc.live)
	}
	if p.Allocated() {
		t.Error("pair still reports allocated after Release")
	}
}

func TestSwapParity(t *testing.T) {
	p := NewPair(&fakeAllocator{})
	p.EnsureSize(8, 8)

	original := p.Current()
	write := p.Previous()

	p.Swap()
	if p.Current() != write {
		t.Error("after one swap, current should be the former write target")
	}
	if p.Previous() != original {
		t.Error("after one swap, previous should be the former current")
	}

	p.Swap()
	if p.Current() != original {
		t.Error("after two swaps, current should be the original buffer")
	}
}

func TestEnsureSizeFailureLeavesNoPartialState(t *testing.T) {
	tests := []struct {
		name   string
		failAt int
	}{
		{"first buffer", 3},
		{"second buffer", 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alloc := &fakeAllocator{failAt: tc.failAt}
			p := NewPair(alloc)
			if _, err := p.EnsureSize(16, 16); err != nil {
				t.Fatalf("initial EnsureSize: %v", err)
			}

			_, err := p.EnsureSize(32, 32)
			if !errors.Is(err, ErrAllocation) {
				t.Fatalf("expected ErrAllocation, got %v", err)
			}
			if !errors.Is(err, errOutOfMemory) {
				t.Errorf("expected underlying cause to be preserved, got %v", err)
			}
			if alloc.live != 0 {
				t.Errorf("expected no live targets after failure, got %d", alloc.live)
			}
			if p.Allocated() {
				t.Error("pair should be empty after a failed allocation")
			}
			if w, h := p.Size(); w != 0 || h != 0 {
				t.Errorf("expected size 0x0 after failure, got %dx%d", w, h)
			}

			// Next attempt retries from scratch.
			changed, err := p.EnsureSize(32, 32)
			if err != nil || !changed {
				t.Fatalf("retry: changed=%v err=%v", changed, err)
			}
			if alloc.live != 2 {
				t.Errorf("expected 2 live targets after retry, got %d", alloc.live)
			}
		})
	}
}

func TestEnsureSizeRejectsInvalidSize(t *testing.T) {
	p := NewPair(&fakeAllocator{})
	for _, sz := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := p.EnsureSize(sz[0], sz[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("EnsureSize(%d,%d): expected ErrInvalidSize, got %v", sz[0], sz[1], err)
		}
	}
}
