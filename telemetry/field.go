package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/blas/blas32"
)

// CoverageThreshold is the intensity above which a texel counts as inked.
const CoverageThreshold = 0.01

// FieldStats summarizes one readback of the ink field.
type FieldStats struct {
	Frame    int64   `csv:"frame"`
	Time     float64 `csv:"time"`
	Width    int     `csv:"width"`
	Height   int     `csv:"height"`
	Mean     float64 `csv:"mean"`
	Std      float64 `csv:"std"`
	Max      float64 `csv:"max"`
	P50      float64 `csv:"p50"`
	P90      float64 `csv:"p90"`
	Coverage float64 `csv:"coverage"` // fraction of texels above CoverageThreshold
}

// Percentile returns the p-th percentile of a sorted slice with linear
// interpolation. p is in [0, 1]. Returns 0 for an empty slice.
func Percentile(sorted []float32, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return float64(sorted[0])
	}
	if p >= 1 {
		return float64(sorted[n-1])
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return float64(sorted[n-1])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}

// ComputeFieldStats summarizes non-negative field values. scratch is reused
// for sorting and returned so callers can keep it between frames.
func ComputeFieldStats(values, scratch []float32) (FieldStats, []float32) {
	n := len(values)
	if n == 0 {
		return FieldStats{}, scratch
	}

	v := blas32.Vector{N: n, Inc: 1, Data: values}
	sum := float64(blas32.Asum(v))
	norm := float64(blas32.Nrm2(v))
	peak := float64(values[blas32.Iamax(v)])

	mean := sum / float64(n)
	variance := norm*norm/float64(n) - mean*mean

	scratch = append(scratch[:0], values...)
	slices.Sort(scratch)
	firstInked, _ := slices.BinarySearch(scratch, math.Nextafter32(CoverageThreshold, 2))

	return FieldStats{
		Mean:     mean,
		Std:      math.Sqrt(max(variance, 0)),
		Max:      peak,
		P50:      Percentile(scratch, 0.5),
		P90:      Percentile(scratch, 0.9),
		Coverage: float64(n-firstInked) / float64(n),
	}, scratch
}

// LogValue implements slog.LogValuer.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Float64("time", s.Time),
		slog.Int("width", s.Width),
		slog.Int("height", s.Height),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("max", s.Max),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("coverage", s.Coverage),
	)
}
