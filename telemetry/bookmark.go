package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBloom     BookmarkType = "bloom"
	BookmarkFaded     BookmarkType = "faded"
	BookmarkSaturated BookmarkType = "saturated"
	BookmarkSettled   BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Frame       int64
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"description", b.Description,
	)
}

// Detection thresholds.
const (
	bloomFactor      = 2.0   // coverage multiple of the rolling average
	bloomMinCoverage = 0.2   // ignore blooms of a nearly empty field
	fadedFraction    = 0.25  // coverage below this share of the recent peak
	fadedMinPeak     = 0.1   // peak coverage required before a fade counts
	saturatedLevel   = 0.999 // P90 at or above this means most ink is clamped
	settledCV2       = 0.01  // squared coefficient of variation, CV < 10%
	settledWindows   = 5
)

// BookmarkDetector detects interesting moments in a field's history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FieldStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak float64 // peak coverage since the last fade
	saturated  bool    // inside a saturated stretch
	settled    bool    // settled has fired
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]FieldStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FieldStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Bloom: coverage > 2x rolling average
		if b := bd.checkBloom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Faded: dropped below a quarter of the recent peak
		if b := bd.checkFaded(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Settled: steady coverage over 5 snapshots, once per run
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Saturated needs no history
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	if stats.Coverage > bd.recentPeak {
		bd.recentPeak = stats.Coverage
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FieldStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FieldStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkBloom(stats FieldStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Coverage
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Coverage > avg*bloomFactor && stats.Coverage > bloomMinCoverage {
		return &Bookmark{
			Type:        BookmarkBloom,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Coverage %.2f is %.1fx average (%.2f)", stats.Coverage, stats.Coverage/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFaded(stats FieldStats) *Bookmark {
	if bd.recentPeak < fadedMinPeak {
		return nil
	}

	if stats.Coverage < bd.recentPeak*fadedFraction {
		// Reset peak after a fade
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Coverage

		return &Bookmark{
			Type:        BookmarkFaded,
			Frame:       stats.Frame,
			Description: fmt.Sprintf("Coverage faded from peak %.2f to %.2f", oldPeak, stats.Coverage),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSaturated(stats FieldStats) *Bookmark {
	if stats.P90 < saturatedLevel {
		bd.saturated = false
		return nil
	}
	if bd.saturated {
		return nil
	}
	bd.saturated = true
	return &Bookmark{
		Type:        BookmarkSaturated,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("Field saturated: p90 %.3f, coverage %.2f", stats.P90, stats.Coverage),
	}
}

func (bd *BookmarkDetector) checkSettled(stats FieldStats) *Bookmark {
	if bd.settled || stats.Coverage < bloomMinCoverage {
		return nil
	}

	history := bd.getHistory()
	if len(history) < settledWindows-1 {
		return nil
	}

	// Current snapshot plus the previous four, oldest first
	window := make([]float64, 0, settledWindows)
	for i := settledWindows - 1; i >= 1; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		window = append(window, bd.history[idx].Coverage)
	}
	window = append(window, stats.Coverage)

	mean, variance := stat.MeanVariance(window, nil)
	// Population variance
	variance *= float64(settledWindows-1) / settledWindows
	if mean <= 0 || variance/(mean*mean) >= settledCV2 {
		return nil
	}

	bd.settled = true
	return &Bookmark{
		Type:        BookmarkSettled,
		Frame:       stats.Frame,
		Description: fmt.Sprintf("Coverage steady near %.2f over %d snapshots", mean, settledWindows),
	}
}
