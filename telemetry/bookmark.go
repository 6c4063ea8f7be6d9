package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBirthBoom BookmarkType = "birth_boom"
	BookmarkRecovery  BookmarkType = "population_recovery"
	BookmarkCrash     BookmarkType = "population_crash"
	BookmarkStable    BookmarkType = "stable_population"
)

// Bookmark marks a notable moment in a trial's trajectory.
type Bookmark struct {
	Type        BookmarkType
	Step        int
	Description string
}

// Log writes the bookmark using slog.
func (b Bookmark) Log(trial int) {
	slog.Info("bookmark",
		"trial", trial,
		"type", string(b.Type),
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector watches a trial's per-step rows for booms, crashes,
// recoveries and plateaus.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []StepStats
	historySize int
	historyIdx  int
	historyFull bool

	recentMin        int // smallest live population since the last recovery
	recentPeak       int // largest population since the last crash
	stableStepsCount int // consecutive steps with low variance
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for plateau detection
	}
	return &BookmarkDetector{
		history:     make([]StepStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest step and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(row StepStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(StepStats) *Bookmark{
			bd.checkBirthBoom,
			bd.checkRecovery,
			bd.checkCrash,
			bd.checkStable,
		} {
			if b := check(row); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(row)

	if row.Population > 0 && (row.Population < bd.recentMin || bd.recentMin == 0) {
		bd.recentMin = row.Population
	}
	if row.Population > bd.recentPeak {
		bd.recentPeak = row.Population
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(row StepStats) {
	bd.history[bd.historyIdx] = row
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns the history in chronological order.
func (bd *BookmarkDetector) recent() []StepStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]StepStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkBirthBoom fires when births exceed twice the rolling average.
func (bd *BookmarkDetector) checkBirthBoom(row StepStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}

	total := 0
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(row.Births) > avg*2.0 && row.Births >= 3 {
		return &Bookmark{
			Type:        BookmarkBirthBoom,
			Step:        row.Step,
			Description: fmt.Sprintf("%d births is %.1fx the average (%.1f)", row.Births, float64(row.Births)/avg, avg),
		}
	}
	return nil
}

// checkRecovery fires when a population that fell to three or fewer has at
// least tripled.
func (bd *BookmarkDetector) checkRecovery(row StepStats) *Bookmark {
	if bd.recentMin == 0 || bd.recentMin > 3 {
		return nil
	}

	if row.Population >= bd.recentMin*3 && row.Population >= 6 {
		oldMin := bd.recentMin
		bd.recentMin = row.Population

		return &Bookmark{
			Type:        BookmarkRecovery,
			Step:        row.Step,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, row.Population),
		}
	}
	return nil
}

// checkCrash fires when the population drops more than 30% below its peak.
func (bd *BookmarkDetector) checkCrash(row StepStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(row.Population)/float64(bd.recentPeak)
	if drop > 0.30 && row.Population < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = row.Population

		return &Bookmark{
			Type:        BookmarkCrash,
			Step:        row.Step,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, row.Population),
		}
	}
	return nil
}

// checkStable fires once when the population has held steady for five
// consecutive steps.
func (bd *BookmarkDetector) checkStable(row StepStats) *Bookmark {
	if row.Population < 10 {
		bd.stableStepsCount = 0
		return nil
	}

	history := bd.recent()
	if len(history) < 4 {
		return nil
	}

	window := history[len(history)-4:]
	var sum float64
	for _, h := range window {
		sum += float64(h.Population)
	}
	mean := sum / 4

	var variance float64
	for _, h := range window {
		d := float64(h.Population) - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableStepsCount++
	} else {
		bd.stableStepsCount = 0
	}

	if bd.stableStepsCount == 5 {
		return &Bookmark{
			Type:        BookmarkStable,
			Step:        row.Step,
			Description: fmt.Sprintf("Population steady around %.0f", mean),
		}
	}
	return nil
}
