package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker keeps track of batch progress and prints one line per
// listing
type StatusTracker struct {
	mu          sync.Mutex
	printer     *Printer
	total       int
	done        int
	failed      int
	imagesSaved int
	startTime   time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker(p *Printer) *StatusTracker {
	if p == nil {
		p = Stdout()
	}
	return &StatusTracker{
		printer:   p,
		startTime: time.Now(),
	}
}

// ListingStarted records the start of listing index (1-based) out of total
func (st *StatusTracker) ListingStarted(index, total int, url string) {
	st.mu.Lock()
	st.total = total
	bar := st.bar()
	st.mu.Unlock()

	st.printer.PrintInfo(fmt.Sprintf("[%d/%d] %s", index, total, bar), url)
}

// ListingFinished records the outcome of a listing
func (st *StatusTracker) ListingFinished(index, total int, url string, imagesSaved int, err error) {
	st.mu.Lock()
	st.total = total
	st.done++
	st.imagesSaved += imagesSaved
	if err != nil {
		st.failed++
	}
	st.mu.Unlock()

	if err != nil {
		st.printer.PrintWarning(fmt.Sprintf("  skipped: %v", err))
		return
	}
	st.printer.PrintSuccess(fmt.Sprintf("  %d image(s) saved", imagesSaved))
}

// bar renders the progress bar; callers hold st.mu
func (st *StatusTracker) bar() string {
	if st.total <= 0 {
		return strings.Repeat(ProgressEmpty, barWidth)
	}
	filled := st.done * barWidth / st.total
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
}

// Elapsed returns the time since tracking started
func (st *StatusTracker) Elapsed() time.Duration {
	return time.Since(st.startTime)
}

// Counts returns processed, failed and saved image totals
func (st *StatusTracker) Counts() (done, failed, images int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.done, st.failed, st.imagesSaved
}

// PrintSummary prints the final batch line
func (st *StatusTracker) PrintSummary() {
	done, failed, images := st.Counts()
	st.printer.PrintHighlight(fmt.Sprintf("\n[DONE] %d listing(s), %d failed, %d image(s) in %s",
		done, failed, images, st.Elapsed().Round(time.Second)))
}
