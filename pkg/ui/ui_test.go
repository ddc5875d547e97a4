package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.False(t, p.Interactive())

	p.PrintInfo("Input", "urls.xlsx")
	p.PrintSuccess("done")
	p.PrintWarning("careful")
	p.PrintError("failed", errors.New("boom"))
	p.PrintError("plain", nil)
	p.PrintHighlight("hi")

	out := buf.String()
	assert.Contains(t, out, "Input")
	assert.Contains(t, out, "urls.xlsx")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "plain")
	// a buffer is not a terminal, so no escape codes
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinterQuiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.SetQuiet(true)

	p.PrintBanner()
	p.PrintInfo("a", "b")
	p.PrintSuccess("ok")
	assert.Empty(t, buf.String())

	p.PrintError("still shown", nil)
	assert.Contains(t, buf.String(), "still shown")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestStatusTracker(t *testing.T) {
	var buf bytes.Buffer
	st := NewStatusTracker(NewPrinter(&buf))

	st.ListingStarted(1, 2, "https://cars.test/1")
	st.ListingFinished(1, 2, "https://cars.test/1", 5, nil)
	st.ListingStarted(2, 2, "https://cars.test/2")
	st.ListingFinished(2, 2, "https://cars.test/2", 0, errors.New("no title"))
	st.PrintSummary()

	done, failed, images := st.Counts()
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 5, images)

	out := buf.String()
	assert.Contains(t, out, "[1/2] "+strings.Repeat(ProgressEmpty, barWidth))
	assert.Contains(t, out, "[2/2] "+strings.Repeat(ProgressBar, barWidth/2)+strings.Repeat(ProgressEmpty, barWidth/2))
	assert.Contains(t, out, "5 image(s) saved")
	assert.Contains(t, out, "skipped: no title")
	assert.Contains(t, out, "[DONE] 2 listing(s), 1 failed, 5 image(s)")
}
