package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Banner is printed once at the start of a run
const Banner = `
 ╔════════════════════════════════════════════╗
 ║  LISTING SCRAPER  ·  title, VIN & gallery  ║
 ╚════════════════════════════════════════════╝
`

var (
	neonCyan    = lipgloss.Color("#00FFFF")
	neonMagenta = lipgloss.Color("#FF00FF")
	neonGreen   = lipgloss.Color("#39FF14")
	neonYellow  = lipgloss.Color("#FFFF00")
	neonOrange  = lipgloss.Color("#FF6700")
	alertRed    = lipgloss.Color("#FF0000")
)

// Printer writes styled status lines. Colours are dropped automatically when
// the writer is not a colour capable terminal.
type Printer struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	quiet       bool

	banner    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	failure   lipgloss.Style
	highlight lipgloss.Style
}

// NewPrinter creates a Printer writing to out
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:         out,
		interactive: IsTerminal(out),

		banner:    r.NewStyle().Foreground(neonCyan).Bold(true),
		label:     r.NewStyle().Foreground(neonCyan),
		value:     r.NewStyle().Foreground(neonYellow),
		success:   r.NewStyle().Foreground(neonGreen).Bold(true),
		warning:   r.NewStyle().Foreground(neonOrange),
		failure:   r.NewStyle().Foreground(alertRed).Bold(true),
		highlight: r.NewStyle().Foreground(neonMagenta),
	}
}

var (
	stdoutOnce    sync.Once
	stdoutPrinter *Printer
)

// Stdout returns the shared Printer for os.Stdout
func Stdout() *Printer {
	stdoutOnce.Do(func() {
		stdoutPrinter = NewPrinter(os.Stdout)
	})
	return stdoutPrinter
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetQuiet suppresses everything except errors
func (p *Printer) SetQuiet(quiet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quiet = quiet
}

// Interactive reports whether the output is a terminal
func (p *Printer) Interactive() bool {
	return p.interactive
}

func (p *Printer) println(always bool, s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet && !always {
		return
	}
	fmt.Fprintln(p.out, s)
}

// PrintBanner prints the application banner
func (p *Printer) PrintBanner() {
	p.println(false, p.banner.Render(Banner))
}

// PrintError prints an error message, with an optional cause
func (p *Printer) PrintError(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	p.println(true, p.failure.Render(msg))
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(msg string) {
	p.println(false, p.success.Render(msg))
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(msg string) {
	p.println(false, p.warning.Render(msg))
}

// PrintInfo prints a label and value pair
func (p *Printer) PrintInfo(label, value string) {
	p.println(false, fmt.Sprintf("%s: %s", p.label.Render(label), p.value.Render(value)))
}

// PrintHighlight prints a highlighted message
func (p *Printer) PrintHighlight(msg string) {
	p.println(false, p.highlight.Render(msg))
}
