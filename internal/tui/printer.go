package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

// Printer writes load progress and the final summary to stdout-like writers.
// Styles are applied only when the writer is a terminal.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styled: StylesEnabled(out)}
}

// NewPlainPrinter never styles its output.
func NewPlainPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *Printer) FilesFound(n int, root string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.render(TitleStyle, fmt.Sprintf("%d files found in %s", n, root)))
}

func (p *Printer) FileProcessed(i, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.render(MutedStyle, fmt.Sprintf("%d/%d files processed.", i, n)))
}

func (p *Printer) FileFailed(path, stage string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("%s %s (%s): %v", SymbolCross, path, stage, err)
	fmt.Fprintln(p.out, p.render(ErrorStyle, line))
}

// Summary prints one block per pass report.
func (p *Printer) Summary(reports ...*pgetl.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range reports {
		if r == nil {
			continue
		}
		block := p.summaryBlock(r)
		if p.styled {
			block = BoxStyle.Render(block)
		}
		fmt.Fprintln(p.out, block)
	}
}

func (p *Printer) summaryBlock(r *pgetl.Report) string {
	var b strings.Builder

	status := p.render(SuccessStyle, SymbolCheck)
	if r.FilesFailed > 0 || r.TotalRejected() > 0 {
		status = p.render(WarningStyle, SymbolBullet)
	}
	fmt.Fprintf(&b, "%s %s pass: %d/%d files loaded in %s",
		status, r.Pass, r.FilesProcessed, r.FilesTotal, r.Duration.Round(time.Millisecond))

	for _, t := range pgetl.Tables() {
		written, rejected := r.RowsWritten[t], r.RowsRejected[t]
		if written == 0 && rejected == 0 {
			continue
		}
		label := p.render(LabelStyle, t.String())
		if !p.styled {
			label = fmt.Sprintf("%-16s", t.String())
		}
		fmt.Fprintf(&b, "\n  %s %d written", label, written)
		if rejected > 0 {
			fmt.Fprintf(&b, ", %s", p.render(ErrorStyle, fmt.Sprintf("%d rejected", rejected)))
		}
	}

	if len(r.Resolutions) > 0 {
		fmt.Fprintf(&b, "\n  lookups: %d resolved, %d no match, %d failed",
			r.Resolutions[pgetl.Resolved], r.Resolutions[pgetl.NoMatch], r.Resolutions[pgetl.QueryFailed])
	}

	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  %s %s (%s): %v", p.render(ErrorStyle, SymbolCross), f.Path, f.Stage, f.Err)
	}
	return b.String()
}
