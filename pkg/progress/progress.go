// Package progress draws a terminal progress bar for long expansions.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Bar characters.
const (
	Filled = "█"
	Empty  = "░"
)

const (
	defaultWidth = 30
	percentScale = 100
)

// Draw renders a bar of the given width for value, clamped to [0, 1].
// Draw(0.7, 10) returns "███████░░░".
func Draw(value float64, width int) string {
	value = min(max(value, 0), 1)

	filled := int(value * float64(width))

	return strings.Repeat(Filled, filled) + strings.Repeat(Empty, width-filled)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bar is a single-line progress display redrawn in place with carriage
// returns. It is safe for concurrent use.
type Bar struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	unit    string
	width   int
	fill    *color.Color
	percent int
	drawn   bool
}

// Option configures a Bar.
type Option func(*Bar)

// WithLabel sets the text printed before the bar.
func WithLabel(label string) Option {
	return func(b *Bar) { b.label = label }
}

// WithUnit sets the counted unit, e.g. "rows".
func WithUnit(unit string) Option {
	return func(b *Bar) { b.unit = unit }
}

// WithWidth sets the bar width in cells.
func WithWidth(width int) Option {
	return func(b *Bar) {
		if width > 0 {
			b.width = width
		}
	}
}

// WithColor enables or disables colouring the filled cells.
func WithColor(enabled bool) Option {
	return func(b *Bar) {
		if !enabled {
			b.fill = nil
		}
	}
}

// New creates a bar writing to out. Colour is on when out is a terminal
// and NO_COLOR is unset.
func New(out io.Writer, opts ...Option) *Bar {
	b := &Bar{
		out:     out,
		unit:    "rows",
		width:   defaultWidth,
		percent: -1,
	}

	if IsTerminal(out) && os.Getenv("NO_COLOR") == "" {
		b.fill = color.New(color.FgGreen)
		b.fill.EnableColor()
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Update redraws the bar when the whole percentage changes. A call with
// done == total completes the line. Its signature matches
// paramspace.ProgressFunc.
func (b *Bar) Update(done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if total <= 0 {
		return
	}

	pct := done * percentScale / total
	if pct == b.percent && done < total {
		return
	}

	b.percent = pct
	b.drawn = true

	fmt.Fprintf(b.out, "\r%s", b.line(done, total))

	if done >= total {
		fmt.Fprintln(b.out)

		b.percent = -1
		b.drawn = false
	}
}

// Finish terminates a partially drawn line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drawn {
		fmt.Fprintln(b.out)

		b.drawn = false
		b.percent = -1
	}
}

func (b *Bar) line(done, total int) string {
	bar := Draw(float64(done)/float64(total), b.width)
	if b.fill != nil {
		filled := strings.Count(bar, Filled)
		bar = b.fill.Sprint(strings.Repeat(Filled, filled)) + strings.Repeat(Empty, b.width-filled)
	}

	text := fmt.Sprintf("[%s] %3d%%  %s / %s %s",
		bar, done*percentScale/total, humanize.Comma(int64(done)), humanize.Comma(int64(total)), b.unit)

	if b.label != "" {
		text = b.label + " " + text
	}

	return text
}
