// Package display renders help pages: terminal-aware widths, paragraph
// wrapping and the two-column definition lists used for parameters and
// subcommands.
package display

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	indentIncrement = 2
	maxWidth        = 80
	minWidth        = 50
	marginWidth     = 2

	colMax     = 30
	colSpacing = 2

	usagePrefix = "Usage: "
)

// Formatter builds a help page in memory.
type Formatter struct {
	width  int
	indent int
	buf    strings.Builder
}

// NewFormatter sizes a formatter to the terminal, its width clamped
// between minWidth and maxWidth minus a small margin.
func NewFormatter() *Formatter {
	return &Formatter{width: max(min(columns(), maxWidth)-marginWidth, minWidth)}
}

func columns() int {
	if env := os.Getenv("COLUMNS"); env != "" {
		if cols, err := strconv.Atoi(env); err == nil && cols > 0 {
			return cols
		}
	}

	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return cols
	}

	return maxWidth
}

// Width returns the column count lines are wrapped to.
func (f *Formatter) Width() int {
	return f.width
}

// Indent increases the indentation level.
func (f *Formatter) Indent() {
	f.indent += indentIncrement
}

// Dedent decreases the indentation level.
func (f *Formatter) Dedent() {
	f.indent -= indentIncrement
}

// WriteUsage writes the usage line, wrapping the arguments against the
// program name column when they fit beside it.
func (f *Formatter) WriteUsage(prog, args string) {
	prefix := fmt.Sprintf("%*s%s ", f.indent, usagePrefix, prog)
	width := f.width - f.indent

	if width >= Width(prefix)+20 {
		indent := strings.Repeat(" ", Width(prefix))
		f.buf.WriteString(Wrap(args, width, prefix, indent))
	} else {
		// The prefix is too long, move the arguments to their own lines.
		f.buf.WriteString(prefix)
		f.buf.WriteByte('\n')

		indent := strings.Repeat(" ", max(f.indent, len(usagePrefix))+4)
		f.buf.WriteString(Wrap(args, width, indent, indent))
	}

	f.buf.WriteByte('\n')
}

// WriteHeading writes a section heading at the current indentation.
func (f *Formatter) WriteHeading(heading string) {
	f.buf.WriteString(strings.Repeat(" ", f.indent))
	f.buf.WriteString(heading)
	f.buf.WriteString(":\n")
}

// WriteParagraph separates whatever follows from the content so far.
func (f *Formatter) WriteParagraph() {
	if f.buf.Len() > 0 {
		f.buf.WriteByte('\n')
	}
}

// WriteText writes wrapped text at the current indentation, preserving
// paragraph breaks.
func (f *Formatter) WriteText(text string) {
	indent := strings.Repeat(" ", f.indent)
	f.buf.WriteString(WrapParagraphs(text, f.width, indent))
	f.buf.WriteByte('\n')
}

// WriteDefinitions writes a two-column definition list. Terms wider
// than the first column push their definition onto the next line.
func (f *Formatter) WriteDefinitions(rows [][2]string) {
	widest := 0

	for _, row := range rows {
		if w := Width(row[0]); w > widest {
			widest = w
		}
	}

	firstCol := min(widest, colMax) + colSpacing

	for _, row := range rows {
		term, definition := row[0], row[1]

		f.buf.WriteString(strings.Repeat(" ", f.indent))
		f.buf.WriteString(term)

		if definition == "" {
			f.buf.WriteByte('\n')

			continue
		}

		if Width(term) <= firstCol-colSpacing {
			f.buf.WriteString(strings.Repeat(" ", firstCol-Width(term)))
		} else {
			f.buf.WriteByte('\n')
			f.buf.WriteString(strings.Repeat(" ", firstCol+f.indent))
		}

		width := max(f.width-firstCol-marginWidth, 10)
		lines := strings.Split(WrapParagraphs(definition, width, ""), "\n")

		f.buf.WriteString(lines[0])
		f.buf.WriteByte('\n')

		for _, line := range lines[1:] {
			if line != "" {
				f.buf.WriteString(strings.Repeat(" ", firstCol+f.indent))
			}

			f.buf.WriteString(line)
			f.buf.WriteByte('\n')
		}
	}
}

// Section writes a paragraph break and a heading, then runs body with
// the indentation increased.
func (f *Formatter) Section(name string, body func()) {
	f.WriteParagraph()
	f.WriteHeading(name)
	f.Indent()
	defer f.Dedent()

	body()
}

// Indentation runs body with the indentation increased.
func (f *Formatter) Indentation(body func()) {
	f.Indent()
	defer f.Dedent()

	body()
}

// String returns the page rendered so far.
func (f *Formatter) String() string {
	return f.buf.String()
}
