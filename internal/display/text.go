package display

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var colorCodes = regexp.MustCompile(`\x1b\[[;?0-9]*[a-zA-Z]`)

// StripColor removes ANSI escape sequences from text.
func StripColor(text string) string {
	return colorCodes.ReplaceAllString(text, "")
}

// Width returns the number of terminal columns the text occupies,
// ignoring ANSI escape sequences.
func Width(text string) int {
	return utf8.RuneCountInString(StripColor(text))
}

// Wrap fills a single paragraph into lines of at most width columns,
// prefixing the first line with initial and every other line with
// subsequent. Both prefixes count against the width. Words too long
// for a full line are split with a hyphen.
func Wrap(text string, width int, initial, subsequent string) string {
	if width < 1 {
		width = 1
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return strings.TrimRight(initial, " ")
	}

	var filled strings.Builder

	line := initial
	lineWidth := Width(initial)
	empty := true

	for _, word := range words {
		wordWidth := Width(word)

		if !empty && lineWidth+1+wordWidth > width {
			filled.WriteString(line)
			filled.WriteByte('\n')

			line = subsequent
			lineWidth = Width(subsequent)
			empty = true
		}

		// Hyphenate words that cannot fit on a line of their own.
		for empty && lineWidth+wordWidth > width {
			avail := max(width-lineWidth-1, 1)

			runes := []rune(word)
			if avail >= len(runes) {
				break
			}

			filled.WriteString(line)
			filled.WriteString(string(runes[:avail]))
			filled.WriteString("-\n")

			word = string(runes[avail:])
			wordWidth = Width(word)
			line = subsequent
			lineWidth = Width(subsequent)
		}

		if !empty {
			line += " "
			lineWidth++
		}

		line += word
		lineWidth += wordWidth
		empty = false
	}

	filled.WriteString(line)

	return filled.String()
}

// WrapParagraphs wraps text paragraph by paragraph, paragraphs being
// separated by blank lines. The leading indentation of a paragraph's
// first line carries over to its wrapped lines. A paragraph whose
// first line is a lone \b character is kept verbatim, only indented.
func WrapParagraphs(text string, width int, indent string) string {
	type paragraph struct {
		indent int
		raw    bool
		text   string
	}

	var (
		paragraphs []paragraph
		buf        []string
	)

	extra := -1

	flush := func() {
		if len(buf) == 0 {
			return
		}

		par := paragraph{indent: max(extra, 0)}

		if strings.TrimSpace(buf[0]) == "\b" {
			par.raw = true
			par.text = strings.Join(buf[1:], "\n")
		} else {
			par.text = strings.Join(buf, " ")
		}

		paragraphs = append(paragraphs, par)
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			extra = -1

			continue
		}

		if extra < 0 {
			stripped := strings.TrimLeft(line, " ")
			extra = Width(line) - Width(stripped)
			line = stripped
		}

		buf = append(buf, line)
	}

	flush()

	parts := make([]string, 0, len(paragraphs))

	for _, par := range paragraphs {
		pad := indent + strings.Repeat(" ", par.indent)

		if par.raw {
			parts = append(parts, indentLines(par.text, pad))
		} else {
			parts = append(parts, Wrap(par.text, width, pad, pad))
		}
	}

	return strings.Join(parts, "\n\n")
}

func indentLines(text, indent string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}

	return strings.Join(lines, "\n")
}

// ShortHelp condenses a help string to at most limit characters,
// keeping only the first paragraph and cutting at a sentence end when
// one fits, otherwise truncating with an ellipsis.
func ShortHelp(text string, limit int) string {
	if cut := strings.Index(text, "\n\n"); cut >= 0 {
		text = text[:cut]
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	// Drop a leading no-rewrap marker.
	if words[0] == "\b" {
		words = words[1:]
	}

	total := 0
	last := len(words) - 1
	index := 0
	truncate := false

	for ; index < len(words); index++ {
		total += len(words[index])
		if index > 0 {
			total++
		}

		if total > limit {
			truncate = true

			break
		}

		if strings.HasSuffix(words[index], ".") {
			return strings.Join(words[:index+1], " ")
		}

		if total == limit && index != last {
			truncate = true

			break
		}
	}

	if !truncate {
		return strings.Join(words, " ")
	}

	total += len("...")

	for index > 0 {
		total -= len(words[index]) + 1

		if total <= limit {
			break
		}

		index--
	}

	return strings.Join(words[:index], " ") + "..."
}
