// Package whitespace tidies text after comments were blanked: trailing
// blanks are trimmed, runs of empty lines are collapsed and the text ends
// with a newline. Each line keeps its own terminator ("\n" or "\r\n").
package whitespace

import "strings"

// Options controls the post-pass.
type Options struct {
	// MaxBlankLines caps consecutive empty lines; negative disables collapsing.
	MaxBlankLines int
	// Off skips trimming and collapsing; only the trailing newline is added.
	Off bool
}

// Apply runs the post-pass configured by opts. Empty input stays empty.
func Apply(text string, opts Options) string {
	if text == "" {
		return text
	}
	if opts.Off {
		return EnsureTrailingNewline(text)
	}
	return Clean(text, opts.MaxBlankLines)
}

// EnsureTrailingNewline appends "\n" unless text is empty or already ends
// with one.
func EnsureTrailingNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}

// Clean trims trailing spaces and tabs from every line, keeps at most
// maxBlank consecutive empty lines (all of them when maxBlank < 0) and
// ensures a trailing newline.
func Clean(text string, maxBlank int) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))

	blanks := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		body, eol := line, ""
		switch {
		case strings.HasSuffix(body, "\r\n"):
			body, eol = body[:len(body)-2], "\r\n"
		case strings.HasSuffix(body, "\n"):
			body, eol = body[:len(body)-1], "\n"
		}
		body = strings.TrimRight(body, " \t\f\v\r")
		if eol == "" {
			if body == "" {
				continue
			}
			eol = "\n"
		}

		if body == "" {
			blanks++
			if maxBlank >= 0 && blanks > maxBlank {
				continue
			}
		} else {
			blanks = 0
		}
		b.WriteString(body)
		b.WriteString(eol)
	}
	return b.String()
}
