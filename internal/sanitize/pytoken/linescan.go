package pytoken

import (
	"context"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gonkalabs/decomment/internal/sanitize"
)

var codingLine = regexp2.MustCompile(`^[ \t\f]*#.*?coding[:=]`, regexp2.None)

// LineScanner removes Python comments one line at a time. It tracks quotes,
// escapes and triple-quoted strings (across lines) well enough to find a '#'
// outside any string. It does not understand string prefixes or f-string
// interpolation.
type LineScanner struct {
	keep *sanitize.KeepSet
}

// NewLineScanner returns a LineScanner honouring keep.
func NewLineScanner(keep *sanitize.KeepSet) *LineScanner {
	return &LineScanner{keep: keep}
}

// Strip never fails.
func (l *LineScanner) Strip(_ context.Context, text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	triple := ""
	for n, line := range splitLines(text) {
		body, eol := splitEOL(line)
		var idx int
		idx, triple = commentIndex(body, triple)
		if idx < 0 || l.protected(n, body[idx:]) {
			b.WriteString(line)
			continue
		}
		b.WriteString(strings.TrimRight(body[:idx], " \t\f"))
		b.WriteString(eol)
	}
	return b.String(), nil
}

func (l *LineScanner) protected(lineNo int, comment string) bool {
	return header(lineNo, comment) || l.keep.Match(comment)
}

// header reports whether comment is a shebang on the first line or a coding
// declaration on one of the first two (lineNo counts from zero).
func header(lineNo int, comment string) bool {
	if lineNo == 0 && strings.HasPrefix(comment, "#!") {
		return true
	}
	if lineNo <= 1 {
		if ok, _ := codingLine.MatchString(comment); ok {
			return true
		}
	}
	return false
}

// commentIndex returns the byte index of the first '#' outside a string, or
// -1, together with the triple-quote state at the end of the line.
func commentIndex(line, triple string) (int, string) {
	inSingle, inDouble, escaped := false, false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if triple != "" {
			if !escaped && strings.HasPrefix(line[i:], triple) {
				triple = ""
				i += 2
				continue
			}
			escaped = c == '\\' && !escaped
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && (inSingle || inDouble) {
			escaped = true
			continue
		}
		if !inSingle && !inDouble {
			if t := line[i:min(i+3, len(line))]; t == `"""` || t == `'''` {
				triple = t
				i += 2
				continue
			}
		}
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '#' && !inSingle && !inDouble:
			return i, triple
		}
	}
	return -1, triple
}

// splitLines splits text after every '\n', keeping the terminators.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitEOL separates the line terminator ("\n" or "\r\n") from line.
func splitEOL(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
