// Package sanitize holds the comment-redaction model shared by every
// language scanner: classified spans, the keep-directive filter and the
// redaction policy that turns a comment into whitespace.
//
// Scanners classify a text into contiguous spans and hand them to Redact,
// which blanks every comment span that no keep-directive protects:
//
//	keep, err := sanitize.CompileKeep([]string{`eslint-`, `@license`})
//	res := sanitize.Redact(src, spans, keep)
//	if res.Changed { ... }
//
// Blanking replaces each byte with a space but leaves line breaks in place,
// so neither line numbers nor byte offsets of surviving code move.
package sanitize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/hashicorp/go-multierror"
)

// keepMatchTimeout bounds a single keep-directive evaluation. A directive that
// runs out of time is treated as a match so the comment is left alone.
const keepMatchTimeout = time.Second

// KeepSet is an ordered list of compiled keep-directives. The zero value and
// a nil *KeepSet keep nothing.
type KeepSet struct {
	patterns []string
	compiled []*regexp2.Regexp
}

// CompileKeep compiles user keep-directive patterns. Every invalid pattern is
// reported in the returned error, not just the first one.
func CompileKeep(patterns []string) (*KeepSet, error) {
	ks := &KeepSet{}
	var errs *multierror.Error
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid keep-directive pattern %q: %w", p, err))
			continue
		}
		re.MatchTimeout = keepMatchTimeout
		ks.patterns = append(ks.patterns, p)
		ks.compiled = append(ks.compiled, re)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return ks, nil
}

// MustCompileKeep is like CompileKeep but panics on error.
func MustCompileKeep(patterns ...string) *KeepSet {
	ks, err := CompileKeep(patterns)
	if err != nil {
		panic(err)
	}
	return ks
}

// Match reports whether any directive is found anywhere in comment.
func (k *KeepSet) Match(comment string) bool {
	if k == nil {
		return false
	}
	for i, re := range k.compiled {
		ok, err := re.MatchString(comment)
		if err != nil {
			slog.Debug("sanitize: keep-directive evaluation failed, keeping comment",
				"pattern", k.patterns[i], "err", err)
			return true
		}
		if ok {
			return true
		}
	}
	return false
}

// Patterns returns the source text of the directives, in order.
func (k *KeepSet) Patterns() []string {
	if k == nil {
		return []string{}
	}
	out := make([]string, len(k.patterns))
	copy(out, k.patterns)
	return out
}

// Len returns the number of directives.
func (k *KeepSet) Len() int {
	if k == nil {
		return 0
	}
	return len(k.compiled)
}

// Blank replaces every byte of s with a space, except for line breaks which
// are kept. The result has the same length and line count as s, so byte
// offsets of the text that follows do not move.
func Blank(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' && c != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}

// Redact rebuilds text from spans, blanking each Comment span whose match
// text matches no keep-directive. Spans that do not tile text exactly are
// rejected and text is returned unchanged.
func Redact(text string, spans []Span, keep *KeepSet) Result {
	if err := validSpans(text, spans); err != nil {
		slog.Warn("sanitize: rejecting span list", "err", err)
		return Unchanged(text)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, sp := range spans {
		chunk := text[sp.Start:sp.End]
		if sp.Kind != Comment || keep.Match(sp.MatchText(text)) {
			b.WriteString(chunk)
			continue
		}
		b.WriteString(Blank(chunk))
	}
	return ResultOf(text, b.String())
}

// validSpans checks that spans are ordered, non-overlapping and together
// cover text from the first byte to the last.
func validSpans(text string, spans []Span) error {
	pos := 0
	for i, sp := range spans {
		if sp.Start != pos {
			return fmt.Errorf("span %d starts at %d, want %d", i, sp.Start, pos)
		}
		if sp.End < sp.Start || sp.End > len(text) {
			return fmt.Errorf("span %d has invalid end %d", i, sp.End)
		}
		if sp.MatchStart != 0 || sp.MatchEnd != 0 {
			if sp.MatchStart < sp.Start || sp.MatchEnd > sp.End || sp.MatchStart > sp.MatchEnd {
				return fmt.Errorf("span %d match text [%d,%d) outside span", i, sp.MatchStart, sp.MatchEnd)
			}
		}
		pos = sp.End
	}
	if pos != len(text) {
		return fmt.Errorf("spans end at %d, text has %d bytes", pos, len(text))
	}
	return nil
}

// Fill inserts Code spans into the gaps between sorted, non-overlapping
// spans so that the result tiles [0, n).
func Fill(n int, spans []Span) []Span {
	out := make([]Span, 0, 2*len(spans)+1)
	pos := 0
	for _, sp := range spans {
		if sp.Start > pos {
			out = append(out, Span{Start: pos, End: sp.Start, Kind: Code})
		}
		out = append(out, sp)
		pos = sp.End
	}
	if pos < n {
		out = append(out, Span{Start: pos, End: n, Kind: Code})
	}
	return out
}
