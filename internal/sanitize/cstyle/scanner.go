// Package cstyle strips comments from C-like syntaxes (JavaScript,
// TypeScript, JSX, CSS, SCSS) with an ordered alternation of regular
// expressions instead of a parser. Strings, template literals, url(...)
// calls and regex literals are recognised only so that comment markers
// inside them are left alone.
package cstyle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/sanitize"
)

const (
	// DefaultMatchTimeout bounds one search of the alternation.
	DefaultMatchTimeout = 5 * time.Second
	// DefaultChunkLines is the width of the region left untouched when a
	// search fails.
	DefaultChunkLines = 2000
)

// Options selects the recognizers of a Scanner.
type Options struct {
	JSX              bool
	TemplateLiterals bool
	RegexLiterals    bool
	LineComments     bool
	HashComments     bool
	// ColonGuard keeps "//" that directly follows ':' (SCSS).
	ColonGuard bool

	MatchTimeout time.Duration
	ChunkLines   int
}

// FromProfile derives scanner options from a language profile.
func FromProfile(p *profile.Profile) Options {
	return Options{
		JSX:              p.JSXComments,
		TemplateLiterals: p.TemplateLiterals,
		RegexLiterals:    p.RegexLiterals,
		LineComments:     p.HasLineComments(),
		HashComments:     p.HashComments,
		ColonGuard:       p.LineCommentColonGuard,
	}
}

// ScriptOptions are used for the body of a <script> block.
func ScriptOptions() Options {
	return Options{TemplateLiterals: true, RegexLiterals: true, LineComments: true}
}

// StyleOptions are used for the body of a <style> block: CSS has neither
// line comments nor regex literals.
func StyleOptions() Options {
	return Options{}
}

// Scanner blanks comments recognised by its alternation.
type Scanner struct {
	opts        Options
	recognizers []Recognizer
	re          *regexp2.Regexp
	keep        *sanitize.KeepSet

	// find is re.FindRunesMatchStartingAt; tests swap it to inject errors.
	find func(runes []rune, start int) (*regexp2.Match, error)
}

// New compiles the alternation for opts.
func New(opts Options, keep *sanitize.KeepSet) (*Scanner, error) {
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = DefaultMatchTimeout
	}
	if opts.ChunkLines <= 0 {
		opts.ChunkLines = DefaultChunkLines
	}
	rs := Recognizers(opts)
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = "(?<" + r.Name + ">" + r.Pattern + ")"
	}
	re, err := regexp2.Compile(strings.Join(parts, "|"), regexp2.Multiline)
	if err != nil {
		return nil, fmt.Errorf("cstyle: compile alternation: %w", err)
	}
	re.MatchTimeout = opts.MatchTimeout
	return &Scanner{opts: opts, recognizers: rs, re: re, keep: keep, find: re.FindRunesMatchStartingAt}, nil
}

// Scan implements sanitize.Scanner.
func (s *Scanner) Scan(_ context.Context, text string) sanitize.Result {
	if text == "" {
		return sanitize.Unchanged(text)
	}
	return sanitize.Redact(text, s.Spans(text), s.keep)
}

// Spans classifies text into contiguous spans. Regions where the regex
// engine reports an error come back as Code, one chunk at a time.
func (s *Scanner) Spans(text string) []sanitize.Span {
	runes := []rune(text)
	offs := sanitize.ByteOffsets(text, len(runes))
	chunks := sanitize.ChunkBounds(runes, s.opts.ChunkLines)

	var spans []sanitize.Span
	pos := 0
	for pos < len(runes) {
		m, err := s.find(runes, pos)
		if err != nil {
			end := chunks.After(pos)
			slog.Debug("cstyle: leaving chunk unchanged",
				"err", fmt.Errorf("%w: %v", sanitize.ErrRegionMatch, err),
				"from", offs[pos], "to", offs[end])
			pos = end
			continue
		}
		if m == nil {
			break
		}
		start, end := m.Index, m.Index+m.Length
		if end <= start {
			pos = start + 1
			continue
		}
		r, ok := s.recognizerOf(m)
		if !ok {
			pos = end
			continue
		}
		sp := sanitize.Span{Start: offs[start], End: offs[end], Kind: r.Kind}
		if r.Wrapped {
			sp.MatchStart, sp.MatchEnd = unwrapBraces(text, sp.Start, sp.End)
		}
		spans = append(spans, sp)
		pos = end
	}
	return sanitize.Fill(len(text), spans)
}

func (s *Scanner) recognizerOf(m *regexp2.Match) (Recognizer, bool) {
	for _, r := range s.recognizers {
		if g := m.GroupByName(r.Name); g != nil && len(g.Captures) > 0 {
			return r, true
		}
	}
	return Recognizer{}, false
}

// unwrapBraces returns the bounds of a "{ comment }" span without the braces
// and the whitespace next to them.
func unwrapBraces(text string, start, end int) (int, int) {
	inner := text[start+1 : end-1]
	lead := len(inner) - len(strings.TrimLeft(inner, " \t\r\n\f\v"))
	trail := len(inner) - len(strings.TrimRight(inner, " \t\r\n\f\v"))
	ps, pe := start+1+lead, end-1-trail
	if ps > pe {
		ps = pe
	}
	return ps, pe
}
