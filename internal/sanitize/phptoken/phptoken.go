// Package phptoken blanks PHP comments using the tree-sitter PHP grammar as
// the authoritative tokenizer. Strings, heredocs and nowdocs are delimited by
// the grammar itself, so comment markers inside them are never touched.
//
// The grammar lags behind the language, so a tree with errors is handed to
// PHP's own token_get_all before the text is given up on. If that cannot run
// or rejects the source too, the text is returned unchanged.
package phptoken

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/gonkalabs/decomment/internal/sanitize"
)

const parseTimeout = 10 * time.Second

// openTag is prepended to fragments that start in PHP mode (the body of a
// Blade @php block). It sits on the first line so line numbers are unchanged.
const openTag = "<?php "

// Tokenizer reports the comment spans of complete PHP source.
type Tokenizer interface {
	Comments(ctx context.Context, src string) ([]sanitize.Span, error)
}

// Scanner blanks comment tokens of PHP source.
type Scanner struct {
	keep *sanitize.KeepSet
	// fragment means the text is bare PHP code without an opening tag.
	fragment bool
	// fallback handles sources the grammar rejects; may be nil.
	fallback Tokenizer
}

// New returns a Scanner for complete PHP files.
func New(keep *sanitize.KeepSet, fallback Tokenizer) *Scanner {
	return &Scanner{keep: keep, fallback: fallback}
}

// NewFragment returns a Scanner for PHP code that has no opening tag.
func NewFragment(keep *sanitize.KeepSet, fallback Tokenizer) *Scanner {
	return &Scanner{keep: keep, fragment: true, fallback: fallback}
}

// Scan implements sanitize.Scanner.
func (s *Scanner) Scan(ctx context.Context, text string) sanitize.Result {
	if text == "" {
		return sanitize.Unchanged(text)
	}
	spans, err := s.Spans(ctx, text)
	if err != nil {
		slog.Debug("phptoken: leaving text unchanged", "err", err)
		return sanitize.Unchanged(text)
	}
	return sanitize.Redact(text, spans, s.keep)
}

// Spans tokenizes text and returns Comment spans for every comment and
// doc-comment token, with Code spans in between.
func (s *Scanner) Spans(ctx context.Context, text string) ([]sanitize.Span, error) {
	src := text
	shift := 0
	if s.fragment {
		src = openTag + text
		shift = len(openTag)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(php.GetLanguage())

	pctx, cancel := context.WithTimeout(ctx, parseTimeout)
	defer cancel()

	tree, err := parser.ParseCtx(pctx, nil, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sanitize.ErrTokenization, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if s.fallback == nil {
			return nil, fmt.Errorf("%w: syntax error in php source", sanitize.ErrTokenization)
		}
		found, err := s.fallback.Comments(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("phptoken: grammar rejected source, fallback failed: %w", err)
		}
		return shifted(found, shift, len(text)), nil
	}

	var spans []sanitize.Span
	visitNodes(root, func(n *sitter.Node) {
		if n.Type() != "comment" {
			return
		}
		spans = append(spans, sanitize.Span{Start: int(n.StartByte()), End: int(n.EndByte()), Kind: sanitize.Comment})
	})
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return shifted(dedupe(spans), shift, len(text)), nil
}

// shifted moves spans of the parsed source back by shift bytes, drops those
// outside [0, n) and fills the gaps with Code.
func shifted(spans []sanitize.Span, shift, n int) []sanitize.Span {
	out := make([]sanitize.Span, 0, len(spans))
	for _, sp := range spans {
		start, end := sp.Start-shift, sp.End-shift
		if start < 0 || end > n || start >= end {
			continue
		}
		out = append(out, sanitize.Span{Start: start, End: end, Kind: sanitize.Comment})
	}
	return sanitize.Fill(n, out)
}

func visitNodes(n *sitter.Node, f func(node *sitter.Node)) {
	f(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		visitNodes(n.Child(i), f)
	}
}

// dedupe drops spans that overlap an earlier one (sorted ascending).
func dedupe(spans []sanitize.Span) []sanitize.Span {
	out := spans[:0]
	end := -1
	for _, sp := range spans {
		if sp.Start < end {
			continue
		}
		out = append(out, sp)
		end = sp.End
	}
	return out
}
