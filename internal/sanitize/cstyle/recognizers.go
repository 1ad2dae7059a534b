package cstyle

import (
	"github.com/dlclark/regexp2"

	"github.com/gonkalabs/decomment/internal/sanitize"
)

// Recognizer is one alternative of the scanner's ordered alternation.
// At every position the first recognizer that matches wins.
type Recognizer struct {
	Name    string
	Kind    sanitize.Kind
	Pattern string
	// Wrapped marks the JSX form: the braces belong to the comment but are
	// excluded from the keep-directive match.
	Wrapped bool
}

// Compile builds a standalone regexp for this recognizer alone.
func (r Recognizer) Compile() (*regexp2.Regexp, error) {
	return regexp2.Compile(r.Pattern, regexp2.Multiline)
}

const (
	// A JSX expression container holding only a comment. The brace must follow
	// the '>' of a markup tag; a '>' closing a type argument list (Promise<T> {)
	// does not count because its '<' is glued to an identifier.
	jsxCommentPattern = `(?<=(?<![\w$.])<[A-Za-z][^<>]*>\s*|</[\w.:-]*>\s*|/>\s*)` +
		`\{\s*(?:/\*[\s\S]*?\*/|//[^\n]*)\s*\}`

	singleQuotedPattern = `'(?:\\.|[^'\\])*'`
	doubleQuotedPattern = `"(?:\\.|[^"\\])*"`
	templatePattern     = "`(?:\\\\.|[^`\\\\])*`"
	urlPattern          = `url\([^)]+\)`

	// '/' opens a regex literal only after an operator, a ':' or one of the
	// keywords return and typeof.
	regexLiteralPattern = `(?:(?<=[=(,;:!&|?~^])|(?<=\breturn)|(?<=\btypeof))` +
		`\s*/(?![/*])(?:\\.|[^/\\\n])+/[gimsuyd]*`

	blockCommentPattern       = `/\*[\s\S]*?\*/`
	lineCommentPattern        = `//.*$`
	guardedLineCommentPattern = `(?<!:)//.*$`
	hashCommentPattern        = `\#.*$`
)

// Recognizers returns the ordered recognizer list enabled by opts.
func Recognizers(opts Options) []Recognizer {
	var rs []Recognizer
	if opts.JSX {
		rs = append(rs, Recognizer{Name: "jsx", Kind: sanitize.Comment, Pattern: jsxCommentPattern, Wrapped: true})
	}
	rs = append(rs,
		Recognizer{Name: "single", Kind: sanitize.StringLiteral, Pattern: singleQuotedPattern},
		Recognizer{Name: "double", Kind: sanitize.StringLiteral, Pattern: doubleQuotedPattern},
	)
	if opts.TemplateLiterals {
		rs = append(rs, Recognizer{Name: "template", Kind: sanitize.TemplateLiteral, Pattern: templatePattern})
	}
	rs = append(rs, Recognizer{Name: "url", Kind: sanitize.ProtectedConstruct, Pattern: urlPattern})
	if opts.RegexLiterals {
		rs = append(rs, Recognizer{Name: "regex", Kind: sanitize.RegexLiteral, Pattern: regexLiteralPattern})
	}
	rs = append(rs, Recognizer{Name: "block", Kind: sanitize.Comment, Pattern: blockCommentPattern})
	if opts.LineComments {
		p := lineCommentPattern
		if opts.ColonGuard {
			p = guardedLineCommentPattern
		}
		rs = append(rs, Recognizer{Name: "line", Kind: sanitize.Comment, Pattern: p})
	}
	if opts.HashComments {
		rs = append(rs, Recognizer{Name: "hash", Kind: sanitize.Comment, Pattern: hashCommentPattern})
	}
	return rs
}
