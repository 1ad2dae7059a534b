package sanitize

import "context"

// Kind tags the lexical class of a span.
type Kind int

const (
	Code Kind = iota
	StringLiteral
	TemplateLiteral
	RegexLiteral
	ProtectedConstruct
	Comment
)

var kindNames = [...]string{
	Code:               "code",
	StringLiteral:      "string",
	TemplateLiteral:    "template",
	RegexLiteral:       "regex",
	ProtectedConstruct: "protected",
	Comment:            "comment",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Span describes a classified substring of a text.
type Span struct {
	Start int  // byte offset of the first character
	End   int  // byte offset one past the last character
	Kind  Kind // lexical class

	// MatchStart and MatchEnd bound the text tested against keep-directives.
	// Both zero means the whole span. Bracketed JSX comments use this to
	// exclude the surrounding braces.
	MatchStart int
	MatchEnd   int
}

// MatchText returns the part of text that keep-directives are matched against.
func (s Span) MatchText(text string) string {
	if s.MatchStart == 0 && s.MatchEnd == 0 {
		return text[s.Start:s.End]
	}
	return text[s.MatchStart:s.MatchEnd]
}

// Result is the outcome of scanning one text or region.
type Result struct {
	Text    string
	Changed bool
}

// Unchanged returns a Result that passes text through.
func Unchanged(text string) Result {
	return Result{Text: text}
}

// ResultOf compares the transformed text against the original.
func ResultOf(original, transformed string) Result {
	return Result{Text: transformed, Changed: transformed != original}
}

// Scanner rewrites one text, blanking the comments it recognises.
// Implementations hold no per-call state and are safe for concurrent use.
// A Scanner never fails: on any internal error it returns the input unchanged.
type Scanner interface {
	Scan(ctx context.Context, text string) Result
}

// ScannerFunc adapts a plain function to the Scanner interface.
type ScannerFunc func(ctx context.Context, text string) Result

func (f ScannerFunc) Scan(ctx context.Context, text string) Result { return f(ctx, text) }
