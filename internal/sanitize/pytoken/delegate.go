// Package pytoken strips Python comments. The primary strategy runs the
// interpreter's own tokenize module out of process; when that cannot start
// or rejects the source, a local line scanner takes over.
package pytoken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gonkalabs/decomment/internal/sanitize"
	"github.com/gonkalabs/decomment/internal/sanitize/delegate"
)

// delegateScript reads source on stdin and prints the byte range of every
// COMMENT token as a JSON array of [start, end] pairs. A tokenize error
// exits 1.
const delegateScript = `import io, json, sys, tokenize
text = sys.stdin.buffer.read().decode("utf-8", "surrogateescape")
lines = io.StringIO(text).readlines()
starts = [0]
for line in lines:
    starts.append(starts[-1] + len(line.encode("utf-8", "surrogateescape")))
def offset(row, col):
    line = lines[row - 1] if row <= len(lines) else ""
    return starts[row - 1] + len(line[:col].encode("utf-8", "surrogateescape"))
out = []
try:
    for tok in tokenize.generate_tokens(io.StringIO(text).readline):
        if tok.type == tokenize.COMMENT:
            out.append([offset(*tok.start), offset(*tok.end)])
except (tokenize.TokenError, IndentationError, SyntaxError) as e:
    sys.stderr.write("tokenize failed: %s\n" % e)
    sys.exit(1)
json.dump(out, sys.stdout)
`

// Stripper is one strategy for removing Python comments.
type Stripper interface {
	Strip(ctx context.Context, text string) (string, error)
}

// Delegate runs the Python interpreter's tokenizer in a subprocess and
// blanks the comments it reports.
type Delegate struct {
	cmd  delegate.Command
	keep *sanitize.KeepSet
}

// NewDelegate creates a Delegate that runs python (e.g. "python3").
// A zero timeout lets the subprocess run until it exits.
func NewDelegate(python string, timeout time.Duration, keep *sanitize.KeepSet) *Delegate {
	if python == "" {
		python = "python3"
	}
	return &Delegate{
		cmd:  delegate.Command{Path: python, Args: []string{"-c", delegateScript}, Timeout: timeout},
		keep: keep,
	}
}

// Strip blanks every comment the interpreter reports, except the header
// lines and comments matching a keep-directive. A process that cannot start
// yields sanitize.ErrDelegateUnavailable; a tokenize failure yields
// sanitize.ErrTokenization.
func (d *Delegate) Strip(ctx context.Context, text string) (string, error) {
	spans, err := d.cmd.Comments(ctx, text)
	if err != nil {
		return "", fmt.Errorf("pytoken: %w", err)
	}
	kept := spans[:0]
	for _, sp := range spans {
		if !header(strings.Count(text[:sp.Start], "\n"), text[sp.Start:sp.End]) {
			kept = append(kept, sp)
		}
	}
	return sanitize.Redact(text, sanitize.Fill(len(text), kept), d.keep).Text, nil
}

// Scanner tries the primary strategy and falls back when it fails.
type Scanner struct {
	primary  Stripper
	fallback Stripper
}

// New returns a Scanner that delegates to python and falls back to the
// local line scanner.
func New(python string, timeout time.Duration, keep *sanitize.KeepSet) *Scanner {
	return NewWithStrategies(NewDelegate(python, timeout, keep), NewLineScanner(keep))
}

// NewWithStrategies builds a Scanner from explicit strategies.
func NewWithStrategies(primary, fallback Stripper) *Scanner {
	return &Scanner{primary: primary, fallback: fallback}
}

// Scan implements sanitize.Scanner.
func (s *Scanner) Scan(ctx context.Context, text string) sanitize.Result {
	if text == "" {
		return sanitize.Unchanged(text)
	}
	out, err := s.primary.Strip(ctx, text)
	if err == nil {
		return sanitize.ResultOf(text, out)
	}
	if errors.Is(err, sanitize.ErrDelegateUnavailable) {
		slog.Debug("pytoken: delegate unavailable, using line scanner", "err", err)
	} else {
		slog.Debug("pytoken: delegate failed, using line scanner", "err", err)
	}

	out, err = s.fallback.Strip(ctx, text)
	if err != nil {
		slog.Warn("pytoken: fallback failed, leaving text unchanged", "err", err)
		return sanitize.Unchanged(text)
	}
	return sanitize.ResultOf(text, out)
}
