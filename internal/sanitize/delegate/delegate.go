// Package delegate runs an external tokenizer in a subprocess. The process
// reads the source on stdin and writes a JSON array of [start, end] byte
// ranges, one per comment token, on stdout. Redaction stays on the Go side,
// so bytes outside comments are never rewritten and keep-directives are
// matched with the same regex engine everywhere.
package delegate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/gonkalabs/decomment/internal/sanitize"
)

// waitDelay bounds how long Wait keeps reading output after the process
// was killed by a cancelled context.
const waitDelay = time.Second

// Command is one external tokenizer invocation.
type Command struct {
	Path string
	Args []string
	// Timeout bounds one run; zero lets the process run until it exits.
	Timeout time.Duration
}

// Comments runs the command on text and returns its comment spans sorted by
// offset. A process that cannot start yields sanitize.ErrDelegateUnavailable.
// A non-zero exit or a malformed reply yields sanitize.ErrTokenization.
func (c Command) Comments(ctx context.Context, text string) ([]sanitize.Span, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", sanitize.ErrDelegateUnavailable, err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s exit %d: %s", sanitize.ErrTokenization,
				c.Path, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %s: %v", sanitize.ErrTokenization, c.Path, err)
	}

	var ranges [][2]int
	if err := json.Unmarshal(stdout.Bytes(), &ranges); err != nil {
		return nil, fmt.Errorf("%w: decode %s reply: %v", sanitize.ErrTokenization, c.Path, err)
	}
	return Spans(len(text), ranges)
}

// Spans turns byte ranges into sorted Comment spans. Ranges outside
// [0, n) or overlapping each other are rejected.
func Spans(n int, ranges [][2]int) ([]sanitize.Span, error) {
	spans := make([]sanitize.Span, 0, len(ranges))
	for _, r := range ranges {
		if r[0] < 0 || r[1] > n || r[0] >= r[1] {
			return nil, fmt.Errorf("%w: comment range %v outside [0,%d)", sanitize.ErrTokenization, r, n)
		}
		spans = append(spans, sanitize.Span{Start: r[0], End: r[1], Kind: sanitize.Comment})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			return nil, fmt.Errorf("%w: overlapping comment ranges at %d", sanitize.ErrTokenization, spans[i].Start)
		}
	}
	return spans, nil
}
