// Package runner applies the engine to a list of files with bounded
// parallelism. Files are independent, so a failure on one is recorded in the
// report and never stops the others.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/gonkalabs/decomment/internal/engine"
	"github.com/gonkalabs/decomment/internal/report"
	"github.com/gonkalabs/decomment/internal/whitespace"
)

// Options controls one run.
type Options struct {
	DryRun     bool
	Whitespace whitespace.Options
	Workers    int
}

// Runner strips comments from files and records the outcomes.
type Runner struct {
	eng  *engine.Engine
	opts Options
	rep  *report.Report
}

// New creates a Runner.
func New(eng *engine.Engine, opts Options, rep *report.Report) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{eng: eng, opts: opts, rep: rep}
}

// Run processes files. It only returns an error when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, files []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if o, ok := r.File(gctx, path); ok {
				r.rep.Add(o)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// File processes one file. ok is false for files no profile supports.
func (r *Runner) File(ctx context.Context, path string) (report.Outcome, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return report.Outcome{Path: path, Error: err.Error()}, true
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return report.Outcome{Path: path, Error: err.Error()}, true
	}

	original := string(raw)
	res, err := r.eng.Strip(ctx, path, original)
	if errors.Is(err, engine.ErrUnsupported) {
		return report.Outcome{}, false
	}
	if err != nil {
		return report.Outcome{Path: path, Error: err.Error()}, true
	}

	out := whitespace.Apply(res.Text, r.opts.Whitespace)
	o := report.Outcome{Path: path, Profile: res.Profile, Changed: out != original}
	if !o.Changed || r.opts.DryRun {
		return o, true
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		slog.Warn("runner: write failed", "path", path, "err", err)
		o.Changed = false
		o.Error = fmt.Sprintf("write: %v", err)
	}
	return o, true
}
