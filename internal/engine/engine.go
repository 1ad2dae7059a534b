// Package engine resolves a file name to its language profile and runs the
// matching scanner. An Engine is immutable once built and safe for
// concurrent use; every scanner it holds is stateless across calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/sanitize"
	"github.com/gonkalabs/decomment/internal/sanitize/cstyle"
	"github.com/gonkalabs/decomment/internal/sanitize/markup"
	"github.com/gonkalabs/decomment/internal/sanitize/phptoken"
	"github.com/gonkalabs/decomment/internal/sanitize/pytoken"
)

// ErrUnsupported is returned for file names no profile claims.
var ErrUnsupported = errors.New("unsupported file type")

// Options tunes the scanners.
type Options struct {
	Keep *sanitize.KeepSet

	// Python is the interpreter used by the Python delegate.
	Python string
	// PHP is the binary whose token_get_all handles PHP the grammar rejects.
	PHP string
	// DelegateTimeout bounds one delegate run; zero means no limit.
	DelegateTimeout time.Duration

	MatchTimeout time.Duration
	ChunkLines   int
}

// Result is the outcome of stripping one file.
type Result struct {
	sanitize.Result
	Profile string
}

// Engine maps profiles to ready-built scanners.
type Engine struct {
	profiles *profile.Set
	scanners map[string]sanitize.Scanner
	keep     *sanitize.KeepSet
}

// New builds a scanner for every profile in set.
func New(set *profile.Set, opts Options) (*Engine, error) {
	e := &Engine{
		profiles: set,
		scanners: make(map[string]sanitize.Scanner),
		keep:     opts.Keep,
	}
	for _, p := range set.Profiles() {
		s, err := newScanner(p, opts)
		if err != nil {
			return nil, fmt.Errorf("engine: profile %s: %w", p.ID, err)
		}
		e.scanners[p.ID] = s
	}
	return e, nil
}

func newScanner(p *profile.Profile, opts Options) (sanitize.Scanner, error) {
	switch p.Engine {
	case profile.EngineCStyle:
		o := cstyle.FromProfile(p)
		o.MatchTimeout, o.ChunkLines = opts.MatchTimeout, opts.ChunkLines
		return cstyle.New(o, opts.Keep)
	case profile.EngineNative:
		return phptoken.New(opts.Keep, phptoken.NewDelegate(opts.PHP, opts.DelegateTimeout)), nil
	case profile.EngineDelegate:
		return pytoken.New(opts.Python, opts.DelegateTimeout, opts.Keep), nil
	case profile.EngineMarkup:
		return markup.New(p, opts.Keep, markup.Options{
			MatchTimeout: opts.MatchTimeout,
			ChunkLines:   opts.ChunkLines,
			PHP:          phptoken.NewDelegate(opts.PHP, opts.DelegateTimeout),
		})
	}
	return nil, fmt.Errorf("unknown engine %v", p.Engine)
}

// Profiles returns the profile set the engine was built from.
func (e *Engine) Profiles() *profile.Set { return e.profiles }

// Keep returns the keep-directives every scanner honours.
func (e *Engine) Keep() *sanitize.KeepSet { return e.keep }

// Supported reports whether name resolves to a profile.
func (e *Engine) Supported(name string) bool {
	_, ok := e.profiles.Resolve(name)
	return ok
}

// Strip removes the comments of src, choosing the scanner from filename.
// Scanner failures never surface here: the text just comes back unchanged.
func (e *Engine) Strip(ctx context.Context, filename, src string) (Result, error) {
	p, ok := e.profiles.Resolve(filename)
	if !ok {
		return Result{Result: sanitize.Unchanged(src)}, fmt.Errorf("%s: %w", filename, ErrUnsupported)
	}
	return Result{Result: e.scanners[p.ID].Scan(ctx, src), Profile: p.ID}, nil
}
