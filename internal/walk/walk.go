// Package walk lists the files a run should process, applying the exclusion
// globs and regexes to each path relative to the target.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dlclark/regexp2"
	"github.com/hashicorp/go-multierror"
)

// ErrInvalidTarget is returned when the target is neither a file nor a
// directory.
var ErrInvalidTarget = errors.New("invalid target")

// Matcher decides whether a relative, slash-separated path is excluded.
type Matcher struct {
	globs   []string
	regexes []*regexp2.Regexp
}

// NewMatcher validates every glob and compiles every regex, reporting all
// bad patterns together.
func NewMatcher(globs, regexes []string) (*Matcher, error) {
	m := &Matcher{}
	var errs *multierror.Error
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			errs = multierror.Append(errs, fmt.Errorf("invalid exclude glob %q", g))
			continue
		}
		m.globs = append(m.globs, g)
	}
	for _, p := range regexes {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid exclude regex %q: %w", p, err))
			continue
		}
		m.regexes = append(m.regexes, re)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return m, nil
}

// Excluded reports whether rel matches any glob or regex. A glob starting
// with "**/" is also tried without that prefix.
func (m *Matcher) Excluded(rel string) bool {
	for _, g := range m.globs {
		if match(g, rel) {
			return true
		}
		if rest, ok := strings.CutPrefix(g, "**/"); ok && match(rest, rel) {
			return true
		}
	}
	for _, re := range m.regexes {
		if ok, err := re.MatchString(rel); err == nil && ok {
			return true
		}
	}
	return false
}

// prune reports whether the directory rel is covered by a "dir/**" glob, so
// nothing below it can be included.
func (m *Matcher) prune(rel string) bool {
	for _, g := range m.globs {
		dir, ok := strings.CutSuffix(g, "/**")
		if !ok {
			continue
		}
		if match(dir, rel) {
			return true
		}
		if rest, ok := strings.CutPrefix(dir, "**/"); ok && match(rest, rel) {
			return true
		}
	}
	return false
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// Files returns the files under target that supported accepts and the
// matcher does not exclude, in lexical order. A file target is checked by
// its base name.
func Files(ctx context.Context, target string, m *Matcher, supported func(name string) bool) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTarget, target, err)
	}

	if info.Mode().IsRegular() {
		if !supported(target) || m.Excluded(filepath.Base(target)) {
			return nil, nil
		}
		return []string{target}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walk: skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == target {
			return nil
		}
		rel, err := filepath.Rel(target, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if m.prune(rel) {
				slog.Debug("walk: pruned directory", "dir", rel)
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !supported(path) || m.Excluded(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", target, err)
	}
	return files, nil
}
