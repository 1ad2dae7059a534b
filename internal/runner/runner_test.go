package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/decomment/internal/engine"
	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/report"
	"github.com/gonkalabs/decomment/internal/whitespace"
)

func setup(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o640))
		paths = append(paths, p)
	}
	return dir, paths
}

func newRunner(t *testing.T, opts Options) (*Runner, *report.Report) {
	t.Helper()
	eng, err := engine.New(profile.Default(), engine.Options{Python: "/nonexistent/decomment-python"})
	require.NoError(t, err)
	rep, err := report.New(opts.DryRun, nil)
	require.NoError(t, err)
	return New(eng, opts, rep), rep
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRunWritesChangedFiles(t *testing.T) {
	dir, paths := setup(t, map[string]string{
		"a.js":     "x(); // c\n\n\n\n\ny();",
		"b.css":    "a { color: red; }\n",
		"notes.md": "<!-- not processed -->\n",
	})
	r, rep := newRunner(t, Options{Whitespace: whitespace.Options{MaxBlankLines: 2}, Workers: 4})

	require.NoError(t, r.Run(context.Background(), paths))

	assert.Equal(t, "x();\n\n\ny();\n", read(t, filepath.Join(dir, "a.js")))
	assert.Equal(t, "a { color: red; }\n", read(t, filepath.Join(dir, "b.css")))
	assert.Equal(t, "<!-- not processed -->\n", read(t, filepath.Join(dir, "notes.md")))

	assert.Equal(t, 1, rep.Changed)
	assert.Len(t, rep.Files, 2)
}

func TestRunDryRunLeavesFiles(t *testing.T) {
	dir, paths := setup(t, map[string]string{"a.ts": "let a = 1; /* c */\n"})
	r, rep := newRunner(t, Options{DryRun: true})

	require.NoError(t, r.Run(context.Background(), paths))
	assert.Equal(t, "let a = 1; /* c */\n", read(t, filepath.Join(dir, "a.ts")))
	assert.Equal(t, 1, rep.Changed)
	require.Len(t, rep.Files, 1)
	assert.True(t, rep.Files[0].Changed)
}

func TestFileKeepsPermissions(t *testing.T) {
	_, paths := setup(t, map[string]string{"run.py": "#!/usr/bin/env python3\nprint(1)  # c\n"})
	require.NoError(t, os.Chmod(paths[0], 0o751))
	r, _ := newRunner(t, Options{Whitespace: whitespace.Options{Off: true}})

	o, ok := r.File(context.Background(), paths[0])
	require.True(t, ok)
	assert.True(t, o.Changed)
	assert.Equal(t, "python", o.Profile)
	assert.Equal(t, "#!/usr/bin/env python3\nprint(1)\n", read(t, paths[0]))

	info, err := os.Stat(paths[0])
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o751), info.Mode().Perm())
}

func TestFileErrors(t *testing.T) {
	r, _ := newRunner(t, Options{})

	o, ok := r.File(context.Background(), filepath.Join(t.TempDir(), "missing.js"))
	require.True(t, ok)
	assert.NotEmpty(t, o.Error)
	assert.False(t, o.Changed)

	_, ok = r.File(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, ok, "stat fails before the profile is resolved")
}

func TestRunCancelled(t *testing.T) {
	_, paths := setup(t, map[string]string{"a.js": "// c\n"})
	r, rep := newRunner(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx, paths), context.Canceled)
	assert.Empty(t, rep.Files)
}
