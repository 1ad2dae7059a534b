package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/sanitize"
)

func newEngine(t *testing.T, keep ...string) *Engine {
	t.Helper()
	e, err := New(profile.Default(), Options{
		Keep:   sanitize.MustCompileKeep(keep...),
		Python: "/nonexistent/decomment-python",
	})
	require.NoError(t, err)
	return e
}

func TestStripRoutesByFileName(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		file    string
		src     string
		profile string
		gone    string
		kept    string
	}{
		{"a.js", "x = 1; // js\n", "javascript", "// js", "x = 1;"},
		{"a.tsx", "<a>{/* jsx */}</a>\n", "tsx", "/* jsx */", "<a>"},
		{"a.css", "a{} /* css */ // not\n", "css", "/* css */", "// not"},
		{"a.scss", "a{} // scss\n", "scss", "// scss", "a{}"},
		{"a.php", "<?php\n$a = 1; # php\n", "php", "# php", "$a = 1;"},
		{"a.py", "x = 1  # py\n", "python", "# py", "x = 1"},
		{"a.html", "<!-- html --><p>x</p>\n", "html", "<!-- html -->", "<p>x</p>"},
		{"a.blade.php", "{{-- blade --}}{{ $x }}\n", "blade", "{{-- blade --}}", "{{ $x }}"},
		{"a.j2", "{# jinja #}{{ x }}\n", "jinja", "{# jinja #}", "{{ x }}"},
		{"a.twig", "{# twig #}{{ x }}\n", "twig", "{# twig #}", "{{ x }}"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			res, err := e.Strip(context.Background(), tt.file, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.profile, res.Profile)
			assert.True(t, res.Changed)
			assert.NotContains(t, res.Text, tt.gone)
			assert.Contains(t, res.Text, tt.kept)
		})
	}
}

func TestStripUnsupported(t *testing.T) {
	e := newEngine(t)
	res, err := e.Strip(context.Background(), "notes.txt", "# keep me")
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, "# keep me", res.Text)
	assert.False(t, res.Changed)
	assert.False(t, e.Supported("notes.txt"))
	assert.True(t, e.Supported("dir/page.htm"))
}

func TestStripKeepDirectives(t *testing.T) {
	e := newEngine(t, `eslint-`, `@license`)
	assert.Equal(t, 2, e.Keep().Len())

	src := "/*! @license MIT */\n// eslint-disable-next-line\nf(); // drop\n"
	res, err := e.Strip(context.Background(), "a.ts", src)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "@license MIT")
	assert.Contains(t, res.Text, "eslint-disable-next-line")
	assert.NotContains(t, res.Text, "drop")
}

func TestStripIdempotent(t *testing.T) {
	e := newEngine(t)
	srcs := map[string]string{
		"a.js":        "const re = /\\/\\*/; // c\nconst t = `// t`;\n",
		"a.php":       "<?php\n/** d */\necho '# s'; // c\n",
		"a.py":        "s = '# s'  # c\n",
		"a.blade.php": "@verbatim {{-- v --}} @endverbatim\n{{-- c --}}\n<script>// s\n</script>\n",
	}
	for name, src := range srcs {
		t.Run(name, func(t *testing.T) {
			once, err := e.Strip(context.Background(), name, src)
			require.NoError(t, err)
			twice, err := e.Strip(context.Background(), name, once.Text)
			require.NoError(t, err)
			assert.True(t, once.Changed)
			assert.False(t, twice.Changed)
			assert.Equal(t, once.Text, twice.Text)
		})
	}
}

func TestStripPreservesLineCount(t *testing.T) {
	e := newEngine(t)
	src := strings.Repeat("/* a\n b */ x(); // c\n", 50)
	res, err := e.Strip(context.Background(), "big.js", src)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(src, "\n"), strings.Count(res.Text, "\n"))
	assert.Equal(t, len(src), len(res.Text))
	assert.NotContains(t, res.Text, "/*")
	assert.NotContains(t, res.Text, "//")
}

func TestProfiles(t *testing.T) {
	set := profile.Default()
	e, err := New(set, Options{})
	require.NoError(t, err)
	assert.Same(t, set, e.Profiles())
	assert.Zero(t, e.Keep().Len())
}
