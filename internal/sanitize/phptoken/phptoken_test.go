package phptoken

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/decomment/internal/sanitize"
)

func blankOut(s string, comments ...string) string {
	pos := 0
	for _, c := range comments {
		i := strings.Index(s[pos:], c) + pos
		s = s[:i] + sanitize.Blank(c) + s[i+len(c):]
		pos = i + len(c)
	}
	return s
}

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		keep []string
		in   string
		want string
	}{
		{
			name: "line hash and block comments",
			in:   "<?php\n// one\n$a = 'x // y'; # two\n/* three\n   lines */\necho \"#no\";\n",
			want: blankOut("<?php\n// one\n$a = 'x // y'; # two\n/* three\n   lines */\necho \"#no\";\n",
				"// one", "# two", "/* three\n   lines */"),
		},
		{
			name: "doc comment",
			in:   "<?php\n/**\n * Doc.\n */\nfunction f() {}\n",
			want: blankOut("<?php\n/**\n * Doc.\n */\nfunction f() {}\n", "/**\n * Doc.\n */"),
		},
		{
			name: "heredoc and nowdoc bodies",
			in:   "<?php\n$h = <<<EOT\n// not a comment\nEOT;\n$n = <<<'EOT'\n/* nor this */\nEOT;\n",
			want: "<?php\n$h = <<<EOT\n// not a comment\nEOT;\n$n = <<<'EOT'\n/* nor this */\nEOT;\n",
		},
		{
			name: "keep directive",
			keep: []string{`@phpstan-ignore`},
			in:   "<?php\n$a = f(); // @phpstan-ignore-line\n$b = 2; // drop\n",
			want: blankOut("<?php\n$a = f(); // @phpstan-ignore-line\n$b = 2; // drop\n", "// drop"),
		},
		{
			name: "syntax error leaves text unchanged",
			in:   "<?php\nfunction ( { // c\n",
			want: "<?php\nfunction ( { // c\n",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(sanitize.MustCompileKeep(tt.keep...), nil)
			res := s.Scan(context.Background(), tt.in)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, len(tt.in), len(res.Text))
		})
	}
}

func TestScanFragment(t *testing.T) {
	in := "\n    $x = 1; // set x\n    /* block */\n"
	res := NewFragment(nil, nil).Scan(context.Background(), in)
	assert.Equal(t, blankOut(in, "// set x", "/* block */"), res.Text)
	assert.True(t, res.Changed)
}

func TestSpansReportsTokenization(t *testing.T) {
	_, err := New(nil, nil).Spans(context.Background(), "<?php\nclass {")
	require.Error(t, err)
	assert.ErrorIs(t, err, sanitize.ErrTokenization)
}

func TestScanIdempotent(t *testing.T) {
	in := "<?php\n// a\n$s = \"/* b */\"; /* c */\n"
	s := New(nil, nil)
	once := s.Scan(context.Background(), in)
	twice := s.Scan(context.Background(), once.Text)
	assert.False(t, twice.Changed)
	assert.Equal(t, once.Text, twice.Text)
}

// stubTokenizer reports fixed comment ranges for whatever it is given.
type stubTokenizer struct {
	ranges [][2]int
	err    error
	got    string
}

func (s *stubTokenizer) Comments(_ context.Context, src string) ([]sanitize.Span, error) {
	s.got = src
	if s.err != nil {
		return nil, s.err
	}
	var spans []sanitize.Span
	for _, r := range s.ranges {
		spans = append(spans, sanitize.Span{Start: r[0], End: r[1], Kind: sanitize.Comment})
	}
	return spans, nil
}

// propertyHook is valid PHP 8.4 the grammar does not parse.
const propertyHook = "<?php\n// c1\nclass A { public string $n { get => 'x'; } }\n"

func TestScanFallsBackWhenGrammarRejects(t *testing.T) {
	tok := &stubTokenizer{ranges: [][2]int{{6, 11}}}
	res := New(nil, tok).Scan(context.Background(), propertyHook)

	assert.Equal(t, propertyHook, tok.got)
	assert.Equal(t, blankOut(propertyHook, "// c1"), res.Text)
	assert.True(t, res.Changed)
}

func TestScanFallbackFailureLeavesText(t *testing.T) {
	for _, err := range []error{sanitize.ErrTokenization, sanitize.ErrDelegateUnavailable} {
		t.Run(err.Error(), func(t *testing.T) {
			tok := &stubTokenizer{err: err}
			in := "<?php\n$x = ; // c\n"
			res := New(nil, tok).Scan(context.Background(), in)
			assert.Equal(t, in, res.Text)
			assert.False(t, res.Changed)

			_, spanErr := New(nil, tok).Spans(context.Background(), in)
			assert.True(t, errors.Is(spanErr, err))
		})
	}
}

func TestScanFallbackNotUsedForValidSource(t *testing.T) {
	tok := &stubTokenizer{err: errors.New("must not run")}
	in := "<?php\n$x = 1; // c\n"
	res := New(nil, tok).Scan(context.Background(), in)
	assert.Equal(t, blankOut(in, "// c"), res.Text)
	assert.Empty(t, tok.got)
}

func TestFragmentFallbackShiftsOffsets(t *testing.T) {
	in := "\n    class A { public string $n { get => 'x'; } } // c\n"
	src := openTag + in
	i := strings.Index(src, "// c")
	tok := &stubTokenizer{ranges: [][2]int{{i, i + 4}}}

	res := NewFragment(nil, tok).Scan(context.Background(), in)
	assert.Equal(t, src, tok.got)
	assert.Equal(t, blankOut(in, "// c"), res.Text)
}

func TestDelegate(t *testing.T) {
	php, err := exec.LookPath("php")
	if err != nil {
		t.Skip("php not available")
	}
	tok := NewDelegate(php, 0)

	spans, err := tok.Comments(context.Background(), propertyHook)
	if err != nil {
		t.Skipf("php cannot parse property hooks: %v", err)
	}
	require.Len(t, spans, 1)
	assert.Equal(t, "// c1", strings.TrimRight(propertyHook[spans[0].Start:spans[0].End], "\n"))

	_, err = tok.Comments(context.Background(), "<?php\n$x = ;\n")
	assert.ErrorIs(t, err, sanitize.ErrTokenization)

	res := New(nil, tok).Scan(context.Background(), "<?php\n$x = ; // c\n")
	assert.False(t, res.Changed)
}
