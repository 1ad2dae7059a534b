package cstyle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recognizer(t *testing.T, opts Options, name string) Recognizer {
	t.Helper()
	for _, r := range Recognizers(opts) {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("recognizer %q not enabled", name)
	return Recognizer{}
}

// firstMatch returns the first match of r in s, or "" when there is none.
func firstMatch(t *testing.T, r Recognizer, s string) string {
	t.Helper()
	re, err := r.Compile()
	require.NoError(t, err)
	m, err := re.FindStringMatch(s)
	require.NoError(t, err)
	if m == nil {
		return ""
	}
	return m.String()
}

func TestRecognizers(t *testing.T) {
	all := Options{JSX: true, TemplateLiterals: true, RegexLiterals: true, LineComments: true, HashComments: true}
	guarded := Options{LineComments: true, ColonGuard: true}

	tests := []struct {
		name  string
		opts  Options
		recog string
		in    string
		want  string
	}{
		{"jsx after tag", all, "jsx", "<p>{ /* c */ }", "{ /* c */ }"},
		{"jsx not after identifier generic", all, "jsx", "List<T> {/* c */}", ""},
		{"jsx not in plain code", all, "jsx", "if (x) {/* c */}", ""},
		{"single with escape", all, "single", `x = 'a\'b' + 1`, `'a\'b'`},
		{"double with escape", all, "double", `x = "a\"b" + 1`, `"a\"b"`},
		{"template across lines", all, "template", "x = `a\nb`;", "`a\nb`"},
		{"url", all, "url", "background: url(http://a/b);", "url(http://a/b)"},
		{"regex after assignment", all, "regex", "x = /ab+c/gi;", " /ab+c/gi"},
		{"regex after keyword", all, "regex", "return /x/.test(s)", " /x/"},
		{"regex after typeof", all, "regex", "typeof /x/", " /x/"},
		{"regex after colon", all, "regex", "{k: /x/}", " /x/"},
		{"no regex after identifier", all, "regex", "a / b / c", ""},
		{"no regex from line comment", all, "regex", "x = // c", ""},
		{"no regex in returned identifier", all, "regex", "myreturn /x/", ""},
		{"block is lazy", all, "block", "/* a */ b /* c */", "/* a */"},
		{"line to end of line", all, "line", "a // b\nc", "// b"},
		{"hash", all, "hash", "a # b\nc", "# b"},
		{"guarded line after space", guarded, "line", "a: b; // c", "// c"},
		{"guarded line after colon", guarded, "line", "a://b", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstMatch(t, recognizer(t, tt.opts, tt.recog), tt.in))
		})
	}
}

func TestRecognizerOrder(t *testing.T) {
	names := func(opts Options) []string {
		var out []string
		for _, r := range Recognizers(opts) {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t,
		[]string{"jsx", "single", "double", "template", "url", "regex", "block", "line", "hash"},
		names(Options{JSX: true, TemplateLiterals: true, RegexLiterals: true, LineComments: true, HashComments: true}))
	assert.Equal(t, []string{"single", "double", "url", "block"}, names(StyleOptions()))
	assert.Equal(t,
		[]string{"single", "double", "template", "url", "regex", "block", "line"},
		names(ScriptOptions()))
}
