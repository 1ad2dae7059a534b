// Package profile maps file names to language profiles: which comment
// syntax a language has, which literal forms must be protected, and which
// embedded sub-language blocks it carries.
package profile

import (
	"path/filepath"
	"sort"
	"strings"
)

// Engine selects the scanner family that handles a profile.
type Engine int

const (
	// EngineCStyle is the ordered-alternation scanner for C-like syntaxes.
	EngineCStyle Engine = iota
	// EngineNative uses an authoritative tokenizer for the language.
	EngineNative
	// EngineDelegate hands the text to an external tokenizer process.
	EngineDelegate
	// EngineMarkup slices the text into embedded regions first.
	EngineMarkup
)

func (e Engine) String() string {
	switch e {
	case EngineCStyle:
		return "cstyle"
	case EngineNative:
		return "native"
	case EngineDelegate:
		return "delegate"
	case EngineMarkup:
		return "markup"
	}
	return "unknown"
}

// Handler says what the dispatcher does with an embedded block.
type Handler int

const (
	// HandlerScript routes the inner text to the script scanner.
	HandlerScript Handler = iota
	// HandlerStyle routes the inner text to the stylesheet scanner.
	HandlerStyle
	// HandlerRaw leaves the whole block untouched.
	HandlerRaw
	// HandlerHostBlock routes the inner text to the host-language tokenizer.
	HandlerHostBlock
	// HandlerTemplateComment blanks the whole block unconditionally.
	HandlerTemplateComment
	// HandlerMarkupComment blanks the block unless it is a conditional comment
	// or matches a keep-directive.
	HandlerMarkupComment
)

func (h Handler) String() string {
	switch h {
	case HandlerScript:
		return "script"
	case HandlerStyle:
		return "style"
	case HandlerRaw:
		return "raw-verbatim"
	case HandlerHostBlock:
		return "host-language-block"
	case HandlerTemplateComment:
		return "template-comment"
	case HandlerMarkupComment:
		return "html-comment"
	}
	return "unknown"
}

// Block is one embedded-region rule. Open and Close are regular expression
// fragments; blocks without Close are matched by Open alone.
type Block struct {
	Open    string
	Close   string
	Handler Handler
}

// Profile describes the comment and literal syntax of one language.
type Profile struct {
	ID         string
	Extensions []string
	Engine     Engine

	LineComments  []string    // e.g. "//"
	BlockComments [][2]string // non-nesting open/close pairs
	StringDelims  []string

	RegexLiterals    bool
	TemplateLiterals bool
	JSXComments      bool
	HashComments     bool
	// LineCommentColonGuard disables "//" comments directly after ':'.
	LineCommentColonGuard bool

	// Blocks lists the embedded regions in dispatch priority order.
	Blocks []Block
}

// HasLineComments reports whether "//" line comments are recognised.
func (p *Profile) HasLineComments() bool {
	for _, m := range p.LineComments {
		if m == "//" {
			return true
		}
	}
	return false
}

// Set is an immutable extension -> profile table.
type Set struct {
	byExt    map[string]*Profile
	profiles []*Profile
	compound []string // multi-dot extensions, longest first
}

// NewSet builds a Set from profiles. Later profiles win on extension clashes.
func NewSet(profiles ...*Profile) *Set {
	s := &Set{byExt: make(map[string]*Profile)}
	for _, p := range profiles {
		s.profiles = append(s.profiles, p)
		for _, ext := range p.Extensions {
			ext = strings.ToLower(ext)
			s.byExt[ext] = p
			if strings.Count(ext, ".") > 1 {
				s.compound = append(s.compound, ext)
			}
		}
	}
	sort.Slice(s.compound, func(i, j int) bool { return len(s.compound[i]) > len(s.compound[j]) })
	return s
}

// Resolve returns the profile for name, matching compound extensions such as
// ".blade.php" before the trailing single extension.
func (s *Set) Resolve(name string) (*Profile, bool) {
	lower := strings.ToLower(filepath.Base(name))
	for _, ext := range s.compound {
		if strings.HasSuffix(lower, ext) {
			return s.byExt[ext], true
		}
	}
	ext := filepath.Ext(lower)
	if ext == "" {
		return nil, false
	}
	p, ok := s.byExt[ext]
	return p, ok
}

// Lookup returns the profile with the given ID.
func (s *Set) Lookup(id string) (*Profile, bool) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Profiles returns all profiles in registration order.
func (s *Set) Profiles() []*Profile {
	out := make([]*Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Extensions returns every registered extension, sorted.
func (s *Set) Extensions() []string {
	out := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
