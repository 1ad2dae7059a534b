package profile

// Block open/close fragments are compiled case-insensitively with '.'
// matching newlines.
var (
	scriptBlock = Block{Open: `<script\b[^>]*>`, Close: `</script\s*>`, Handler: HandlerScript}
	styleBlock  = Block{Open: `<style\b[^>]*>`, Close: `</style\s*>`, Handler: HandlerStyle}
	htmlComment = Block{Open: `<!--[\s\S]*?-->`, Handler: HandlerMarkupComment}

	bladeVerbatim = Block{Open: `@verbatim\b`, Close: `@endverbatim\b`, Handler: HandlerRaw}
	// The inline @php(...) directive has no closing tag and is not a block.
	bladePHP     = Block{Open: `@php\b(?!\s*\()`, Close: `@endphp\b`, Handler: HandlerHostBlock}
	bladeComment = Block{Open: `\{\{--[\s\S]*?--\}\}`, Handler: HandlerTemplateComment}

	jinjaRaw     = Block{Open: `\{%-?\s*raw\s*-?%\}`, Close: `\{%-?\s*endraw\s*-?%\}`, Handler: HandlerRaw}
	twigVerbatim = Block{Open: `\{%-?\s*verbatim\s*-?%\}`, Close: `\{%-?\s*endverbatim\s*-?%\}`, Handler: HandlerRaw}
	hashComment  = Block{Open: `\{#[\s\S]*?#\}`, Handler: HandlerTemplateComment}
)

var cQuotes = []string{`'`, `"`}

// Default returns the built-in profile set.
func Default() *Set {
	return NewSet(
		&Profile{
			ID:            "php",
			Extensions:    []string{".php"},
			Engine:        EngineNative,
			LineComments:  []string{"//", "#"},
			BlockComments: [][2]string{{"/*", "*/"}},
			StringDelims:  cQuotes,
			HashComments:  true,
		},
		&Profile{
			ID:         "blade",
			Extensions: []string{".blade.php"},
			Engine:     EngineMarkup,
			Blocks:     []Block{scriptBlock, styleBlock, bladeVerbatim, bladePHP, bladeComment, htmlComment},
		},
		&Profile{
			ID:               "javascript",
			Extensions:       []string{".js", ".mjs", ".cjs"},
			Engine:           EngineCStyle,
			LineComments:     []string{"//"},
			BlockComments:    [][2]string{{"/*", "*/"}},
			StringDelims:     cQuotes,
			RegexLiterals:    true,
			TemplateLiterals: true,
		},
		&Profile{
			ID:               "jsx",
			Extensions:       []string{".jsx"},
			Engine:           EngineCStyle,
			LineComments:     []string{"//"},
			BlockComments:    [][2]string{{"/*", "*/"}},
			StringDelims:     cQuotes,
			RegexLiterals:    true,
			TemplateLiterals: true,
			JSXComments:      true,
		},
		&Profile{
			ID:               "typescript",
			Extensions:       []string{".ts", ".mts", ".cts"},
			Engine:           EngineCStyle,
			LineComments:     []string{"//"},
			BlockComments:    [][2]string{{"/*", "*/"}},
			StringDelims:     cQuotes,
			RegexLiterals:    true,
			TemplateLiterals: true,
		},
		&Profile{
			ID:               "tsx",
			Extensions:       []string{".tsx"},
			Engine:           EngineCStyle,
			LineComments:     []string{"//"},
			BlockComments:    [][2]string{{"/*", "*/"}},
			StringDelims:     cQuotes,
			RegexLiterals:    true,
			TemplateLiterals: true,
			JSXComments:      true,
		},
		&Profile{
			ID:            "css",
			Extensions:    []string{".css"},
			Engine:        EngineCStyle,
			BlockComments: [][2]string{{"/*", "*/"}},
			StringDelims:  cQuotes,
		},
		&Profile{
			ID:                    "scss",
			Extensions:            []string{".scss"},
			Engine:                EngineCStyle,
			LineComments:          []string{"//"},
			BlockComments:         [][2]string{{"/*", "*/"}},
			StringDelims:          cQuotes,
			LineCommentColonGuard: true,
		},
		&Profile{
			ID:           "python",
			Extensions:   []string{".py"},
			Engine:       EngineDelegate,
			LineComments: []string{"#"},
			StringDelims: []string{`'`, `"`, `'''`, `"""`},
			HashComments: true,
		},
		&Profile{
			ID:         "html",
			Extensions: []string{".html", ".htm"},
			Engine:     EngineMarkup,
			Blocks:     []Block{scriptBlock, styleBlock, htmlComment},
		},
		&Profile{
			ID:         "jinja",
			Extensions: []string{".jinja", ".jinja2", ".j2"},
			Engine:     EngineMarkup,
			Blocks:     []Block{scriptBlock, styleBlock, jinjaRaw, hashComment, htmlComment},
		},
		&Profile{
			ID:         "twig",
			Extensions: []string{".twig"},
			Engine:     EngineMarkup,
			Blocks:     []Block{scriptBlock, styleBlock, twigVerbatim, hashComment, htmlComment},
		},
	)
}
