// Package markup strips comments from HTML and template files by slicing
// them into embedded regions (script and style bodies, raw blocks, host
// language blocks, template and markup comments) and routing each region to
// the scanner that understands it. Text outside every region is copied as is.
package markup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/gonkalabs/decomment/internal/profile"
	"github.com/gonkalabs/decomment/internal/sanitize"
	"github.com/gonkalabs/decomment/internal/sanitize/cstyle"
	"github.com/gonkalabs/decomment/internal/sanitize/phptoken"
)

// conditionalComment matches the legacy IE conditional forms, including the
// downlevel-revealed "<!--[if !IE]><!-->" and "<!--<![endif]-->".
var conditionalComment = regexp2.MustCompile(`^<!--\s*(?:\[if\b|<!\[endif\])`, regexp2.IgnoreCase)

// Region is one slice of the input routed to a handler. Open and Close hold
// the delimiters of paired blocks; Inner is what lies between them.
type Region struct {
	Start, End int
	Handler    profile.Handler
	Open       string
	Inner      string
	Close      string
}

// Options configures the dispatcher and the scanners it routes to.
type Options struct {
	MatchTimeout time.Duration
	// ChunkLines is the width of the region passed through untouched when
	// a region search fails.
	ChunkLines int
	// PHP tokenizes host blocks the tree-sitter grammar rejects. Nil
	// leaves such blocks unchanged.
	PHP phptoken.Tokenizer
}

// Dispatcher routes the embedded regions of one markup profile.
type Dispatcher struct {
	blocks     []profile.Block
	re         *regexp2.Regexp
	keep       *sanitize.KeepSet
	chunkLines int

	// find is re.FindRunesMatchStartingAt; tests swap it to inject errors.
	find func(runes []rune, start int) (*regexp2.Match, error)

	script *cstyle.Scanner
	style  *cstyle.Scanner
	host   sanitize.Scanner
}

// New compiles the region alternation of p.
func New(p *profile.Profile, keep *sanitize.KeepSet, opts Options) (*Dispatcher, error) {
	if len(p.Blocks) == 0 {
		return nil, fmt.Errorf("markup: profile %s has no embedded blocks", p.ID)
	}
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = cstyle.DefaultMatchTimeout
	}
	if opts.ChunkLines <= 0 {
		opts.ChunkLines = cstyle.DefaultChunkLines
	}

	parts := make([]string, len(p.Blocks))
	for i, b := range p.Blocks {
		g := groupName(i)
		if b.Close == "" {
			parts[i] = "(?<" + g + ">" + b.Open + ")"
			continue
		}
		parts[i] = "(?<" + g + ">(?<" + g + "o>" + b.Open + ")(?<" + g + "i>.*?)(?<" + g + "c>" + b.Close + "))"
	}
	re, err := regexp2.Compile(strings.Join(parts, "|"), regexp2.IgnoreCase|regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("markup: compile %s blocks: %w", p.ID, err)
	}
	re.MatchTimeout = opts.MatchTimeout

	scriptOpts := cstyle.ScriptOptions()
	scriptOpts.MatchTimeout, scriptOpts.ChunkLines = opts.MatchTimeout, opts.ChunkLines
	script, err := cstyle.New(scriptOpts, keep)
	if err != nil {
		return nil, err
	}
	styleOpts := cstyle.StyleOptions()
	styleOpts.MatchTimeout, styleOpts.ChunkLines = opts.MatchTimeout, opts.ChunkLines
	style, err := cstyle.New(styleOpts, keep)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		blocks:     p.Blocks,
		re:         re,
		keep:       keep,
		chunkLines: opts.ChunkLines,
		find:       re.FindRunesMatchStartingAt,
		script:     script,
		style:      style,
		host:       phptoken.NewFragment(keep, opts.PHP),
	}, nil
}

func groupName(i int) string { return "b" + strconv.Itoa(i) }

// Scan implements sanitize.Scanner.
func (d *Dispatcher) Scan(ctx context.Context, text string) sanitize.Result {
	if text == "" {
		return sanitize.Unchanged(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, r := range d.Regions(text) {
		b.WriteString(text[pos:r.Start])
		b.WriteString(d.render(ctx, r))
		pos = r.End
	}
	b.WriteString(text[pos:])
	return sanitize.ResultOf(text, b.String())
}

// Regions returns the embedded regions of text in order. If the regex engine
// fails, the chunk of lines being searched passes through without regions
// and the search resumes at the next chunk.
func (d *Dispatcher) Regions(text string) []Region {
	runes := []rune(text)
	offs := sanitize.ByteOffsets(text, len(runes))
	chunks := sanitize.ChunkBounds(runes, d.chunkLines)

	var regions []Region
	pos := 0
	for pos < len(runes) {
		m, err := d.find(runes, pos)
		if err != nil {
			end := chunks.After(pos)
			slog.Debug("markup: leaving chunk unchanged",
				"err", fmt.Errorf("%w: %v", sanitize.ErrRegionMatch, err),
				"from", offs[pos], "to", offs[end])
			pos = end
			continue
		}
		if m == nil {
			break
		}
		if m.Length == 0 {
			pos = m.Index + 1
			continue
		}
		if r, ok := d.region(text, m, offs); ok {
			regions = append(regions, r)
		}
		pos = m.Index + m.Length
	}
	return regions
}

func (d *Dispatcher) region(text string, m *regexp2.Match, offs []int) (Region, bool) {
	slice := func(g *regexp2.Group) string {
		return text[offs[g.Index]:offs[g.Index+g.Length]]
	}
	for i, blk := range d.blocks {
		g := m.GroupByName(groupName(i))
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		r := Region{
			Start:   offs[g.Index],
			End:     offs[g.Index+g.Length],
			Handler: blk.Handler,
		}
		if blk.Close != "" {
			r.Open = slice(m.GroupByName(groupName(i) + "o"))
			r.Inner = slice(m.GroupByName(groupName(i) + "i"))
			r.Close = slice(m.GroupByName(groupName(i) + "c"))
		} else {
			r.Inner = slice(g)
		}
		return r, true
	}
	return Region{}, false
}

// render returns the replacement text of one region.
func (d *Dispatcher) render(ctx context.Context, r Region) string {
	switch r.Handler {
	case profile.HandlerScript:
		return r.Open + d.script.Scan(ctx, r.Inner).Text + r.Close
	case profile.HandlerStyle:
		return r.Open + d.style.Scan(ctx, r.Inner).Text + r.Close
	case profile.HandlerHostBlock:
		return r.Open + d.host.Scan(ctx, r.Inner).Text + r.Close
	case profile.HandlerTemplateComment:
		return sanitize.Blank(r.Inner)
	case profile.HandlerMarkupComment:
		if isConditional(r.Inner) || d.keep.Match(r.Inner) {
			return r.Inner
		}
		return sanitize.Blank(r.Inner)
	}
	return r.Open + r.Inner + r.Close
}

func isConditional(comment string) bool {
	ok, err := conditionalComment.MatchString(comment)
	if err != nil {
		return true
	}
	return ok
}
