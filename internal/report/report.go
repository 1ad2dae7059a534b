// Package report collects per-file outcomes of a run and renders them as
// progress lines, a summary table or a JSON document.
package report

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"
	"github.com/olekukonko/tablewriter"

	"github.com/gonkalabs/decomment/internal/profile"
)

// Outcome is the result of processing one file.
type Outcome struct {
	Path    string `json:"path"`
	Profile string `json:"profile"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// Report accumulates outcomes. It is safe for concurrent use.
type Report struct {
	RunID     string
	StartedAt time.Time
	DryRun    bool
	Files     []Outcome
	Changed   int

	mu  sync.Mutex
	out io.Writer
}

// NewRunID returns a new ULID string.
func NewRunID() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// New starts a report. Progress lines go to out; nil discards them.
func New(dryRun bool, out io.Writer) (*Report, error) {
	id, err := NewRunID()
	if err != nil {
		return nil, fmt.Errorf("report: run id: %w", err)
	}
	if out == nil {
		out = io.Discard
	}
	return &Report{
		RunID:     id,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Files:     []Outcome{},
		out:       out,
	}, nil
}

var (
	updatedColor = color.New(color.FgHiGreen)
	dryColor     = color.New(color.FgHiYellow)
	failedColor  = color.New(color.FgHiRed)
)

// Add records o and prints its progress line.
func (r *Report) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Files = append(r.Files, o)
	switch {
	case o.Error != "":
		failedColor.Fprintf(r.out, "Failed: %s (%s)\n", o.Path, o.Error)
	case o.Changed && r.DryRun:
		r.Changed++
		dryColor.Fprintf(r.out, "[DRY] Would update: %s\n", o.Path)
	case o.Changed:
		r.Changed++
		updatedColor.Fprintf(r.out, "Updated: %s\n", o.Path)
	}
}

// Done prints the closing line.
func (r *Report) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Done. Files changed: %d\n", r.Changed)
}

// sorted returns the outcomes ordered by path.
func (r *Report) sorted() []Outcome {
	files := make([]Outcome, len(r.Files))
	copy(files, r.Files)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

// Summary writes a per-profile table of scanned and changed files.
func (r *Report) Summary(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type counts struct{ scanned, changed, failed int }
	byProfile := map[string]*counts{}
	var ids []string
	for _, o := range r.Files {
		c, ok := byProfile[o.Profile]
		if !ok {
			c = &counts{}
			byProfile[o.Profile] = c
			ids = append(ids, o.Profile)
		}
		c.scanned++
		if o.Changed {
			c.changed++
		}
		if o.Error != "" {
			c.failed++
		}
	}
	sort.Strings(ids)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Profile", "Files", "Changed", "Failed"})
	table.SetAutoWrapText(false)
	total := counts{}
	for _, id := range ids {
		c := byProfile[id]
		total.scanned += c.scanned
		total.changed += c.changed
		total.failed += c.failed
		table.Append([]string{id, strconv.Itoa(c.scanned), strconv.Itoa(c.changed), strconv.Itoa(c.failed)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(total.scanned), strconv.Itoa(total.changed), strconv.Itoa(total.failed)})
	table.Render()
}

// WriteJSON writes the report to path.
func (r *Report) WriteJSON(path string) error {
	r.mu.Lock()
	doc := struct {
		RunID     string    `json:"run_id"`
		StartedAt time.Time `json:"started_at"`
		DryRun    bool      `json:"dry_run"`
		Files     []Outcome `json:"files"`
		Changed   int       `json:"changed"`
	}{r.RunID, r.StartedAt, r.DryRun, r.sorted(), r.Changed}
	r.mu.Unlock()

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Profiles writes a table of the supported profiles.
func Profiles(w io.Writer, set *profile.Set) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Profile", "Engine", "Extensions"})
	table.SetAutoWrapText(false)
	for _, p := range set.Profiles() {
		table.Append([]string{p.ID, p.Engine.String(), strings.Join(p.Extensions, " ")})
	}
	table.Render()
}
