package digest

import (
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/sanitize"
	"github.com/ppiankov/newsdesk/internal/selector"
)

// Item is a sanitized news item ready for display.
type Item struct {
	Keyword     string
	Title       string
	Link        string
	PublishedAt string
	Source      string
	Description string
}

// Section holds the items fetched under one keyword.
type Section struct {
	Keyword string
	Items   []Item
}

// Failure is a keyword whose query failed.
type Failure struct {
	Keyword string
	Kind    string
	Message string
}

// Input is the full input for a digest formatter. Sections is set in full
// mode, Items in sample mode.
type Input struct {
	RunID      string
	Mode       string
	Keywords   int           // number of keywords queried
	TotalItems int           // pool size before selection
	Duration   time.Duration // wall time of the aggregation
	Sections   []Section
	Items      []Item
	Failures   []Failure
}

// Shown returns the number of items the digest displays.
func (in Input) Shown() int {
	if in.Mode == selector.ModeSample {
		return len(in.Items)
	}
	n := 0
	for _, s := range in.Sections {
		n += len(s.Items)
	}
	return n
}

// Formatter writes a formatted digest to w.
type Formatter interface {
	Format(w io.Writer, input Input) error
}

// ByName returns the formatter for name: terminal, json or markdown.
func ByName(name string, color bool) (Formatter, error) {
	switch name {
	case "terminal", "":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json or markdown)", name)
	}
}

// Build prepares formatter input from a run. In full mode groups supplies
// the sections; in sample mode sample supplies the items. Every text field
// is sanitized here so formatters never see markup or entities.
func Build(run *aggregate.Run, mode string, groups []selector.Group, sample aggregate.Pool) Input {
	in := Input{
		RunID:      run.ID,
		Mode:       mode,
		Keywords:   len(run.Results),
		TotalItems: len(run.Pool()),
		Duration:   run.Duration,
	}

	if mode == selector.ModeSample {
		in.Items = make([]Item, 0, len(sample))
		for _, e := range sample {
			in.Items = append(in.Items, cleanEntry(e))
		}
	} else {
		in.Mode = selector.ModeFull
		for _, g := range groups {
			sec := Section{Keyword: g.Keyword, Items: make([]Item, 0, len(g.Entries))}
			for _, e := range g.Entries {
				sec.Items = append(sec.Items, cleanEntry(e))
			}
			in.Sections = append(in.Sections, sec)
		}
	}

	for _, f := range run.Failures() {
		in.Failures = append(in.Failures, Failure{
			Keyword: f.Keyword,
			Kind:    f.Kind.String(),
			Message: f.Message,
		})
	}
	return in
}

func cleanEntry(e aggregate.Entry) Item {
	return Item{
		Keyword:     e.Keyword,
		Title:       sanitize.Clean(e.Title),
		Link:        e.Link,
		PublishedAt: e.PublishedAt,
		Source:      sanitize.Clean(e.Source),
		Description: sanitize.Clean(e.Description),
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
