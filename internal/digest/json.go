package digest

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/newsdesk/internal/selector"
)

// Document is the JSON form of a digest, shared by the json formatter and
// the HTTP API.
type Document struct {
	Meta     Meta          `json:"meta"`
	Sections []JSONSection `json:"sections,omitempty"`
	Items    []JSONItem    `json:"items,omitempty"`
	Failures []JSONFailure `json:"failures"`
}

// Meta describes the run behind a Document.
type Meta struct {
	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	Keywords   int    `json:"keywords"`
	TotalItems int    `json:"total_items"`
	Shown      int    `json:"shown"`
	Duration   string `json:"duration"`
}

type JSONSection struct {
	Keyword string     `json:"keyword"`
	Items   []JSONItem `json:"items"`
}

type JSONItem struct {
	Keyword     string `json:"keyword"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishedAt string `json:"published_at,omitempty"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
}

type JSONFailure struct {
	Keyword string `json:"keyword"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewDocument converts formatter input into its JSON document.
func NewDocument(input Input) Document {
	doc := Document{
		Meta: Meta{
			RunID:      input.RunID,
			Mode:       input.Mode,
			Keywords:   input.Keywords,
			TotalItems: input.TotalItems,
			Shown:      input.Shown(),
			Duration:   formatDuration(input.Duration),
		},
		Failures: make([]JSONFailure, 0, len(input.Failures)),
	}
	if input.Mode == selector.ModeSample {
		doc.Items = toJSONItems(input.Items)
	} else {
		for _, sec := range input.Sections {
			doc.Sections = append(doc.Sections, JSONSection{
				Keyword: sec.Keyword,
				Items:   toJSONItems(sec.Items),
			})
		}
	}
	for _, f := range input.Failures {
		doc.Failures = append(doc.Failures, JSONFailure(f))
	}
	return doc
}

// JSONFormatter formats a digest as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the digest as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, input Input) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(input))
}

func toJSONItems(items []Item) []JSONItem {
	result := make([]JSONItem, 0, len(items))
	for _, item := range items {
		result = append(result, JSONItem(item))
	}
	return result
}
