package digest

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/newsdesk/internal/selector"
)

// MarkdownFormatter formats a digest as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the digest as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, input Input) error {
	fmt.Fprintf(w, "# newsdesk digest\n\n")
	fmt.Fprintf(w, "%d keywords, %d items, %d failed\n\n", input.Keywords, input.TotalItems, len(input.Failures))

	if input.Shown() == 0 && len(input.Failures) == 0 {
		fmt.Fprintln(w, "No items found.")
		return nil
	}

	if input.Mode == selector.ModeSample {
		if len(input.Items) > 0 {
			fmt.Fprintf(w, "## Sample (%d of %d)\n\n", len(input.Items), input.TotalItems)
			for _, item := range input.Items {
				f.writeItem(w, item, true)
			}
			fmt.Fprintln(w)
		}
	} else {
		for _, sec := range input.Sections {
			fmt.Fprintf(w, "## %s (%d)\n\n", escapeMarkdown(sec.Keyword), len(sec.Items))
			for _, item := range sec.Items {
				f.writeItem(w, item, false)
			}
			fmt.Fprintln(w)
		}
	}

	if len(input.Failures) > 0 {
		fmt.Fprintf(w, "## Failed (%d)\n\n", len(input.Failures))
		for _, fl := range input.Failures {
			fmt.Fprintf(w, "- **%s**: `%s`: %s\n", escapeMarkdown(fl.Keyword), fl.Kind, fl.Message)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (f *MarkdownFormatter) writeItem(w io.Writer, item Item, withKeyword bool) {
	title := escapeMarkdown(item.Title)
	if item.Link != "" {
		fmt.Fprintf(w, "- [%s](%s)", title, item.Link)
	} else {
		fmt.Fprintf(w, "- %s", title)
	}

	var meta []string
	if withKeyword {
		meta = append(meta, "`"+item.Keyword+"`")
	}
	if item.Source != "" {
		meta = append(meta, escapeMarkdown(item.Source))
	}
	if item.PublishedAt != "" {
		meta = append(meta, item.PublishedAt)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, " _(%s)_", strings.Join(meta, ", "))
	}
	fmt.Fprintln(w)

	if item.Description != "" {
		fmt.Fprintf(w, "  > %s\n", escapeMarkdown(item.Description))
	}
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
