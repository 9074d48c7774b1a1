package digest

import (
	"fmt"
	"io"

	"github.com/ppiankov/newsdesk/internal/selector"
)

// TerminalFormatter formats a digest for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the digest to w, one section per keyword in full mode or a
// single sample section, followed by failed keywords.
func (f *TerminalFormatter) Format(w io.Writer, input Input) error {
	header := fmt.Sprintf("newsdesk — %d keywords, %d items, %d failed, %s",
		input.Keywords, input.TotalItems, len(input.Failures), formatDuration(input.Duration))
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if input.Shown() == 0 && len(input.Failures) == 0 {
		fmt.Fprintln(w, "No items found.")
		return nil
	}

	if input.Mode == selector.ModeSample {
		if len(input.Items) > 0 {
			fmt.Fprintln(w, f.green(f.bold(fmt.Sprintf("--- Sample (%d of %d) ---", len(input.Items), input.TotalItems))))
			fmt.Fprintln(w)
			for i, item := range input.Items {
				f.writeItem(w, i+1, item, true)
			}
		}
	} else {
		for _, sec := range input.Sections {
			fmt.Fprintln(w, f.green(f.bold(fmt.Sprintf("--- %s (%d) ---", sec.Keyword, len(sec.Items)))))
			fmt.Fprintln(w)
			for i, item := range sec.Items {
				f.writeItem(w, i+1, item, false)
			}
		}
	}

	if len(input.Failures) > 0 {
		fmt.Fprintln(w, f.yellow(f.bold(fmt.Sprintf("--- Failed (%d) ---", len(input.Failures)))))
		fmt.Fprintln(w)
		for _, fl := range input.Failures {
			fmt.Fprintf(w, "  %s: %s: %s\n", fl.Keyword, fl.Kind, fl.Message)
		}
		fmt.Fprintln(w)
	}

	if input.Shown() == 0 {
		fmt.Fprintln(w, f.dim("No items found."))
	}
	return nil
}

func (f *TerminalFormatter) writeItem(w io.Writer, n int, item Item, withKeyword bool) {
	fmt.Fprintf(w, "  %s %s\n", f.bold(fmt.Sprintf("[%d]", n)), item.Title)

	meta := item.PublishedAt
	if item.Source != "" {
		if meta != "" {
			meta = item.Source + " · " + meta
		} else {
			meta = item.Source
		}
	}
	if withKeyword {
		meta = "#" + item.Keyword + "  " + meta
	}
	if meta != "" {
		fmt.Fprintf(w, "      %s\n", f.dim(meta))
	}
	if item.Link != "" {
		fmt.Fprintf(w, "      %s\n", f.dim(item.Link))
	}
	if item.Description != "" {
		fmt.Fprintf(w, "      %s\n", item.Description)
	}
	fmt.Fprintln(w)
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
