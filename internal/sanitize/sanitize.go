// Package sanitize turns raw feed text (titles, descriptions, source labels)
// into plain display text.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

// tagRe matches the simplest tag-like span: '<', anything but '>', then '>'.
// A '<' with no closing '>' after it never matches and stays literal.
var tagRe = regexp.MustCompile(`<[^>]*>`)

// Clean strips markup tags, decodes HTML entities and collapses whitespace.
//
// Tags are removed in one pass before entities are decoded once, so an
// entity inside a tag attribute never surfaces as text and a '<' or '>'
// produced by decoding is kept as a literal character. Unknown entities are
// left as is. Clean(Clean(s)) == Clean(s) whenever decoding did not produce
// a '<...>' span or new entity text.
func Clean(raw string) string {
	s := html.UnescapeString(tagRe.ReplaceAllString(raw, ""))
	return strings.Join(strings.Fields(s), " ")
}
