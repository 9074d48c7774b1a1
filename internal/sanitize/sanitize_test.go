package sanitize

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"korean headline", "<b>해운</b> &amp; 물류", "해운 & 물류"},
		{"simple tags", "<p>hello</p>", "hello"},
		{"nested tags", "<div><p>hello</p></div>", "hello"},
		{"attributes", `<a href="https://example.com/?a=1&amp;b=2">link</a>`, "link"},
		{"entities", "&amp; &lt; 3 &quot;q&quot;", "& < 3 \"q\""},
		{"decoded brackets stay literal", "a &lt; b &gt; c", "a < b > c"},
		{"numeric entities", "&#54644;&#50868; &#x41;", "해운 A"},
		{"unknown entity", "fish &zzz; co", "fish &zzz; co"},
		{"empty", "", ""},
		{"no html", "plain text", "plain text"},
		{"self-closing", "line<br/>break", "linebreak"},
		{"unterminated", "a < b", "a < b"},
		{"unterminated after tag", "<i>x</i> <y", "x <y"},
		{"escaped markup is text", "&lt;b&gt;bold&lt;/b&gt; text", "<b>bold</b> text"},
		{"double escaped amp decodes once", "R&amp;amp;D", "R&amp;D"},
		{"entity inside attribute", `<img alt="&lt;pic&gt;"/>caption`, "caption"},
		{"whitespace", "  one\n\ttwo&nbsp;three  ", "one two three"},
		{"google news description", `<a href="https://news.google.com/x" target="_blank">해운 운임 상승</a>&nbsp;&nbsp;<font color="#6f6f6f">연합뉴스</font>`, "해운 운임 상승 연합뉴스"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"<b>해운</b> &amp; 물류",
		"1 &lt; 2",
		"3 &gt; 2",
		"1 < 2",
		"<<>>",
		"&&amp;;",
		"<a <b>c</b>",
		"text &zzz; more",
		"",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestClean_NoTagsRemain(t *testing.T) {
	inputs := []string{
		"<p>para</p><ul><li>one</li><li>two</li></ul>",
		`<img src="x.png" alt="&lt;pic&gt;"/>caption`,
		"<script>alert(1)</script>after",
	}
	for _, in := range inputs {
		got := Clean(in)
		if tagRe.MatchString(got) {
			t.Errorf("Clean(%q) = %q still contains a tag", in, got)
		}
		if strings.Contains(got, "&lt;") || strings.Contains(got, "&amp;") {
			t.Errorf("Clean(%q) = %q still contains encoded entities", in, got)
		}
	}
}
