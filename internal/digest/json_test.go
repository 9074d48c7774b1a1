package digest

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ppiankov/newsdesk/internal/aggregate"
	"github.com/ppiankov/newsdesk/internal/selector"
)

func TestJSONFormat_Full(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON().Format(&buf, fullInput()); err != nil {
		t.Fatalf("format: %v", err)
	}

	var result Document
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v\noutput: %s", err, buf.String())
	}

	if result.Meta.RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", result.Meta.RunID)
	}
	if result.Meta.Mode != "full" {
		t.Errorf("mode = %q, want full", result.Meta.Mode)
	}
	if result.Meta.TotalItems != 3 || result.Meta.Shown != 3 {
		t.Errorf("total/shown = %d/%d, want 3/3", result.Meta.TotalItems, result.Meta.Shown)
	}
	if len(result.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(result.Sections))
	}
	if result.Sections[0].Items[0].Title != "해운 & 물류 운임 상승" {
		t.Errorf("title = %q", result.Sections[0].Items[0].Title)
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != "response" {
		t.Errorf("failures = %+v", result.Failures)
	}
	if bytes.Contains(buf.Bytes(), []byte(`\u0026`)) {
		t.Error("ampersand should not be HTML-escaped")
	}
}

func TestJSONFormat_Sample(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON().Format(&buf, sampleInput(5)); err != nil {
		t.Fatalf("format: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["sections"]; ok {
		t.Error("sections should be omitted in sample mode")
	}
	items, ok := m["items"].([]any)
	if !ok || len(items) != 3 {
		t.Fatalf("items = %v, want 3 entries", m["items"])
	}
}

func TestJSONFormat_Empty(t *testing.T) {
	in := Build(&aggregate.Run{ID: "x"}, selector.ModeFull, nil, nil)

	var buf bytes.Buffer
	if err := NewJSON().Format(&buf, in); err != nil {
		t.Fatalf("format: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	failures, ok := m["failures"].([]any)
	if !ok || len(failures) != 0 {
		t.Errorf("failures = %v, want empty array", m["failures"])
	}
}

func TestJSONFormat_Omitempty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON().Format(&buf, fullInput()); err != nil {
		t.Fatalf("format: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	sections := m["sections"].([]any)
	items := sections[0].(map[string]any)["items"].([]any)
	second := items[1].(map[string]any)
	for _, key := range []string{"source", "description", "published_at"} {
		if _, ok := second[key]; ok {
			t.Errorf("%s should be omitted when empty", key)
		}
	}
}
