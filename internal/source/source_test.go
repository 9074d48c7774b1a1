package source

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindConfig:    "config",
		KindTransport: "transport",
		KindResponse:  "response",
		KindUnknown:   "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestKindOf(t *testing.T) {
	base := responseErr("HTTP %d", 503)

	if got := KindOf(base); got != KindResponse {
		t.Errorf("direct: kind = %v, want response", got)
	}
	wrapped := fmt.Errorf("keyword %q: %w", "a", base)
	if got := KindOf(wrapped); got != KindResponse {
		t.Errorf("wrapped: kind = %v, want response", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("plain: kind = %v, want unknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("nil: kind = %v, want unknown", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := transportErr(errors.New("dial tcp: connection refused"))
	if got := err.Error(); got != "transport: dial tcp: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, err.Err) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestNew(t *testing.T) {
	t.Run("rss", func(t *testing.T) {
		c, err := New(ProviderRSS, Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Name() != "rss" {
			t.Errorf("name = %q, want rss", c.Name())
		}
	})

	t.Run("search", func(t *testing.T) {
		c, err := New(ProviderSearch, Options{ClientID: "id", ClientSecret: "secret"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Name() != "search" {
			t.Errorf("name = %q, want search", c.Name())
		}
	})

	t.Run("search without credentials", func(t *testing.T) {
		c, err := New(ProviderSearch, Options{})
		if err == nil {
			t.Fatal("expected error")
		}
		if c != nil {
			t.Error("client should be nil on error")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New("telegram", Options{})
		if KindOf(err) != KindConfig {
			t.Errorf("kind = %v, want config", KindOf(err))
		}
	})
}
