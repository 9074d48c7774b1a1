// Package source fetches news items for a single keyword from a remote
// feed or search provider.
package source

import (
	"context"
	"errors"
	"fmt"
)

// Item is one article as returned by a provider. Text fields are raw and may
// contain markup; sanitizing is the presenter's job.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishedAt string `json:"published_at"`          // provider-formatted, never parsed
	Source      string `json:"source,omitempty"`      // provider attribution, e.g. feed channel
	Description string `json:"description,omitempty"` // raw snippet
}

// Query is a single keyword request.
type Query struct {
	Keyword string
	Limit   int    // maximum number of items to return
	Sort    string // "date" or "sim"; providers without sorting ignore it
}

// Client runs one query against one provider endpoint.
type Client interface {
	// Name returns the provider kind (e.g. "rss").
	Name() string

	// Fetch returns at most q.Limit items in provider order. Any error it
	// returns is a *Error.
	Fetch(ctx context.Context, q Query) ([]Item, error)
}

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig covers missing credentials or endpoint configuration.
	KindConfig
	// KindTransport covers DNS, connect, timeout and body read failures.
	KindTransport
	// KindResponse covers non-success status codes and undecodable bodies.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by every Client.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configErr(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

func transportErr(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func responseErr(format string, args ...any) *Error {
	return &Error{Kind: KindResponse, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind of err, or KindUnknown if err is not a *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// Provider kinds accepted by New.
const (
	ProviderRSS    = "rss"
	ProviderSearch = "search"
)

// Options configures a Client built by New. Fields a variant does not use
// are ignored.
type Options struct {
	Endpoint     string // base URL override
	UserAgent    string
	Locale       Locale // rss only
	ClientID     string // search only
	ClientSecret string // search only
}

// New builds the client variant named by kind.
func New(kind string, opts Options) (Client, error) {
	switch kind {
	case ProviderRSS:
		rs, err := NewRSS(opts)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case ProviderSearch:
		ss, err := NewSearch(opts)
		if err != nil {
			return nil, err
		}
		return ss, nil
	default:
		return nil, configErr("unknown provider kind %q (want rss or search)", kind)
	}
}
