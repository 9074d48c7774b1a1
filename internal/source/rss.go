package source

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const (
	rssSourceName = ProviderRSS
	rssBaseURL    = "https://news.google.com/rss"
)

// Locale selects the edition of a Google News style feed.
type Locale struct {
	HL   string `yaml:"hl"`   // interface language, e.g. "ko"
	GL   string `yaml:"gl"`   // country, e.g. "KR"
	CEID string `yaml:"ceid"` // edition id, e.g. "KR:ko"
}

// DefaultLocale is the Korean edition.
var DefaultLocale = Locale{HL: "ko", GL: "KR", CEID: "KR:ko"}

// RSSSource queries a Google News style RSS search endpoint.
type RSSSource struct {
	baseURL string
	locale  Locale
	client  *http.Client
}

// NewRSS creates an RSS search client. An empty endpoint means Google News;
// an empty locale means DefaultLocale.
func NewRSS(opts Options) (*RSSSource, error) {
	base := strings.TrimRight(opts.Endpoint, "/")
	if base == "" {
		base = rssBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, configErr("rss: invalid endpoint %q: %w", opts.Endpoint, err)
	}
	locale := opts.Locale
	if locale == (Locale{}) {
		locale = DefaultLocale
	}
	return &RSSSource{
		baseURL: base,
		locale:  locale,
		client:  newHTTPClient(opts.UserAgent),
	}, nil
}

func (rs *RSSSource) Name() string {
	return rssSourceName
}

// searchURL builds {base}/search?q=...&hl=...&gl=...&ceid=...
func (rs *RSSSource) searchURL(keyword string) string {
	v := url.Values{}
	v.Set("q", keyword)
	if rs.locale.HL != "" {
		v.Set("hl", rs.locale.HL)
	}
	if rs.locale.GL != "" {
		v.Set("gl", rs.locale.GL)
	}
	if rs.locale.CEID != "" {
		v.Set("ceid", rs.locale.CEID)
	}
	return rs.baseURL + "/search?" + v.Encode()
}

// Fetch runs one search. The feed has no page-size parameter, so q.Limit is
// applied after parsing.
func (rs *RSSSource) Fetch(ctx context.Context, q Query) ([]Item, error) {
	body, err := get(ctx, rs.client, rs.searchURL(q.Keyword), nil)
	if err != nil {
		return nil, err
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	return truncate(items, q.Limit), nil
}

// parseFeed decodes an RSS 2.0 body with the rss parser, which keeps the
// per-item <source> element, and anything else gofeed understands (Atom,
// JSON Feed) with the universal parser.
func parseFeed(body []byte) ([]Item, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		fp := &rss.Parser{}
		feed, err := fp.Parse(bytes.NewReader(body))
		if err != nil {
			return nil, responseErr("parse rss: %w", err)
		}
		return itemsFromRSS(feed), nil
	case gofeed.FeedTypeAtom, gofeed.FeedTypeJSON:
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
		if err != nil {
			return nil, responseErr("parse feed: %w", err)
		}
		return itemsFromFeed(feed), nil
	default:
		return nil, responseErr("unrecognized feed format")
	}
}

func itemsFromRSS(feed *rss.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		item := Item{
			Title:       it.Title,
			Link:        it.Link,
			PublishedAt: it.PubDate,
			Description: it.Description,
		}
		if it.Source != nil {
			item.Source = it.Source.Title
		}
		items = append(items, item)
	}
	return items
}

func itemsFromFeed(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		published := it.Published
		if published == "" {
			published = it.Updated
		}
		items = append(items, Item{
			Title:       it.Title,
			Link:        it.Link,
			PublishedAt: published,
			Source:      feed.Title,
			Description: it.Description,
		})
	}
	return items
}

func truncate(items []Item, limit int) []Item {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
