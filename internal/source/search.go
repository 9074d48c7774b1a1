package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	searchSourceName = ProviderSearch
	searchBaseURL    = "https://openapi.naver.com/v1/search/news.json"
	searchMaxDisplay = 100
	searchSortDate   = "date"
	searchSortSim    = "sim"

	headerClientID     = "X-Naver-Client-Id"
	headerClientSecret = "X-Naver-Client-Secret"
)

// SearchSource queries a Naver style JSON news search API.
type SearchSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
}

// NewSearch creates a JSON search client. Both credentials are required.
func NewSearch(opts Options) (*SearchSource, error) {
	if strings.TrimSpace(opts.ClientID) == "" || strings.TrimSpace(opts.ClientSecret) == "" {
		return nil, configErr("search: client id and secret are required")
	}
	base := opts.Endpoint
	if base == "" {
		base = searchBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, configErr("search: invalid endpoint %q: %w", opts.Endpoint, err)
	}
	return &SearchSource{
		baseURL:      base,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		client:       newHTTPClient(opts.UserAgent),
	}, nil
}

func (ss *SearchSource) Name() string {
	return searchSourceName
}

// searchResponse is the body of a news search call.
type searchResponse struct {
	LastBuildDate string       `json:"lastBuildDate"`
	Total         int          `json:"total"`
	Start         int          `json:"start"`
	Display       int          `json:"display"`
	Items         []searchItem `json:"items"`
}

type searchItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

func (ss *SearchSource) searchURL(q Query) string {
	display := q.Limit
	if display < 1 {
		display = 1
	}
	if display > searchMaxDisplay {
		display = searchMaxDisplay
	}
	sort := q.Sort
	if sort != searchSortSim {
		sort = searchSortDate
	}

	v := url.Values{}
	v.Set("query", q.Keyword)
	v.Set("display", strconv.Itoa(display))
	v.Set("start", "1")
	v.Set("sort", sort)

	sep := "?"
	if strings.Contains(ss.baseURL, "?") {
		sep = "&"
	}
	return ss.baseURL + sep + v.Encode()
}

// Fetch runs one search call. originallink is not used; Link is the
// provider's canonical article URL.
func (ss *SearchSource) Fetch(ctx context.Context, q Query) ([]Item, error) {
	if ss.clientID == "" || ss.clientSecret == "" {
		return nil, configErr("search: missing credentials")
	}

	header := http.Header{}
	header.Set(headerClientID, ss.clientID)
	header.Set(headerClientSecret, ss.clientSecret)

	body, err := get(ctx, ss.client, ss.searchURL(q), header)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, responseErr("decode search response: %w", err)
	}

	items := make([]Item, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, Item{
			Title:       it.Title,
			Link:        it.Link,
			PublishedAt: it.PubDate,
			Description: it.Description,
		})
	}
	return truncate(items, q.Limit), nil
}
