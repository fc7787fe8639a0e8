package wikipedia

import (
	"context"
	"net/url"
	"strings"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

// Summary is a short cultural and historical introduction to a country.
type Summary struct {
	Extract string `json:"extract"`
	URL     string `json:"url"`
}

type Client interface {
	Summary(ctx context.Context, title string) (*Summary, error)
}

type HTTPClient struct {
	api *upstream.Client
}

func NewHTTPClient(api *upstream.Client) *HTTPClient {
	return &HTTPClient{api: api}
}

// Summary returns the first two sentences of the page extract, or nil when
// the page has no extract.
func (c *HTTPClient) Summary(ctx context.Context, title string) (*Summary, error) {
	page := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))

	var resp struct {
		Extract     string `json:"extract"`
		ContentURLs struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
	}
	if err := c.api.GetJSON(ctx, "/page/summary/"+page, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Extract == "" {
		return nil, nil
	}

	s := &Summary{
		Extract: FirstSentences(resp.Extract, 2),
		URL:     resp.ContentURLs.Desktop.Page,
	}
	if s.URL == "" {
		s.URL = "https://en.wikipedia.org/wiki/" + page
	}
	return s, nil
}

// FirstSentences keeps the first n ". "-separated sentences and terminates
// the result with a period.
func FirstSentences(text string, n int) string {
	parts := strings.Split(strings.TrimSpace(text), ". ")
	if len(parts) > n {
		parts = parts[:n]
	}
	out := strings.Join(parts, ". ")
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
