package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed/rss"

	"github.com/MikeSquared-Agency/Compass/internal/upstream"
)

const (
	DefaultBaseURL = "https://news.google.com/rss"

	maxHeadlines = 3
)

type Headline struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pub_date"`
	Source  string `json:"source"`
}

type Client interface {
	Headlines(ctx context.Context, country string) ([]Headline, error)
}

// RSSClient reads headlines from the Google News search feed.
type RSSClient struct {
	api *upstream.Client
}

func NewRSSClient(api *upstream.Client) *RSSClient {
	return &RSSClient{api: api}
}

func (c *RSSClient) Headlines(ctx context.Context, country string) ([]Headline, error) {
	q := url.Values{
		"q":    {fmt.Sprintf("%q", strings.TrimSpace(country))},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}
	body, err := c.api.Get(ctx, "/search", q)
	if err != nil {
		return nil, err
	}
	return ParseHeadlines(body)
}

// ParseHeadlines extracts the top headlines from an RSS document.
func ParseHeadlines(body []byte) ([]Headline, error) {
	var p rss.Parser
	feed, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("news parse feed: %w", err)
	}

	out := make([]Headline, 0, maxHeadlines)
	for _, item := range feed.Items {
		if len(out) == maxHeadlines {
			break
		}
		h := Headline{
			Title:   item.Title,
			Link:    item.Link,
			PubDate: item.PubDate,
			Source:  "Google News",
		}
		if h.Title == "" {
			h.Title = "Untitled"
		}
		if item.Source != nil && item.Source.Title != "" {
			h.Source = item.Source.Title
		}
		out = append(out, h)
	}
	return out, nil
}
