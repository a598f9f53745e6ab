package sources

import (
	"context"
	"time"

	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
)

// FeedEntry is one parsed syndication entry.
type FeedEntry struct {
	Title       string
	Link        string
	Description string
	Published   time.Time
}

// FeedFetcher downloads and parses a syndication document.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, url string) ([]FeedEntry, error)
}

// Anchor is a link extracted from an HTML page.
type Anchor struct {
	Text string
	Href string
}

// AnchorScraper extracts anchors from an HTML page.
type AnchorScraper interface {
	Anchors(ctx context.Context, url string, headers map[string]string) ([]Anchor, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
