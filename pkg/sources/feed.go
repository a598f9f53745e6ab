package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// gofeedFetcher implements FeedFetcher over an HTTPClient and gofeed.
type gofeedFetcher struct {
	client  HTTPClient
	headers map[string]string
}

// NewFeedFetcher builds a FeedFetcher that downloads with client and parses RSS/Atom/JSON feeds.
func NewFeedFetcher(client HTTPClient, headers map[string]string) FeedFetcher {
	return &gofeedFetcher{client: client, headers: headers}
}

func (f *gofeedFetcher) FetchFeed(ctx context.Context, url string) ([]FeedEntry, error) {
	body, err := fetchBody(ctx, f.client, url, f.headers)
	if err != nil {
		return nil, err
	}
	return parseFeed(body)
}

func parseFeed(body []byte) ([]FeedEntry, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		e := FeedEntry{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Description: strings.TrimSpace(item.Description),
		}
		if item.PublishedParsed != nil {
			e.Published = item.PublishedParsed.UTC()
		}
		entries = append(entries, e)
	}
	return entries, nil
}
