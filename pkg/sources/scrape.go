package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxPageBytes bounds a fetched feed or section page; pass it to the
// transport's body limit.
const MaxPageBytes = 4 << 20

// goqueryScraper implements AnchorScraper with goquery.
type goqueryScraper struct {
	client HTTPClient
}

// NewAnchorScraper builds an AnchorScraper that downloads pages with client.
func NewAnchorScraper(client HTTPClient) AnchorScraper {
	return &goqueryScraper{client: client}
}

func (s *goqueryScraper) Anchors(ctx context.Context, url string, headers map[string]string) ([]Anchor, error) {
	body, err := fetchBody(ctx, s.client, url, headers)
	if err != nil {
		return nil, err
	}
	return parseAnchors(body)
}

func parseAnchors(body []byte) ([]Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var anchors []Anchor
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		anchors = append(anchors, Anchor{
			Text: strings.Join(strings.Fields(sel.Text()), " "),
			Href: href,
		})
	})
	return anchors, nil
}
