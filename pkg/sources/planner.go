package sources

import (
	"net/url"
	"strings"
)

// DefaultSearchBaseURL is the Google News RSS search endpoint.
const DefaultSearchBaseURL = "https://news.google.com/rss/search"

// Planner turns a logical query and region into a feed URL. It is pure.
type Planner struct {
	BaseURL string
	Regions *RegionTable
}

// NewPlanner builds a planner over regions (DefaultRegions when nil).
func NewPlanner(baseURL string, regions *RegionTable) Planner {
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	if regions == nil {
		regions = DefaultRegions()
	}
	return Planner{BaseURL: baseURL, Regions: regions}
}

// Plan returns the feed URL and human-readable region label for query in region.
// Unknown regions resolve to the table's default region.
func (p Planner) Plan(query, region string) (string, string) {
	r := p.Regions.Lookup(region)
	return p.BaseURL +
		"?q=" + escapeQuery(query) +
		"&hl=" + r.Language +
		"&gl=" + r.Country +
		"&ceid=" + r.CEID, r.Label
}

// escapeQuery percent-encodes a search term, spaces as %20.
func escapeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}
