package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
)

const (
	defaultPrimaryCap    = 8
	defaultSecondaryCap  = 3
	defaultSectionCap    = 8
	defaultMinTitleRunes = 10
	defaultSnippetRunes  = 200

	DefaultArticlePattern = "/mnews/article/"
	DefaultSectionBaseURL = "https://news.naver.com/section"
)

// Section is one scrape-style portal section.
type Section struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Options tunes result composition for a Collector.
type Options struct {
	// PrimaryRegion receives PrimaryCap entries per query; every other region SecondaryCap.
	PrimaryRegion string
	PrimaryCap    int
	SecondaryCap  int
	FeedOrigin    string

	SectionBaseURL  string
	ArticlePattern  string
	SectionCap      int
	MinTitleRunes   int
	SectionProvider string
	SectionHeaders  map[string]string
}

func (o Options) normalized() Options {
	if o.PrimaryRegion == "" {
		o.PrimaryRegion = "US"
	}
	o.PrimaryRegion = normalizeCode(o.PrimaryRegion)
	if o.PrimaryCap <= 0 {
		o.PrimaryCap = defaultPrimaryCap
	}
	if o.SecondaryCap <= 0 {
		o.SecondaryCap = defaultSecondaryCap
	}
	if o.FeedOrigin == "" {
		o.FeedOrigin = "Google"
	}
	if o.SectionBaseURL == "" {
		o.SectionBaseURL = DefaultSectionBaseURL
	}
	o.SectionBaseURL = strings.TrimRight(o.SectionBaseURL, "/")
	if o.ArticlePattern == "" {
		o.ArticlePattern = DefaultArticlePattern
	}
	if o.SectionCap <= 0 {
		o.SectionCap = defaultSectionCap
	}
	if o.MinTitleRunes <= 0 {
		o.MinTitleRunes = defaultMinTitleRunes
	}
	if o.SectionProvider == "" {
		o.SectionProvider = "Naver News"
	}
	return o
}

// Collector fans out to feed and scrape sources and deduplicates by link.
// One Collector corresponds to one collection run: its seen-link set spans
// every Collect and CollectSections call made on it.
type Collector struct {
	planner Planner
	feeds   FeedFetcher
	scraper AnchorScraper
	opts    Options
	log     logger.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewCollector wires a collector for a single run.
func NewCollector(planner Planner, feeds FeedFetcher, scraper AnchorScraper, opts Options, log logger.Logger) *Collector {
	return &Collector{
		planner: planner,
		feeds:   feeds,
		scraper: scraper,
		opts:    opts.normalized(),
		log:     logger.Ensure(log),
		seen:    make(map[string]struct{}),
	}
}

// Collect runs every query against every region and returns the newly seen items
// tagged with category. Failed (query, region) pairs are logged and skipped.
func (c *Collector) Collect(ctx context.Context, queries, regions []string, category domain.Category) []domain.NewsItem {
	var items []domain.NewsItem
	if c.feeds == nil {
		c.log.WarnObj("feed collection skipped", "collect_meta", map[string]any{"reason": "no feed fetcher"})
		return items
	}

	for _, region := range regions {
		c.log.InfoObj("collecting feeds", "collect_meta", map[string]any{
			"category": string(category),
			"region":   region,
			"queries":  len(queries),
		})
		for _, query := range queries {
			if ctx.Err() != nil {
				return items
			}

			url, label := c.planner.Plan(query, region)
			entries, err := c.feeds.FetchFeed(ctx, url)
			if err != nil {
				c.logFetchError(fmt.Errorf("%w: query %q region %s: %v", domain.ErrProviderFetch, query, region, err))
				continue
			}

			prov := domain.Provenance{Category: category, Origin: fmt.Sprintf("%s (%s)", label, c.opts.FeedOrigin)}
			limit := c.capFor(region)
			if len(entries) > limit {
				entries = entries[:limit]
			}
			for _, e := range entries {
				if e.Title == "" || !c.markSeen(e.Link) {
					continue
				}
				items = append(items, domain.NewsItem{
					Title:       e.Title,
					Link:        strings.TrimSpace(e.Link),
					Source:      prov.Label(),
					Snippet:     truncateRunes(e.Description, defaultSnippetRunes),
					Provenance:  prov,
					PublishedAt: e.Published,
				})
			}
		}
	}
	return items
}

// CollectSections scrapes each portal section and returns the newly seen article links.
func (c *Collector) CollectSections(ctx context.Context, sections []Section) []domain.NewsItem {
	var items []domain.NewsItem
	if c.scraper == nil {
		c.log.WarnObj("section collection skipped", "collect_meta", map[string]any{"reason": "no scraper"})
		return items
	}

	for _, section := range sections {
		if ctx.Err() != nil {
			return items
		}

		url := c.opts.SectionBaseURL + "/" + strings.TrimSpace(section.ID)
		anchors, err := c.scraper.Anchors(ctx, url, c.opts.SectionHeaders)
		if err != nil {
			c.logFetchError(fmt.Errorf("%w: section %s (%s): %v", domain.ErrProviderFetch, section.ID, section.Name, err))
			continue
		}

		prov := domain.Provenance{
			Category: domain.CategoryDomestic,
			Origin:   fmt.Sprintf("%s (%s)", c.opts.SectionProvider, section.Name),
		}
		accepted := 0
		for _, a := range anchors {
			if accepted >= c.opts.SectionCap {
				break
			}
			if !c.isArticleAnchor(a) || !c.markSeen(a.Href) {
				continue
			}
			items = append(items, domain.NewsItem{
				Title:      a.Text,
				Link:       a.Href,
				Source:     prov.Label(),
				Provenance: prov,
			})
			accepted++
		}
		c.log.DebugObj("section collected", "collect_meta", map[string]any{
			"section":  section.ID,
			"anchors":  len(anchors),
			"accepted": accepted,
		})
	}
	return items
}

// SeenCount returns how many distinct links this run has accepted.
func (c *Collector) SeenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// isArticleAnchor filters navigation chrome: the href must look like an article
// and the visible text must be longer than MinTitleRunes.
func (c *Collector) isArticleAnchor(a Anchor) bool {
	if !strings.Contains(a.Href, c.opts.ArticlePattern) {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(a.Text)) > c.opts.MinTitleRunes
}

func (c *Collector) capFor(region string) int {
	if normalizeCode(region) == c.opts.PrimaryRegion {
		return c.opts.PrimaryCap
	}
	return c.opts.SecondaryCap
}

// markSeen records link and reports whether it was new.
func (c *Collector) markSeen(link string) bool {
	key := strings.TrimSpace(link)
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}

func (c *Collector) logFetchError(err error) {
	c.log.WarnObj("source fetch failed", "fetch_error", map[string]any{
		"error": err.Error(),
	})
}

// BrowserHeaders returns request headers that mimic a desktop browser.
func BrowserHeaders(userAgent string) map[string]string {
	headers := make(map[string]string, 2)
	if ua := strings.TrimSpace(userAgent); ua != "" {
		headers["User-Agent"] = ua
	}
	headers["Accept"] = "text/html,application/xhtml+xml"
	return headers
}
