// Package plan loads the collection plan: what to query, where, and how the
// results are grouped for curation and delivery.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/pkg/curation"
	"github.com/samvad-hq/samvad-news-briefing/pkg/sources"
	"gopkg.in/yaml.v3"
)

// Plan is the full collection and grouping configuration for a run.
type Plan struct {
	PrimaryRegion string           `json:"primary_region" yaml:"primary_region"`
	Regions       []sources.Region `json:"regions" yaml:"regions"`
	Feeds         []Feed           `json:"feeds" yaml:"feeds"`
	Sections      SectionPlan      `json:"sections" yaml:"sections"`
	// Groups are delivered in file order.
	Groups []Group `json:"groups" yaml:"groups"`
}

// Feed is one set of search queries run against a list of regions.
type Feed struct {
	ID       string   `json:"id" yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	Regions  []string `json:"regions" yaml:"regions"`
	Queries  []string `json:"queries" yaml:"queries"`
}

// SectionPlan configures portal section scraping.
type SectionPlan struct {
	BaseURL        string            `json:"base_url" yaml:"base_url"`
	ArticlePattern string            `json:"article_pattern" yaml:"article_pattern"`
	PerSectionCap  int               `json:"per_section_cap" yaml:"per_section_cap"`
	MinTitleRunes  int               `json:"min_title_runes" yaml:"min_title_runes"`
	Items          []sources.Section `json:"items" yaml:"items"`
}

// Group is one curation and delivery unit.
type Group struct {
	ID          string               `json:"id" yaml:"id"`
	Categories  []string             `json:"categories" yaml:"categories"`
	Title       string               `json:"title" yaml:"title"`
	Description string               `json:"description" yaml:"description"`
	Color       int                  `json:"color" yaml:"color"`
	Label       string               `json:"label" yaml:"label"`
	Perspective string               `json:"perspective" yaml:"perspective"`
	Language    string               `json:"language" yaml:"language"`
	Count       curation.CountPolicy `json:"count" yaml:"count"`
	Rules       []string             `json:"rules" yaml:"rules"`
}

// Load reads and validates a plan file. A missing file yields an error
// matching fs.ErrNotExist so callers can fall back to Default.
func Load(path string) (Plan, error) {
	if strings.TrimSpace(path) == "" {
		return Plan{}, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Plan{}, fmt.Errorf("read sources file: %w", err)
	}

	p, err := parsePlan(raw, filepath.Ext(path))
	if err != nil {
		return Plan{}, err
	}

	p = sanitize(p)
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

type unmarshalFn func([]byte, any) error

func parsePlan(data []byte, ext string) (Plan, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var p Plan
		if err := d.fn(data, &p); err != nil {
			lastErr = fmt.Errorf("decode %s sources: %w", d.name, err)
			continue
		}
		return p, nil
	}
	if lastErr != nil {
		return Plan{}, lastErr
	}
	return Plan{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitize(p Plan) Plan {
	p.PrimaryRegion = strings.ToUpper(strings.TrimSpace(p.PrimaryRegion))
	if p.PrimaryRegion == "" {
		p.PrimaryRegion = "US"
	}

	for i := range p.Feeds {
		f := &p.Feeds[i]
		f.ID = strings.TrimSpace(f.ID)
		f.Category = strings.ToLower(strings.TrimSpace(f.Category))
		f.Regions = trimAll(f.Regions, strings.ToUpper)
		f.Queries = trimAll(f.Queries, nil)
	}

	s := &p.Sections
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	s.ArticlePattern = strings.TrimSpace(s.ArticlePattern)
	for i := range s.Items {
		s.Items[i].ID = strings.TrimSpace(s.Items[i].ID)
		s.Items[i].Name = strings.TrimSpace(s.Items[i].Name)
	}

	for i := range p.Groups {
		g := &p.Groups[i]
		g.ID = strings.TrimSpace(g.ID)
		g.Categories = trimAll(g.Categories, strings.ToLower)
		g.Title = strings.TrimSpace(g.Title)
		g.Label = strings.TrimSpace(g.Label)
		if g.Label == "" {
			g.Label = g.ID
		}
		g.Rules = trimAll(g.Rules, nil)
	}
	return p
}

func trimAll(in []string, transform func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if transform != nil {
			v = transform(v)
		}
		out = append(out, v)
	}
	return out
}

// Validate checks ids, categories, regions and count policies.
func (p Plan) Validate() error {
	if len(p.Feeds) == 0 && len(p.Sections.Items) == 0 {
		return errors.New("sources file defines no feeds or sections")
	}
	if len(p.Groups) == 0 {
		return errors.New("sources file defines no groups")
	}

	regions := p.RegionTable()
	feedIDs := make(map[string]struct{}, len(p.Feeds))
	for i, f := range p.Feeds {
		if f.ID == "" {
			return fmt.Errorf("feed[%d]: id is required", i)
		}
		if _, dup := feedIDs[f.ID]; dup {
			return fmt.Errorf("duplicate feed id %q", f.ID)
		}
		feedIDs[f.ID] = struct{}{}
		if _, err := domain.ParseCategory(f.Category); err != nil {
			return fmt.Errorf("feed %q: %w", f.ID, err)
		}
		if len(f.Queries) == 0 {
			return fmt.Errorf("feed %q: at least one query is required", f.ID)
		}
		if len(f.Regions) == 0 {
			return fmt.Errorf("feed %q: at least one region is required", f.ID)
		}
		for _, r := range f.Regions {
			if !regions.Has(r) {
				return fmt.Errorf("feed %q: unknown region %q", f.ID, r)
			}
		}
	}

	for i, s := range p.Sections.Items {
		if s.ID == "" {
			return fmt.Errorf("section[%d]: id is required", i)
		}
	}

	groupIDs := make(map[string]struct{}, len(p.Groups))
	for i, g := range p.Groups {
		if g.ID == "" {
			return fmt.Errorf("group[%d]: id is required", i)
		}
		if _, dup := groupIDs[g.ID]; dup {
			return fmt.Errorf("duplicate group id %q", g.ID)
		}
		groupIDs[g.ID] = struct{}{}
		if g.Title == "" {
			return fmt.Errorf("group %q: title is required", g.ID)
		}
		if len(g.Categories) == 0 {
			return fmt.Errorf("group %q: at least one category is required", g.ID)
		}
		for _, c := range g.Categories {
			if _, err := domain.ParseCategory(c); err != nil {
				return fmt.Errorf("group %q: %w", g.ID, err)
			}
		}
		if err := g.Count.Validate(); err != nil {
			return fmt.Errorf("group %q: %w", g.ID, err)
		}
	}
	return nil
}

// RegionTable returns the built-in regions extended by the plan's own.
func (p Plan) RegionTable() *sources.RegionTable {
	table := sources.DefaultRegions()
	for _, r := range p.Regions {
		table = table.With(r)
	}
	return table
}

// CollectorOptions maps the plan onto collector tuning.
func (p Plan) CollectorOptions() sources.Options {
	return sources.Options{
		PrimaryRegion:  p.PrimaryRegion,
		SectionBaseURL: p.Sections.BaseURL,
		ArticlePattern: p.Sections.ArticlePattern,
		SectionCap:     p.Sections.PerSectionCap,
		MinTitleRunes:  p.Sections.MinTitleRunes,
	}
}

// Partitions returns group id -> categories for CandidateSet.Partition.
func (p Plan) Partitions() map[string][]domain.Category {
	out := make(map[string][]domain.Category, len(p.Groups))
	for _, g := range p.Groups {
		out[g.ID] = g.categories()
	}
	return out
}

// ParsedCategory returns the feed's parsed category; Validate guarantees it parses.
func (f Feed) ParsedCategory() domain.Category {
	c, _ := domain.ParseCategory(f.Category)
	return c
}

// Spec converts a group into a curation request spec.
func (g Group) Spec() curation.GroupSpec {
	cats := g.categories()
	var fallback domain.Category
	if len(cats) > 0 {
		fallback = cats[0]
	}
	return curation.GroupSpec{
		ID:              g.ID,
		Label:           g.Label,
		Perspective:     g.Perspective,
		Rules:           g.Rules,
		Count:           g.Count,
		Language:        g.Language,
		DefaultCategory: fallback,
	}
}

func (g Group) categories() []domain.Category {
	out := make([]domain.Category, 0, len(g.Categories))
	for _, raw := range g.Categories {
		if c, err := domain.ParseCategory(raw); err == nil {
			out = append(out, c)
		}
	}
	return out
}
