package domain

import (
	"fmt"
	"strings"
	"time"
)

// Domain contains core models shared by collection, curation and delivery.

// Category is the stable provenance class of a news item.
type Category string

const (
	CategoryOverseas Category = "overseas"
	CategoryPolicy   Category = "policy"
	CategoryDomestic Category = "domestic"
)

var categoryTags = map[Category]string{
	CategoryOverseas: "[해외]",
	CategoryPolicy:   "[정책]",
	CategoryDomestic: "[국내]",
}

// Tag returns the bracketed display tag for the category.
func (c Category) Tag() string {
	if tag, ok := categoryTags[c]; ok {
		return tag
	}
	return "[기타]"
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryTags[c]
	return ok
}

// ParseCategory maps a config identifier onto a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Provenance records where a candidate came from.
type Provenance struct {
	Category Category `json:"category"`
	Origin   string   `json:"origin"`
}

// Label renders the provenance as "<tag> <origin>".
func (p Provenance) Label() string {
	origin := strings.TrimSpace(p.Origin)
	if origin == "" {
		return p.Category.Tag()
	}
	return p.Category.Tag() + " " + origin
}

// NewsItem is a collected, pre-curation candidate.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source"`
	Snippet     string     `json:"snippet,omitempty"`
	Provenance  Provenance `json:"provenance"`
	PublishedAt time.Time  `json:"published_at,omitempty"`
}

// CuratedItem is a candidate selected and summarized by the generative model.
type CuratedItem struct {
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	OriginalLink string     `json:"original_link"`
	Source       string     `json:"source"`
	Provenance   Provenance `json:"-"`
}

// SourceLabel prefers the collected provenance over the model-echoed source text.
func (c CuratedItem) SourceLabel() string {
	if c.Provenance.Category.Valid() && strings.TrimSpace(c.Provenance.Origin) != "" {
		return c.Provenance.Label()
	}
	if s := strings.TrimSpace(c.Source); s != "" {
		return s
	}
	if c.Provenance.Category.Valid() {
		return c.Provenance.Category.Tag()
	}
	return "[기타]"
}
