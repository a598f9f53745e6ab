package curation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
)

var (
	fenceRe = regexp.MustCompile("```(?:json|JSON)?")
	spanRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// ParseCuratedItems extracts the curated array from free model text.
// Code fences and surrounding commentary are tolerated. The count is not
// checked: any well-formed array is returned, including an empty one.
func ParseCuratedItems(text string) ([]domain.CuratedItem, error) {
	clean := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if clean == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedOutput)
	}

	if span := spanRe.FindString(clean); span != "" {
		var items []domain.CuratedItem
		if err := json.Unmarshal([]byte(span), &items); err == nil {
			return compact(items), nil
		}
	}

	// The greedy span fails when commentary carries brackets of its own.
	// Fall back to the first decodable array of objects at any '['.
	var empty []domain.CuratedItem
	foundEmpty := false
	for i := strings.IndexByte(clean, '['); i >= 0; {
		var items []domain.CuratedItem
		if err := json.NewDecoder(strings.NewReader(clean[i:])).Decode(&items); err == nil {
			items = compact(items)
			if len(items) > 0 {
				return items, nil
			}
			if !foundEmpty {
				empty, foundEmpty = items, true
			}
		}
		next := strings.IndexByte(clean[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	if foundEmpty {
		return empty, nil
	}

	return nil, fmt.Errorf("%w: no JSON array of curated items found", domain.ErrMalformedOutput)
}

// compact trims fields and drops objects that carry nothing.
func compact(items []domain.CuratedItem) []domain.CuratedItem {
	out := make([]domain.CuratedItem, 0, len(items))
	for _, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		it.Summary = strings.TrimSpace(it.Summary)
		it.OriginalLink = strings.TrimSpace(it.OriginalLink)
		it.Source = strings.TrimSpace(it.Source)
		if it.Title == "" && it.Summary == "" && it.OriginalLink == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
