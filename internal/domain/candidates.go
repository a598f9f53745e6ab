package domain

import "strings"

// CandidateSet is an ordered collection of news items unique by link.
// The first item added for a given link wins.
type CandidateSet struct {
	items []NewsItem
	seen  map[string]struct{}
}

// NewCandidateSet builds a set seeded with items (duplicates dropped).
func NewCandidateSet(items ...NewsItem) *CandidateSet {
	s := &CandidateSet{seen: make(map[string]struct{}, len(items))}
	s.AddAll(items)
	return s
}

// Add inserts item unless its link is empty or already present.
func (s *CandidateSet) Add(item NewsItem) bool {
	key := strings.TrimSpace(item.Link)
	if key == "" {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, item)
	return true
}

// AddAll inserts items in order and returns how many were accepted.
func (s *CandidateSet) AddAll(items []NewsItem) int {
	added := 0
	for _, it := range items {
		if s.Add(it) {
			added++
		}
	}
	return added
}

// Items returns a copy of the items in insertion order.
func (s *CandidateSet) Items() []NewsItem {
	if s == nil || len(s.items) == 0 {
		return nil
	}
	out := make([]NewsItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of unique items.
func (s *CandidateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Filter returns the items whose category is one of cats, preserving order.
func (s *CandidateSet) Filter(cats ...Category) []NewsItem {
	if s == nil {
		return nil
	}
	want := make(map[Category]struct{}, len(cats))
	for _, c := range cats {
		want[c] = struct{}{}
	}
	var out []NewsItem
	for _, it := range s.items {
		if _, ok := want[it.Provenance.Category]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Partition splits the set into named groups by category membership.
// An item lands in every group that lists its category.
func (s *CandidateSet) Partition(groups map[string][]Category) map[string][]NewsItem {
	out := make(map[string][]NewsItem, len(groups))
	for name, cats := range groups {
		out[name] = s.Filter(cats...)
	}
	return out
}
