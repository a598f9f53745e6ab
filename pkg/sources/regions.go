package sources

import (
	"strings"
)

// Region holds the locale parameters of one search edition.
type Region struct {
	Code     string `json:"code" yaml:"code"`
	Language string `json:"hl" yaml:"hl"`
	Country  string `json:"gl" yaml:"gl"`
	CEID     string `json:"ceid" yaml:"ceid"`
	Label    string `json:"label" yaml:"label"`
}

// RegionTable is an immutable region lookup. Extending it yields a new table,
// so lookups against an existing table never observe the change.
type RegionTable struct {
	defaultCode string
	regions     map[string]Region
}

// NewRegionTable builds a table; defaultCode must name one of regions.
func NewRegionTable(defaultCode string, regions ...Region) *RegionTable {
	t := &RegionTable{
		defaultCode: normalizeCode(defaultCode),
		regions:     make(map[string]Region, len(regions)),
	}
	for _, r := range regions {
		r.Code = normalizeCode(r.Code)
		if r.Code == "" {
			continue
		}
		t.regions[r.Code] = r
	}
	return t
}

// DefaultRegions returns the built-in search editions.
func DefaultRegions() *RegionTable {
	return NewRegionTable("US",
		Region{Code: "US", Language: "en-US", Country: "US", CEID: "US:en", Label: "미국/글로벌"},
		Region{Code: "GB", Language: "en-GB", Country: "GB", CEID: "GB:en", Label: "영국/유럽"},
		Region{Code: "JP", Language: "ja", Country: "JP", CEID: "JP:ja", Label: "일본"},
		Region{Code: "HK", Language: "en-HK", Country: "HK", CEID: "HK:en", Label: "중국/아시아"},
		Region{Code: "KR", Language: "ko", Country: "KR", CEID: "KR:ko", Label: "한국/정책"},
	)
}

// With returns a copy of the table with r added or replaced.
func (t *RegionTable) With(r Region) *RegionTable {
	out := &RegionTable{
		defaultCode: t.defaultCode,
		regions:     make(map[string]Region, len(t.regions)+1),
	}
	for k, v := range t.regions {
		out.regions[k] = v
	}
	r.Code = normalizeCode(r.Code)
	if r.Code != "" {
		out.regions[r.Code] = r
	}
	return out
}

// Lookup returns the region for code, falling back to the default region.
func (t *RegionTable) Lookup(code string) Region {
	if r, ok := t.regions[normalizeCode(code)]; ok {
		return r
	}
	return t.regions[t.defaultCode]
}

// Has reports whether code is configured (without fallback).
func (t *RegionTable) Has(code string) bool {
	_, ok := t.regions[normalizeCode(code)]
	return ok
}

// DefaultCode returns the fallback region code.
func (t *RegionTable) DefaultCode() string { return t.defaultCode }

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
