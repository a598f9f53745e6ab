package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateSetFirstSeenWins(t *testing.T) {
	set := NewCandidateSet()
	require.True(t, set.Add(NewsItem{Title: "first", Link: "https://x/a"}))
	require.False(t, set.Add(NewsItem{Title: "second", Link: "https://x/a"}))
	require.False(t, set.Add(NewsItem{Title: "blank", Link: "  "}))

	items := set.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].Title)
}

func TestCandidateSetPartitionByCategory(t *testing.T) {
	set := NewCandidateSet(
		NewsItem{Link: "1", Provenance: Provenance{Category: CategoryOverseas}},
		NewsItem{Link: "2", Provenance: Provenance{Category: CategoryPolicy}},
		NewsItem{Link: "3", Provenance: Provenance{Category: CategoryDomestic}},
		NewsItem{Link: "1", Provenance: Provenance{Category: CategoryDomestic}},
	)

	groups := set.Partition(map[string][]Category{
		"overseas": {CategoryOverseas},
		"domestic": {CategoryPolicy, CategoryDomestic},
	})

	require.Len(t, groups["overseas"], 1)
	require.Len(t, groups["domestic"], 2)
	assert.Equal(t, "2", groups["domestic"][0].Link)
	assert.Equal(t, "3", groups["domestic"][1].Link)
}

func TestCuratedItemSourceLabelPrefersProvenance(t *testing.T) {
	item := CuratedItem{
		Source:     "[해외] whatever the model said",
		Provenance: Provenance{Category: CategoryOverseas, Origin: "일본 (Google)"},
	}
	assert.Equal(t, "[해외] 일본 (Google)", item.SourceLabel())

	item.Provenance = Provenance{}
	assert.Equal(t, "[해외] whatever the model said", item.SourceLabel())

	item.Source = ""
	assert.Equal(t, "[기타]", item.SourceLabel())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Policy ")
	require.NoError(t, err)
	assert.Equal(t, CategoryPolicy, c)

	_, err = ParseCategory("sports")
	require.Error(t, err)
}
