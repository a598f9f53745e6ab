package plan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
)

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return file
}

func TestLoadYAML(t *testing.T) {
	file := writePlan(t, "sources.yaml", `
primary_region: us
regions:
  - { code: DE, hl: de, gl: DE, ceid: "DE:de", label: 독일 }
feeds:
  - id: global
    category: Overseas
    regions: [us, de]
    queries: [" AI business ", ""]
sections:
  items:
    - { id: "105", name: IT/과학 }
groups:
  - id: overseas
    categories: [overseas]
    title: "🌎 {date}"
    color: 3447003
    count: { min: 3, max: 5 }
`)

	p, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.PrimaryRegion != "US" {
		t.Fatalf("PrimaryRegion = %q", p.PrimaryRegion)
	}
	if got := p.Feeds[0].Queries; len(got) != 1 || got[0] != "AI business" {
		t.Fatalf("queries not sanitized: %#v", got)
	}
	if p.Feeds[0].ParsedCategory() != domain.CategoryOverseas {
		t.Fatalf("category = %q", p.Feeds[0].Category)
	}
	if label := p.RegionTable().Lookup("DE").Label; label != "독일" {
		t.Fatalf("custom region label = %q", label)
	}
	if p.Groups[0].Label != "overseas" {
		t.Fatalf("label should default to id, got %q", p.Groups[0].Label)
	}
	spec := p.Groups[0].Spec()
	if spec.Count.Max != 5 || spec.DefaultCategory != domain.CategoryOverseas {
		t.Fatalf("unexpected spec %+v", spec)
	}
}

func TestLoadJSON(t *testing.T) {
	file := writePlan(t, "sources.json", `{
  "feeds": [{"id": "kr", "category": "policy", "regions": ["KR"], "queries": ["정책"]}],
  "groups": [{"id": "domestic", "categories": ["policy"], "title": "t", "count": {"exact": 5, "min": 3}}]
}`)

	p, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Groups[0].Count.Exact != 5 {
		t.Fatalf("count = %+v", p.Groups[0].Count)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadRejectsInvalidPlans(t *testing.T) {
	cases := map[string]string{
		"unknown category": `
feeds: [{id: a, category: sports, regions: [US], queries: [q]}]
groups: [{id: g, categories: [overseas], title: t, count: {exact: 3}}]`,
		"duplicate feed": `
feeds:
  - {id: a, category: overseas, regions: [US], queries: [q]}
  - {id: a, category: overseas, regions: [US], queries: [q]}
groups: [{id: g, categories: [overseas], title: t, count: {exact: 3}}]`,
		"unknown region": `
feeds: [{id: a, category: overseas, regions: [ZZ], queries: [q]}]
groups: [{id: g, categories: [overseas], title: t, count: {exact: 3}}]`,
		"bad count": `
feeds: [{id: a, category: overseas, regions: [US], queries: [q]}]
groups: [{id: g, categories: [overseas], title: t, count: {exact: 3, max: 5}}]`,
		"no groups": `
feeds: [{id: a, category: overseas, regions: [US], queries: [q]}]`,
		"duplicate group": `
feeds: [{id: a, category: overseas, regions: [US], queries: [q]}]
groups:
  - {id: g, categories: [overseas], title: t, count: {exact: 3}}
  - {id: g, categories: [policy], title: t, count: {exact: 3}}`,
	}

	for name, content := range cases {
		if _, err := Load(writePlan(t, "sources.yaml", content)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDefaultPlanIsValid(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("default plan invalid: %v", err)
	}
	if p.Groups[0].ID != "domestic" || p.Groups[1].ID != "overseas" {
		t.Fatalf("unexpected delivery order: %s, %s", p.Groups[0].ID, p.Groups[1].ID)
	}
	parts := p.Partitions()
	if len(parts["domestic"]) != 2 || parts["overseas"][0] != domain.CategoryOverseas {
		t.Fatalf("unexpected partitions %#v", parts)
	}
}

func TestShippedSourcesFileMatchesDefault(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "configs", "sources.yaml"))
	if err != nil {
		t.Fatalf("Load shipped plan: %v", err)
	}
	def := Default()
	if len(p.Feeds) != len(def.Feeds) || len(p.Groups) != len(def.Groups) {
		t.Fatalf("shipped plan diverges from default")
	}
	for i := range def.Groups {
		if p.Groups[i].Color != def.Groups[i].Color || p.Groups[i].Title != def.Groups[i].Title {
			t.Fatalf("group %d differs: %+v vs %+v", i, p.Groups[i], def.Groups[i])
		}
	}
}
