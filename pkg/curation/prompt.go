package curation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
)

// GroupSpec describes one curation group: who evaluates, by which rules,
// and how many items come back.
type GroupSpec struct {
	ID              string
	Label           string
	Perspective     string
	Rules           []string
	Count           CountPolicy
	Language        string
	DefaultCategory domain.Category
}

const (
	defaultPerspective = "AI/스포츠 스타트업 리서치 팀장"
	defaultLanguage    = "한국어"
)

// candidate is the reduced form sent to the model; snippets are dropped.
type candidate struct {
	Title  string `json:"t"`
	Link   string `json:"l"`
	Source string `json:"s"`
}

var promptTmpl = template.Must(template.New("curation").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(`너는 '{{.Perspective}}'이야.
이번 작업은 **[{{.Label}}]** 관련 뉴스 중 우리에게 가장 가치 있는 **Top {{.Target}}**을 선정하는 거야.

[후보군 데이터]:
{{.Candidates}}

[선별 가이드라인]:
1. **{{.Label}}** 관점에서 가장 중요한 소식을 우선해.
{{- range $i, $r := .Rules}}
{{add $i 2}}. {{$r}}
{{- end}}

[작성 양식]:
- **수량**: {{.Count}}
- **순서**: 가장 중요한 뉴스가 1번에 오도록 배치해.
- **요약**: 비즈니스 인사이트가 담긴 1-2줄 요약. 제목과 요약은 {{.Language}}로 작성해.
- **링크**: original_link에는 후보군의 l 값을 그대로 복사해.

[출력 포맷 - JSON Array Only]:
다른 설명 없이 아래 필드만 가진 객체의 JSON 배열만 출력해.
[
  {
    "title": "기사 제목",
    "summary": "핵심 인사이트",
    "original_link": "링크",
    "source": "출처 표기"
  }
]
`))

// BuildPrompt renders the curation request for group over items.
func BuildPrompt(group GroupSpec, items []domain.NewsItem) (string, error) {
	reduced := make([]candidate, 0, len(items))
	for _, it := range items {
		reduced = append(reduced, candidate{Title: it.Title, Link: it.Link, Source: it.Source})
	}

	var encoded bytes.Buffer
	enc := json.NewEncoder(&encoded)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reduced); err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}

	perspective := strings.TrimSpace(group.Perspective)
	if perspective == "" {
		perspective = defaultPerspective
	}
	language := strings.TrimSpace(group.Language)
	if language == "" {
		language = defaultLanguage
	}
	label := strings.TrimSpace(group.Label)
	if label == "" {
		label = group.ID
	}

	var out bytes.Buffer
	err := promptTmpl.Execute(&out, map[string]any{
		"Perspective": perspective,
		"Label":       label,
		"Target":      group.Count.Target(),
		"Candidates":  strings.TrimSpace(encoded.String()),
		"Rules":       group.Rules,
		"Count":       group.Count.Describe(),
		"Language":    language,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out.String(), nil
}
