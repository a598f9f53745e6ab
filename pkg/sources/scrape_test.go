package sources

import (
	"context"
	"net/http"
	"testing"
)

const sectionHTML = `
<html>
  <body>
    <nav><a href="/section/105">IT/과학</a></nav>
    <ul>
      <li><a href="https://n.news.naver.com/mnews/article/001/0001">
        <strong>정부, 스포츠테크   펀드 조성</strong>
      </a></li>
      <li><a href="">empty href</a></li>
      <li><a>no href</a></li>
    </ul>
  </body>
</html>`

func TestAnchorScraperExtractsAnchors(t *testing.T) {
	client := &fakeHTTPClient{
		t:      t,
		expect: map[string]string{"User-Agent": "Mozilla/5.0"},
		responses: map[string]fakeResponse{
			"https://portal/section/105": {body: []byte(sectionHTML), statusCode: http.StatusOK},
		},
	}

	anchors, err := NewAnchorScraper(client).Anchors(context.Background(), "https://portal/section/105", BrowserHeaders("Mozilla/5.0"))
	if err != nil {
		t.Fatalf("Anchors: %v", err)
	}
	if len(anchors) != 2 {
		t.Fatalf("expected 2 anchors, got %d: %#v", len(anchors), anchors)
	}
	if anchors[1].Text != "정부, 스포츠테크 펀드 조성" {
		t.Fatalf("text not normalized: %q", anchors[1].Text)
	}
	if anchors[1].Href != "https://n.news.naver.com/mnews/article/001/0001" {
		t.Fatalf("unexpected href %q", anchors[1].Href)
	}
}

func TestAnchorScraperPropagatesStatus(t *testing.T) {
	client := &fakeHTTPClient{t: t, responses: map[string]fakeResponse{
		"https://portal/section/1": {body: []byte("nope"), statusCode: http.StatusForbidden},
	}}
	if _, err := NewAnchorScraper(client).Anchors(context.Background(), "https://portal/section/1", nil); err == nil {
		t.Fatalf("expected error on 403")
	}
}
