package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
	"github.com/samvad-hq/samvad-news-briefing/internal/plan"
	"github.com/samvad-hq/samvad-news-briefing/internal/storage"
	"github.com/samvad-hq/samvad-news-briefing/pkg/curation"
	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
	"github.com/samvad-hq/samvad-news-briefing/pkg/publishers"
	"github.com/samvad-hq/samvad-news-briefing/pkg/report"
	"github.com/samvad-hq/samvad-news-briefing/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeeds struct {
	fail bool
}

// FetchFeed returns two entries per URL; the US edition also returns a link shared with GB.
func (f *fakeFeeds) FetchFeed(_ context.Context, url string) ([]sources.FeedEntry, error) {
	if f.fail {
		return nil, errors.New("unreachable")
	}
	entries := []sources.FeedEntry{
		{Title: "entry for " + url, Link: url + "#1"},
		{Title: "shared story", Link: "https://news.example/shared"},
	}
	return entries, nil
}

type fakeScraper struct {
	fail bool
}

func (f *fakeScraper) Anchors(_ context.Context, url string, _ map[string]string) ([]sources.Anchor, error) {
	if f.fail {
		return nil, errors.New("blocked")
	}
	return []sources.Anchor{
		{Text: "메뉴", Href: "/section/100"},
		{Text: "국내 AI 반도체 지원책 발표 " + url, Href: url + "/mnews/article/001/1"},
	}, nil
}

var linkRe = regexp.MustCompile(`"l":"([^"]+)"`)

// modelServer answers generateContent by picking the first candidate link of the prompt.
func modelServer(t *testing.T, status int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &req)
		prompt := req.Contents[0].Parts[0].Text
		m := linkRe.FindStringSubmatch(prompt)
		if m == nil {
			t.Errorf("prompt without candidates: %s", prompt)
			return
		}
		text := fmt.Sprintf("요청하신 결과입니다.\n```json\n[{\"title\":\"선별\",\"summary\":\"%s\",\"original_link\":\"%s\",\"source\":\"?\"}]\n```", strings.Repeat("요", 320), m[1])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type hook struct {
	mu     sync.Mutex
	titles []string
}

func (h *hook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p report.Payload
	_ = json.NewDecoder(r.Body).Decode(&p)
	h.mu.Lock()
	h.titles = append(h.titles, p.Embeds[0].Title)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type recordingPublisher struct {
	events []publishers.ReportEvent
}

func (r *recordingPublisher) ID() string   { return "rec" }
func (r *recordingPublisher) Type() string { return "test" }
func (r *recordingPublisher) Publish(_ context.Context, evt publishers.ReportEvent) error {
	r.events = append(r.events, evt)
	return nil
}

type harness struct {
	briefing   *Briefing
	hook       *hook
	hookCalls  *atomic.Int32
	modelCalls *atomic.Int32
	mirror     *recordingPublisher
	storePath  string
}

func newHarness(t *testing.T, feeds *fakeFeeds, scraper *fakeScraper, modelStatus int) *harness {
	t.Helper()

	h := &harness{hook: &hook{}, hookCalls: &atomic.Int32{}, modelCalls: &atomic.Int32{}, mirror: &recordingPublisher{}}
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hookCalls.Add(1)
		h.hook.ServeHTTP(w, r)
	}))
	t.Cleanup(hookSrv.Close)
	model := modelServer(t, modelStatus, h.modelCalls)

	p := plan.Default()
	client := httpclient.NewRestyClient(5 * time.Second)
	gemini := curation.NewGeminiClient(client, model.URL, "k")

	h.storePath = filepath.Join(t.TempDir(), "reports.db")
	store, err := storage.NewStore("bbolt", h.storePath, storage.Options{})
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC) }
	h.briefing = &Briefing{
		plan:      p,
		collector: sources.NewCollector(sources.NewPlanner("", p.RegionTable()), feeds, scraper, p.CollectorOptions(), nil),
		engine:    curation.NewEngine(gemini, curation.NewModelSelector(gemini, "gemini-test", nil, nil), nil),
		sender:    report.NewSender(client, hookSrv.URL, time.Millisecond, report.NewAssembler("footer", clock), nil),
		fanout:    publishers.NewFanout([]publishers.Publisher{h.mirror}),
		store:     store,
		runID:     "run-test",
		log:       logger.NopLogger{},
	}
	return h
}

func TestRunDeliversGroupsInPlanOrder(t *testing.T) {
	h := newHarness(t, &fakeFeeds{}, &fakeScraper{}, http.StatusOK)

	summary, err := h.briefing.Run(context.Background())
	require.NoError(t, err)

	// 4 regions x 4 queries + 1 region x 5 queries, each adding one unique link, plus one shared link, plus 3 sections.
	assert.Equal(t, 16+5+1+3, summary.Candidates)
	assert.Equal(t, map[string]int{"domestic": 1, "overseas": 1}, summary.Curated)
	assert.Equal(t, 2, summary.Delivered)
	assert.Equal(t, 2, summary.Mirrored)

	require.Len(t, h.hook.titles, 2)
	assert.Equal(t, "🇰🇷 2026년 10월 19일 국내 AI/스포츠 정책 & 산업", h.hook.titles[0])
	assert.Equal(t, "🌎 2026년 10월 19일 해외 글로벌 테크 트렌드", h.hook.titles[1])

	require.Len(t, h.mirror.events, 2)
	assert.Equal(t, "domestic", h.mirror.events[0].GroupID)
	assert.Equal(t, "run-test", h.mirror.events[0].RunID)
	assert.Equal(t, "gemini-test", h.mirror.events[1].Model)

	store, err := storage.NewStore("bbolt", h.storePath, storage.Options{})
	require.NoError(t, err)
	defer store.Close()
	recs, err := store.Reports("run-test")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var archived report.Payload
	require.NoError(t, json.Unmarshal(recs[0].Payload, &archived))
	value := archived.Embeds[0].Fields[0].Value
	assert.Contains(t, value, strings.Repeat("요", 300)+"...")
	assert.NotContains(t, value, strings.Repeat("요", 301))
}

func TestRunWithNothingCollectedSkipsCurationAndDelivery(t *testing.T) {
	h := newHarness(t, &fakeFeeds{fail: true}, &fakeScraper{fail: true}, http.StatusOK)

	summary, err := h.briefing.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Candidates)
	assert.EqualValues(t, 0, h.modelCalls.Load())
	assert.EqualValues(t, 0, h.hookCalls.Load())
}

func TestRunWithModelFailureDeliversNothing(t *testing.T) {
	h := newHarness(t, &fakeFeeds{}, &fakeScraper{}, http.StatusInternalServerError)

	summary, err := h.briefing.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, h.modelCalls.Load())
	assert.EqualValues(t, 0, h.hookCalls.Load())
	assert.Zero(t, summary.Delivered)
	assert.Empty(t, h.mirror.events)
}

func TestRunUninitialized(t *testing.T) {
	var b *Briefing
	_, err := b.Run(context.Background())
	require.Error(t, err)
}
