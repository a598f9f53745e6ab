package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient fails the test if used; it records every call.
type countingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *countingClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return nil, errors.New("unexpected call")
}

func (c *countingClient) PostJSON(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return nil, errors.New("unexpected call")
}

func group(id string, n int) Group {
	items := make([]domain.CuratedItem, n)
	for i := range items {
		items[i] = domain.CuratedItem{Title: id, Summary: "s", OriginalLink: "https://x/" + id}
	}
	return Group{ID: id, Title: id, Items: items}
}

func TestAssembleAndSendWithoutWebhookMakesNoCalls(t *testing.T) {
	client := &countingClient{}
	s := NewSender(client, "", time.Second, nil, nil)

	summary := s.AssembleAndSend(context.Background(), []Group{group("a", 2)})
	assert.Equal(t, 0, client.calls)
	assert.Empty(t, summary.Outcomes)
	assert.NotEmpty(t, summary.Skipped)
}

func TestAssembleAndSendAllEmptyMakesNoCalls(t *testing.T) {
	client := &countingClient{}
	s := NewSender(client, "https://hook", time.Second, nil, nil)

	summary := s.AssembleAndSend(context.Background(), []Group{group("a", 0), group("b", 0)})
	assert.Equal(t, 0, client.calls)
	assert.Empty(t, summary.Outcomes)
}

type hookRecorder struct {
	mu       sync.Mutex
	titles   []string
	statuses map[string]int
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var p Payload
	_ = json.Unmarshal(raw, &p)

	h.mu.Lock()
	title := p.Embeds[0].Title
	h.titles = append(h.titles, title)
	status, ok := h.statuses[title]
	h.mu.Unlock()

	if !ok {
		status = http.StatusNoContent
	}
	w.WriteHeader(status)
}

func TestAssembleAndSendPreservesOrderAndDelay(t *testing.T) {
	rec := &hookRecorder{statuses: map[string]int{"first": http.StatusInternalServerError}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	s := NewSender(httpclient.NewRestyClient(5*time.Second), srv.URL, 250*time.Millisecond, nil, nil)
	var pauses []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	summary := s.AssembleAndSend(context.Background(), []Group{group("first", 1), group("skipped", 0), group("second", 2), group("third", 1)})

	assert.Equal(t, []string{"first", "second", "third"}, rec.titles)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, pauses)

	require.Len(t, summary.Outcomes, 3)
	assert.False(t, summary.Outcomes[0].Sent)
	assert.True(t, errors.Is(summary.Outcomes[0].Err, domain.ErrDelivery))
	assert.Equal(t, http.StatusInternalServerError, summary.Outcomes[0].Status)
	assert.True(t, summary.Outcomes[1].Sent)
	assert.True(t, summary.Outcomes[2].Sent)
	assert.Len(t, summary.Delivered(), 2)
}

func TestAssembleAndSendAccepts200(t *testing.T) {
	rec := &hookRecorder{statuses: map[string]int{"ok": http.StatusOK}}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	s := NewSender(httpclient.NewRestyClient(5*time.Second), srv.URL, 0, nil, nil)
	summary := s.AssembleAndSend(context.Background(), []Group{group("ok", 1)})
	require.Len(t, summary.Outcomes, 1)
	assert.True(t, summary.Outcomes[0].Sent)
}

func TestAssembleAndSendTransportErrorContinues(t *testing.T) {
	client := &countingClient{}
	s := NewSender(client, "https://hook.invalid", time.Millisecond, nil, nil)
	s.sleep = func(context.Context, time.Duration) error { return nil }

	summary := s.AssembleAndSend(context.Background(), []Group{group("a", 1), group("b", 1)})
	assert.Equal(t, 2, client.calls)
	require.Len(t, summary.Outcomes, 2)
	for _, o := range summary.Outcomes {
		assert.True(t, errors.Is(o.Err, domain.ErrDelivery))
	}
}

func TestAssembleAndSendStopsWhenCancelledDuringPause(t *testing.T) {
	client := &countingClient{}
	s := NewSender(client, "https://hook.invalid", time.Hour, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := s.AssembleAndSend(ctx, []Group{group("a", 1), group("b", 1)})
	assert.Equal(t, 1, client.calls)
	assert.Len(t, summary.Outcomes, 1)
}
