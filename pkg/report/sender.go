package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
)

// Outcome records the delivery of one group.
type Outcome struct {
	Group   Group
	Payload Payload
	Status  int
	Sent    bool
	Err     error
}

// Summary is the result of one AssembleAndSend call.
type Summary struct {
	Outcomes []Outcome
	Skipped  string
}

// Delivered returns the outcomes that reached the webhook.
func (s Summary) Delivered() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Sent {
			out = append(out, o)
		}
	}
	return out
}

// Sender posts assembled groups to a webhook in order.
type Sender struct {
	client     httpclient.Client
	webhookURL string
	delay      time.Duration
	assembler  *Assembler
	log        logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewSender builds a sender. An empty webhookURL makes every send a logged no-op.
func NewSender(client httpclient.Client, webhookURL string, delay time.Duration, assembler *Assembler, log logger.Logger) *Sender {
	if assembler == nil {
		assembler = NewAssembler("", nil)
	}
	return &Sender{
		client:     client,
		webhookURL: webhookURL,
		delay:      delay,
		assembler:  assembler,
		log:        logger.Ensure(log),
		sleep:      sleepContext,
	}
}

// AssembleAndSend delivers each non-empty group as its own message, in the
// given order, pausing between sends. Failures are logged per group and never
// stop later groups.
func (s *Sender) AssembleAndSend(ctx context.Context, groups []Group) Summary {
	if s.webhookURL == "" {
		s.log.WarnObj("delivery skipped", "delivery_meta", map[string]any{"reason": "webhook url not configured"})
		return Summary{Skipped: "webhook url not configured"}
	}

	pending := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Items) > 0 {
			pending = append(pending, g)
		}
	}
	if len(pending) == 0 {
		s.log.WarnObj("delivery skipped", "delivery_meta", map[string]any{"reason": "no curated items in any group"})
		return Summary{Skipped: "no curated items in any group"}
	}

	var summary Summary
	for i, g := range pending {
		if i > 0 && s.delay > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				s.log.WarnObj("delivery interrupted", "delivery_meta", map[string]any{
					"remaining": len(pending) - i,
					"error":     err.Error(),
				})
				break
			}
		}
		summary.Outcomes = append(summary.Outcomes, s.send(ctx, g))
	}
	return summary
}

func (s *Sender) send(ctx context.Context, g Group) Outcome {
	payload := s.assembler.Payload(g)
	out := Outcome{Group: g, Payload: payload}
	title := payload.Embeds[0].Title
	if kept := len(payload.Embeds[0].Fields); kept < len(g.Items) {
		s.log.WarnObj("curated items trimmed to fit embed limits", "delivery_meta", map[string]any{
			"group":   g.ID,
			"curated": len(g.Items),
			"kept":    kept,
		})
	}

	resp, err := s.client.PostJSON(ctx, s.webhookURL, nil, payload)
	if err != nil {
		out.Err = fmt.Errorf("%w: group %s: %v", domain.ErrDelivery, g.ID, err)
		s.log.ErrorObj("webhook delivery failed", "delivery_error", map[string]any{
			"group": g.ID,
			"title": title,
			"error": out.Err.Error(),
		})
		return out
	}

	out.Status = resp.StatusCode()
	if out.Status != http.StatusOK && out.Status != http.StatusNoContent {
		out.Err = fmt.Errorf("%w: group %s returned status %d", domain.ErrDelivery, g.ID, out.Status)
		s.log.ErrorObj("webhook delivery rejected", "delivery_error", map[string]any{
			"group":  g.ID,
			"title":  title,
			"status": out.Status,
			"body":   httpclient.BodySnippet(resp.Body()),
		})
		return out
	}

	out.Sent = true
	s.log.InfoObj("webhook delivered", "delivery_meta", map[string]any{
		"group":  g.ID,
		"title":  title,
		"items":  len(g.Items),
		"status": out.Status,
	})
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
