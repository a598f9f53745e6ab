package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
)

// ReportItem is one curated item as mirrored downstream.
type ReportItem struct {
	Title    string          `json:"title"`
	Summary  string          `json:"summary"`
	Link     string          `json:"original_link"`
	Source   string          `json:"source"`
	Category domain.Category `json:"category,omitempty"`
}

// ReportEvent is published for every curated group delivered in a run.
type ReportEvent struct {
	RunID       string       `json:"run_id"`
	GroupID     string       `json:"group_id"`
	Title       string       `json:"title"`
	Model       string       `json:"model,omitempty"`
	Items       []ReportItem `json:"items"`
	DeliveredAt time.Time    `json:"delivered_at"`
}

// NewReportEvent builds the mirror event for one delivered group.
func NewReportEvent(runID, groupID, title, model string, items []domain.CuratedItem) ReportEvent {
	out := make([]ReportItem, 0, len(items))
	for _, it := range items {
		out = append(out, ReportItem{
			Title:    it.Title,
			Summary:  it.Summary,
			Link:     it.OriginalLink,
			Source:   it.SourceLabel(),
			Category: it.Provenance.Category,
		})
	}
	return ReportEvent{
		RunID:       runID,
		GroupID:     groupID,
		Title:       title,
		Model:       model,
		Items:       out,
		DeliveredAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by queue/topic sinks.
func (e ReportEvent) attributes() map[string]string {
	return map[string]string{
		"run_id":   e.RunID,
		"group_id": e.GroupID,
	}
}
