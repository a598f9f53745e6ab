package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
)

const (
	// MaxSummaryRunes is the hard cap on a rendered summary before the ellipsis.
	MaxSummaryRunes = 300
	// MaxTitleRunes caps an item headline inside its field.
	MaxTitleRunes = 200
	ellipsis      = "..."

	// Webhook embed limits, counted the way the webhook counts characters.
	maxFields           = 25
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxFieldValue       = 1024
	maxFooter           = 2048
	maxEmbedTotal       = 6000

	dateLayout      = "2006년 01월 02일"
	datePlaceholder = "{date}"
)

// Group is one curated list bound for a single message.
type Group struct {
	ID          string
	Title       string
	Description string
	Color       int
	Model       string
	Items       []domain.CuratedItem
}

// Assembler renders groups into embeds.
type Assembler struct {
	footer string
	now    func() time.Time
}

// NewAssembler builds an assembler; now defaults to time.Now.
func NewAssembler(footer string, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{footer: footer, now: now}
}

// Build renders one group as an embed, one field per curated item in order.
// Items that would push the embed past the webhook limits are left out; the
// ones kept are always a prefix of g.Items.
func (a *Assembler) Build(g Group) Embed {
	today := a.now().Format(dateLayout)
	embed := Embed{
		Title:       clampText(strings.ReplaceAll(g.Title, datePlaceholder, today), maxEmbedTitle),
		Description: clampText(strings.ReplaceAll(g.Description, datePlaceholder, today), maxEmbedDescription),
		Color:       g.Color,
		Fields:      make([]Field, 0, min(len(g.Items), maxFields)),
	}
	used := textLen(embed.Title) + textLen(embed.Description)
	if a.footer != "" {
		embed.Footer = &Footer{Text: clampText(a.footer, maxFooter)}
		used += textLen(embed.Footer.Text)
	}

	for i, item := range g.Items {
		if i == maxFields {
			break
		}
		f := Field{
			Name:  fieldName(i),
			Value: clampText(fieldValue(item), maxFieldValue),
		}
		size := textLen(f.Name) + textLen(f.Value)
		if used+size > maxEmbedTotal {
			break
		}
		used += size
		embed.Fields = append(embed.Fields, f)
	}
	return embed
}

// Payload wraps the group's embed in a webhook body.
func (a *Assembler) Payload(g Group) Payload {
	return Payload{Embeds: []Embed{a.Build(g)}}
}

func fieldName(i int) string {
	if i == 0 {
		return "⭐ [MUST READ] TOP 1"
	}
	return fmt.Sprintf("🔹 News %d", i+1)
}

func fieldValue(item domain.CuratedItem) string {
	return fmt.Sprintf("**분류**: %s\n**기사제목**: %s\n**내용요약**: %s\n**원문링크**: [🔗 기사 전문 보기](%s)\n\u200b",
		item.SourceLabel(),
		truncateRunes(item.Title, MaxTitleRunes),
		TruncateSummary(item.Summary),
		item.OriginalLink,
	)
}

// TruncateSummary keeps at most MaxSummaryRunes runes, appending an ellipsis when cut.
func TruncateSummary(s string) string {
	return truncateRunes(s, MaxSummaryRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + ellipsis
}

// textLen counts s in UTF-16 code units, which is how the webhook measures limits.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += unitLen(r)
	}
	return n
}

// unitLen is 2 for runes outside the Basic Multilingual Plane (most emoji).
func unitLen(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// clampText cuts s so that it fits limit code units, ellipsis included.
func clampText(s string, limit int) string {
	if textLen(s) <= limit {
		return s
	}
	budget := limit - len(ellipsis)
	var b strings.Builder
	n := 0
	for _, r := range s {
		w := unitLen(r)
		if n+w > budget {
			break
		}
		n += w
		b.WriteRune(r)
	}
	return b.String() + ellipsis
}
