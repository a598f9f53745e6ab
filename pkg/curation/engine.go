package curation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
)

// Result is the outcome of curating one group. Items is empty whenever Err is set.
type Result struct {
	Items []domain.CuratedItem
	Model string
	Err   error
}

// Engine delegates selection and summarization of a candidate group to a model.
type Engine struct {
	client   ModelClient
	selector *ModelSelector
	log      logger.Logger
}

// NewEngine builds an engine. A nil selector discovers models through client.
func NewEngine(client ModelClient, selector *ModelSelector, log logger.Logger) *Engine {
	log = logger.Ensure(log)
	if selector == nil {
		selector = NewModelSelector(client, "", nil, log)
	}
	return &Engine{client: client, selector: selector, log: log}
}

// Curate asks the model for the group's top items. It never fails the caller:
// model and parse errors are logged and yield an empty Result carrying Err.
// Empty input returns immediately without any network call.
func (e *Engine) Curate(ctx context.Context, items []domain.NewsItem, group GroupSpec) Result {
	if len(items) == 0 {
		return Result{}
	}

	prompt, err := BuildPrompt(group, items)
	if err != nil {
		return e.fail(group, Result{Err: err})
	}

	model := e.selector.Select(ctx)
	start := time.Now()
	e.log.InfoObj("curation started", "curation_meta", map[string]any{
		"group":      group.ID,
		"candidates": len(items),
		"target":     group.Count.Target(),
		"model":      model,
	})

	text, err := e.client.Generate(ctx, model, prompt)
	if err != nil {
		return e.fail(group, Result{Model: model, Err: err})
	}

	curated, err := ParseCuratedItems(text)
	if err != nil {
		e.log.WarnObj("model output not parseable", "model_output", map[string]any{
			"group": group.ID,
			"raw":   text,
		})
		return e.fail(group, Result{Model: model, Err: err})
	}

	attachProvenance(curated, items, group.DefaultCategory)
	e.log.InfoObj("curation completed", "curation_meta", map[string]any{
		"group":      group.ID,
		"model":      model,
		"selected":   len(curated),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return Result{Items: curated, Model: model}
}

func (e *Engine) fail(group GroupSpec, r Result) Result {
	kind := "curation"
	switch {
	case errors.Is(r.Err, domain.ErrModelUnavailable):
		kind = "model_unavailable"
	case errors.Is(r.Err, domain.ErrMalformedOutput):
		kind = "malformed_output"
	}
	e.log.ErrorObj("curation failed", "curation_error", map[string]any{
		"group": group.ID,
		"model": r.Model,
		"kind":  kind,
		"error": fmt.Sprint(r.Err),
	})
	r.Items = nil
	return r
}

// attachProvenance copies collection-time provenance onto curated items by link.
// Links the model invented keep its source text under the group's default category.
func attachProvenance(curated []domain.CuratedItem, candidates []domain.NewsItem, fallback domain.Category) {
	byLink := make(map[string]domain.Provenance, len(candidates))
	for _, c := range candidates {
		byLink[strings.TrimSpace(c.Link)] = c.Provenance
	}
	for i := range curated {
		if prov, ok := byLink[curated[i].OriginalLink]; ok {
			curated[i].Provenance = prov
			continue
		}
		curated[i].Provenance = domain.Provenance{Category: fallback}
	}
}
