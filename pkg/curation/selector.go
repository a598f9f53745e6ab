package curation

import (
	"context"
	"strings"
	"sync"

	"github.com/samvad-hq/samvad-news-briefing/internal/logger"
)

// FallbackModel is used when discovery yields nothing.
const FallbackModel = "gemini-pro"

const generateMethod = "generateContent"

// DefaultPreferredModels is tried in order against the discovered models.
var DefaultPreferredModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro",
	"gemini-1.0-pro",
	"gemini-pro",
}

// ModelLister lists available models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ModelSelector resolves which model to call. A configured model always wins.
// A discovered model is cached for the selector's lifetime (one run); failed
// discovery is not cached, so the next call retries it.
type ModelSelector struct {
	lister     ModelLister
	configured string
	preferred  []string
	log        logger.Logger

	mu     sync.Mutex
	cached string
}

// NewModelSelector builds a selector. preferred defaults to DefaultPreferredModels.
func NewModelSelector(lister ModelLister, configured string, preferred []string, log logger.Logger) *ModelSelector {
	if len(preferred) == 0 {
		preferred = DefaultPreferredModels
	}
	return &ModelSelector{
		lister:     lister,
		configured: strings.TrimSpace(configured),
		preferred:  preferred,
		log:        logger.Ensure(log),
	}
}

// Select returns the model id to use for the next generation call.
func (s *ModelSelector) Select(ctx context.Context) string {
	if s.configured != "" {
		return s.configured
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != "" {
		return s.cached
	}

	models, err := s.lister.ListModels(ctx)
	if err != nil {
		s.log.WarnObj("model discovery failed; using fallback", "model_selection", map[string]any{
			"error":    err.Error(),
			"fallback": FallbackModel,
		})
		return FallbackModel
	}

	candidates := generativeModels(models)
	chosen := pickModel(candidates, s.preferred)
	if chosen == "" {
		s.log.WarnObj("no usable model discovered; using fallback", "model_selection", map[string]any{
			"listed":   len(models),
			"fallback": FallbackModel,
		})
		return FallbackModel
	}

	s.log.InfoObj("model selected", "model_selection", map[string]any{
		"model":      chosen,
		"candidates": candidates,
	})
	s.cached = chosen
	return chosen
}

// generativeModels keeps models supporting content generation, without the "models/" prefix.
func generativeModels(models []ModelInfo) []string {
	var out []string
	for _, m := range models {
		for _, method := range m.SupportedGenerationMethods {
			if method == generateMethod {
				out = append(out, strings.TrimPrefix(m.Name, "models/"))
				break
			}
		}
	}
	return out
}

// pickModel applies the preference order, then the first non-vision gemini
// model, then the first candidate.
func pickModel(candidates, preferred []string) string {
	available := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		available[c] = struct{}{}
	}
	for _, p := range preferred {
		if _, ok := available[p]; ok {
			return p
		}
	}
	for _, c := range candidates {
		if strings.Contains(c, "gemini") && !strings.Contains(c, "vision") {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}
