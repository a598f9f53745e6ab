package curation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-news-briefing/internal/domain"
	"github.com/samvad-hq/samvad-news-briefing/pkg/httpclient"
)

// DefaultBaseURL is the Generative Language REST root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const apiKeyHeader = "x-goog-api-key"

// ModelInfo is one entry of the model listing.
type ModelInfo struct {
	Name                       string   `json:"name"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// ModelClient is the generative model service.
type ModelClient interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type listModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GeminiClient talks to the Gemini REST API through an httpclient.Client.
type GeminiClient struct {
	client  httpclient.Client
	baseURL string
	apiKey  string
}

// NewGeminiClient builds a client; baseURL defaults to DefaultBaseURL.
func NewGeminiClient(client httpclient.Client, baseURL, apiKey string) *GeminiClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{client: client, baseURL: baseURL, apiKey: apiKey}
}

// ListModels returns the models visible to the API key.
func (g *GeminiClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := g.client.Get(ctx, g.baseURL+"/models", g.headers())
	if err != nil {
		return nil, fmt.Errorf("%w: list models: %v", domain.ErrModelUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: list models returned status %d body: %s",
			domain.ErrModelUnavailable, resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}

	var out listModelsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode model list: %v", domain.ErrModelUnavailable, err)
	}
	return out.Models, nil
}

// Generate submits prompt to model and returns the first candidate's text.
func (g *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	endpoint := g.baseURL + "/models/" + url.PathEscape(model) + ":generateContent"
	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}

	resp, err := g.client.PostJSON(ctx, endpoint, g.headers(), body)
	if err != nil {
		return "", fmt.Errorf("%w: generate with %s: %v", domain.ErrModelUnavailable, model, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: generate with %s returned status %d body: %s",
			domain.ErrModelUnavailable, model, resp.StatusCode(), httpclient.BodySnippet(resp.Body()))
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode generate response: %v body: %s",
			domain.ErrMalformedOutput, err, httpclient.BodySnippet(resp.Body()))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response has no candidate text body: %s",
			domain.ErrMalformedOutput, httpclient.BodySnippet(resp.Body()))
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiClient) headers() map[string]string {
	return map[string]string{apiKeyHeader: g.apiKey}
}
