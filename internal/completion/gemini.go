package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

type geminiBackend struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	schema      map[string]any
}

func newGeminiBackend(ctx context.Context, cfg Config) (*geminiBackend, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, &ConfigurationError{Setting: "completion.provider", Message: fmt.Sprintf("failed to create Gemini client: %v", err)}
	}

	return &geminiBackend{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		schema:      cfg.ResponseSchema,
	}, nil
}

func (g *geminiBackend) Name() string  { return ProviderGemini }
func (g *geminiBackend) Model() string { return g.model }

func (g *geminiBackend) Complete(ctx context.Context, prompt string) (*Result, error) {
	meta := initMetadata(ProviderGemini, g.model)
	start := time.Now()

	temp := g.temperature
	config := &genai.GenerateContentConfig{Temperature: &temp}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}
	if g.schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = g.schema
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	setLatencyMetadata(meta, start)
	if err != nil {
		return nil, &UpstreamError{Provider: ProviderGemini, Message: "generate content failed", Err: err}
	}

	text := response.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &UpstreamError{Provider: ProviderGemini, Message: "empty response"}
	}

	if usage := response.UsageMetadata; usage != nil {
		setTokenMetadata(meta,
			int64(usage.PromptTokenCount),
			int64(usage.CandidatesTokenCount),
			int64(usage.TotalTokenCount))
	}
	if len(response.Candidates) > 0 && response.Candidates[0].FinishReason != "" {
		meta[MetadataKeyFinishReason] = string(response.Candidates[0].FinishReason)
	}

	return &Result{Text: text, Metadata: meta}, nil
}
