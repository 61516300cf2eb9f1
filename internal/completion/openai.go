package completion

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type openAIBackend struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	jsonMode    bool
}

func newOpenAIBackend(cfg Config) *openAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &openAIBackend{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		jsonMode:    cfg.ResponseSchema != nil,
	}
}

func (o *openAIBackend) Name() string  { return ProviderOpenAI }
func (o *openAIBackend) Model() string { return o.model }

func (o *openAIBackend) Complete(ctx context.Context, prompt string) (*Result, error) {
	meta := initMetadata(ProviderOpenAI, o.model)
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}
	if o.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	setLatencyMetadata(meta, start)
	if err != nil {
		return nil, &UpstreamError{Provider: ProviderOpenAI, Message: "chat completion failed", Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &UpstreamError{Provider: ProviderOpenAI, Message: "empty response"}
	}

	setTokenMetadata(meta,
		int64(resp.Usage.PromptTokens),
		int64(resp.Usage.CompletionTokens),
		int64(resp.Usage.TotalTokens))
	if reason := resp.Choices[0].FinishReason; reason != "" {
		meta[MetadataKeyFinishReason] = string(reason)
	}

	return &Result{Text: resp.Choices[0].Message.Content, Metadata: meta}, nil
}
