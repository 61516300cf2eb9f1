package completion

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 2048

type anthropicBackend struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

func newAnthropicBackend(cfg Config) *anthropicBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// one outbound request per call
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	return &anthropicBackend{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

func (a *anthropicBackend) Name() string  { return ProviderAnthropic }
func (a *anthropicBackend) Model() string { return a.model }

func (a *anthropicBackend) Complete(ctx context.Context, prompt string) (*Result, error) {
	meta := initMetadata(ProviderAnthropic, a.model)
	start := time.Now()

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	setLatencyMetadata(meta, start)
	if err != nil {
		return nil, &UpstreamError{Provider: ProviderAnthropic, Message: "messages request failed", Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, &UpstreamError{Provider: ProviderAnthropic, Message: "empty response"}
	}

	setTokenMetadata(meta,
		msg.Usage.InputTokens,
		msg.Usage.OutputTokens,
		msg.Usage.InputTokens+msg.Usage.OutputTokens)
	if msg.StopReason != "" {
		meta[MetadataKeyFinishReason] = string(msg.StopReason)
	}

	return &Result{Text: text, Metadata: meta}, nil
}
