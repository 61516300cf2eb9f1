package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/lughat/internal/completion"
)

// Catalog groups model identifiers by use
type Catalog struct {
	Provider   string
	Completion []string
	Speech     []string
}

// Lister handles listing available models of one provider
type Lister struct {
	provider string
	apiKey   string
	baseURL  string
}

// NewLister creates a new model lister
func NewLister(provider, apiKey, baseURL string) *Lister {
	if provider == "" {
		provider = completion.ProviderGemini
	}
	return &Lister{provider: provider, apiKey: apiKey, baseURL: baseURL}
}

// List fetches and categorizes the provider's models
func (l *Lister) List(ctx context.Context) (*Catalog, error) {
	if l.apiKey == "" {
		return nil, &completion.ConfigurationError{
			Setting: completion.APIKeyEnvVars(l.provider)[0],
			Message: "API key for " + l.provider + " is missing",
		}
	}

	var (
		catalog *Catalog
		err     error
	)
	switch l.provider {
	case completion.ProviderGemini:
		catalog, err = l.listGemini(ctx)
	case completion.ProviderOpenAI:
		catalog, err = l.listOpenAI(ctx)
	case completion.ProviderAnthropic:
		catalog, err = l.listAnthropic(ctx)
	default:
		return nil, fmt.Errorf("unknown provider: %s", l.provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	sort.Strings(catalog.Completion)
	sort.Strings(catalog.Speech)
	return catalog, nil
}

func (l *Lister) listGemini(ctx context.Context) (*Catalog, error) {
	cfg := &genai.ClientConfig{APIKey: l.apiKey, Backend: genai.BackendGeminiAPI}
	if l.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: l.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Provider: completion.ProviderGemini}
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		id := strings.TrimPrefix(model.Name, "models/")
		switch {
		case strings.Contains(id, "tts"):
			catalog.Speech = append(catalog.Speech, id)
		case strings.HasPrefix(id, "gemini"):
			catalog.Completion = append(catalog.Completion, id)
		}
	}
	return catalog, nil
}

func (l *Lister) listOpenAI(ctx context.Context) (*Catalog, error) {
	cfg := openai.DefaultConfig(l.apiKey)
	if l.baseURL != "" {
		cfg.BaseURL = l.baseURL
	}
	models, err := openai.NewClientWithConfig(cfg).ListModels(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Provider: completion.ProviderOpenAI}
	for _, model := range models.Models {
		id := model.ID
		switch {
		case strings.Contains(id, "tts"):
			catalog.Speech = append(catalog.Speech, id)
		case strings.Contains(id, "audio"), strings.Contains(id, "realtime"), strings.Contains(id, "transcribe"):
		case strings.HasPrefix(id, "gpt") || strings.HasPrefix(id, "o"):
			catalog.Completion = append(catalog.Completion, id)
		}
	}
	return catalog, nil
}

func (l *Lister) listAnthropic(ctx context.Context) (*Catalog, error) {
	opts := []option.RequestOption{option.WithAPIKey(l.apiKey)}
	if l.baseURL != "" {
		opts = append(opts, option.WithBaseURL(l.baseURL))
	}
	client := anthropic.NewClient(opts...)

	catalog := &Catalog{Provider: completion.ProviderAnthropic}
	iter := client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})
	for iter.Next() {
		catalog.Completion = append(catalog.Completion, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Print writes the catalog in the layout of --list-models
func (c *Catalog) Print(w io.Writer) {
	fmt.Fprintf(w, "Available %s models:\n", c.Provider)
	printGroup(w, "Completion models", c.Completion)
	if c.Provider != completion.ProviderAnthropic {
		printGroup(w, "Speech models", c.Speech)
	}
}

func printGroup(w io.Writer, title string, ids []string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(ids) == 0 {
		fmt.Fprintln(w, "  none found")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
