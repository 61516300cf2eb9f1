package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/completion"
)

// MockCompleter returns scripted replies. Replies are consumed in order; the
// last one repeats. Errors take precedence when set.
type MockCompleter struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Prompts []string
}

// NewMockCompleter creates a completer answering with replies
func NewMockCompleter(replies ...string) *MockCompleter {
	return &MockCompleter{Replies: replies}
}

// Complete records the prompt and returns the next reply
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (*completion.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Replies) == 0 {
		return nil, &completion.UpstreamError{Provider: "mock", Message: "empty response"}
	}

	idx := len(m.Prompts) - 1
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	return &completion.Result{
		Text:     m.Replies[idx],
		Metadata: map[string]string{completion.MetadataKeyProvider: "mock"},
	}, nil
}

// Provider names the mock for cache keys
func (m *MockCompleter) Provider() string { return "mock" }

// Model names the mock model for cache keys
func (m *MockCompleter) Model() string { return "mock-1" }

// Calls returns the number of Complete calls
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockSynthesizer writes a fake clip per request into Dir
type MockSynthesizer struct {
	Dir   string
	Err   error
	Texts []string
	Speed []audio.Speed
}

// Synthesize records the call and writes a small file
func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, speed audio.Speed, requestID string) (string, error) {
	m.Texts = append(m.Texts, text)
	m.Speed = append(m.Speed, speed)
	if m.Err != nil {
		return "", m.Err
	}

	path := filepath.Join(m.Dir, fmt.Sprintf("pronunciation-%s.mp3", requestID))
	if err := os.WriteFile(path, []byte("mock audio data"), 0644); err != nil {
		return "", err
	}
	return path, nil
}
