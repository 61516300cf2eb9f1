package processor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/cli"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/parser"
	"codeberg.org/snonux/lughat/internal/pipeline"
	"codeberg.org/snonux/lughat/internal/prompt"
	"codeberg.org/snonux/lughat/internal/testutil"
)

const omnibusReply = "### Translation\nآپ کیسے ہیں؟\n### Pronunciation Guide\naap KAY-se hain\n### Definition\na greeting asking about wellbeing\n"

func testSettings(strategy prompt.Strategy, category prompt.Category) *cli.Settings {
	return &cli.Settings{
		Provider:    completion.ProviderOpenAI,
		APIKey:      "test-key",
		Timeout:     5 * time.Second,
		MinInterval: time.Millisecond,
		Strategy:    strategy,
		Category:    category,
		SkipAudio:   true,
		Audio:       audio.DefaultProviderConfig(),
	}
}

func newTestProcessor(t *testing.T, settings *cli.Settings, completer completion.Completer, opts ...pipeline.Option) (*Processor, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return &Processor{
		settings: settings,
		runner:   pipeline.New(prompt.NewBuilder(settings.Strategy), completer, opts...),
		out:      buf,
	}, buf
}

func TestNewProcessor_MissingKey(t *testing.T) {
	settings := testSettings(prompt.StrategyOmnibus, prompt.Translation)
	settings.Provider = completion.ProviderGemini
	settings.APIKey = ""

	_, err := NewProcessor(context.Background(), settings)
	if !completion.IsConfigurationError(err) {
		t.Fatalf("Expected configuration error, got %v", err)
	}
}

func TestNewProcessor_EndToEnd(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"### Translation\nشکریہ"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	settings := testSettings(prompt.StrategyOmnibus, prompt.Translation)
	settings.BaseURL = server.URL + "/v1"

	p, err := NewProcessor(context.Background(), settings)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	defer p.Close()

	buf := &bytes.Buffer{}
	p.SetOutput(buf)

	for i := 0; i < 2; i++ {
		if err := p.ProcessText(context.Background(), "thank you"); err != nil {
			t.Fatalf("ProcessText failed: %v", err)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 completion call with the cache in place, got %d", calls)
	}
	output := buf.String()
	if !strings.Contains(output, "شکریہ") {
		t.Errorf("Expected translation in output, got %q", output)
	}
	if !strings.Contains(output, "### Translation (cached)") {
		t.Errorf("Expected the second answer to be marked cached, got %q", output)
	}
}

func TestProcessText(t *testing.T) {
	settings := testSettings(prompt.StrategyOmnibus, prompt.Definition)
	p, buf := newTestProcessor(t, settings, testutil.NewMockCompleter(omnibusReply))

	if err := p.ProcessText(context.Background(), "How are you?"); err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "### Definition") || !strings.Contains(output, "a greeting asking about wellbeing") {
		t.Errorf("Unexpected output %q", output)
	}
	if strings.Contains(output, "Audio") {
		t.Errorf("Definition must not produce audio, got %q", output)
	}
}

func TestProcessText_Pronunciation(t *testing.T) {
	settings := testSettings(prompt.StrategyOmnibus, prompt.PronunciationGuide)
	settings.Speed = audio.Slow
	synth := &testutil.MockSynthesizer{Dir: t.TempDir()}
	p, buf := newTestProcessor(t, settings, testutil.NewMockCompleter(omnibusReply), pipeline.WithSynthesizer(synth))

	if err := p.ProcessText(context.Background(), "How are you?"); err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}

	if len(synth.Speed) != 1 || synth.Speed[0] != audio.Slow {
		t.Errorf("Expected one slow synthesis, got %v", synth.Speed)
	}
	if !strings.Contains(buf.String(), "Audio: "+synth.Dir) {
		t.Errorf("Expected audio path in output, got %q", buf.String())
	}
	entries, err := filepath.Glob(filepath.Join(synth.Dir, "pronunciation-*.mp3"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected one clip, got %v (%v)", entries, err)
	}
	testutil.AssertFileContains(t, entries[0], "mock audio data")
}

func TestProcessText_WritesToStdout(t *testing.T) {
	p, _ := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), testutil.NewMockCompleter(omnibusReply))
	stdout, _ := testutil.CaptureOutput(t, func() {
		p.SetOutput(os.Stdout)
		if err := p.ProcessText(context.Background(), "How are you?"); err != nil {
			t.Errorf("ProcessText failed: %v", err)
		}
	})

	if !strings.Contains(stdout, "آپ کیسے ہیں؟") {
		t.Errorf("Expected translation on stdout, got %q", stdout)
	}
}

func TestProcessText_AudioFailure(t *testing.T) {
	settings := testSettings(prompt.StrategyOmnibus, prompt.PronunciationGuide)
	synth := &testutil.MockSynthesizer{
		Dir: t.TempDir(),
		Err: &audio.SynthesisError{Provider: "mock", Message: "boom"},
	}
	p, buf := newTestProcessor(t, settings, testutil.NewMockCompleter(omnibusReply), pipeline.WithSynthesizer(synth))

	if err := p.ProcessText(context.Background(), "How are you?"); err != nil {
		t.Fatalf("A synthesis failure must not fail the request: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "aap KAY-se hain") || !strings.Contains(output, "Audio unavailable") {
		t.Errorf("Expected section and audio error, got %q", output)
	}
}

func TestProcessText_UpstreamError(t *testing.T) {
	completer := testutil.NewMockCompleter()
	completer.Err = &completion.UpstreamError{Provider: "mock", Message: "service down"}
	p, _ := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), completer)

	err := p.ProcessText(context.Background(), "hello")
	if !completion.IsUpstreamError(err) {
		t.Fatalf("Expected upstream error, got %v", err)
	}
}

func TestProcessBatch(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "phrases.txt")
	testutil.CreateTestFile(t, file, []byte("# greetings\nHow are you?\nGood morning = definition\n\nend\n"))

	completer := testutil.NewMockCompleter(omnibusReply)
	p, buf := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), completer)

	if err := p.ProcessBatch(context.Background(), file); err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Processing 2: How are you?",
		"Processing 3: Good morning",
		"### Definition",
		"Total texts: 3",
		"Processed: 2",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got %q", want, output)
		}
	}
	if completer.Calls() != 2 {
		t.Errorf("Expected 2 completion calls, got %d", completer.Calls())
	}
}

func TestProcessBatch_MissingFile(t *testing.T) {
	p, _ := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), testutil.NewMockCompleter(omnibusReply))

	if err := p.ProcessBatch(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing batch file")
	}
}

func TestRunInteractive(t *testing.T) {
	completer := testutil.NewMockCompleter(omnibusReply)
	p, buf := newTestProcessor(t, testSettings(prompt.StrategyPerCategory, prompt.Translation), completer)

	input := ":category definition\nresilient\n:speed slow\n:speed fast\n:bogus\n\nEND\nnever sent\n"
	if err := p.RunInteractive(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("RunInteractive failed: %v", err)
	}

	if completer.Calls() != 1 {
		t.Fatalf("Expected 1 completion call, got %d", completer.Calls())
	}
	if !strings.Contains(completer.Prompts[0], "resilient") || !strings.Contains(strings.ToLower(completer.Prompts[0]), "defin") {
		t.Errorf("Expected a definition prompt, got %q", completer.Prompts[0])
	}

	output := buf.String()
	for _, want := range []string{
		"Category: Definition",
		"[Definition] > ",
		"Speed: slow",
		"unknown speed",
		"Unknown command",
		"Goodbye!",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRunInteractive_ContinuesAfterErrors(t *testing.T) {
	completer := testutil.NewMockCompleter("not json at all")
	p, buf := newTestProcessor(t, testSettings(prompt.StrategyJSON, prompt.Translation), completer)

	if err := p.RunInteractive(context.Background(), strings.NewReader("hello\nworld\n")); err != nil {
		t.Fatalf("RunInteractive failed: %v", err)
	}

	if completer.Calls() != 2 {
		t.Errorf("Expected both lines to be sent, got %d calls", completer.Calls())
	}
	if got := strings.Count(buf.String(), "invalid JSON format"); got != 2 {
		t.Errorf("Expected 2 parse errors in output, got %d", got)
	}
}

func TestRunInteractive_Cancelled(t *testing.T) {
	completer := testutil.NewMockCompleter(omnibusReply)
	p, _ := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), completer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.RunInteractive(ctx, strings.NewReader("hello\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if completer.Calls() != 0 {
		t.Errorf("Expected no calls after cancellation")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "parse error",
			err:  &parser.ParseError{Raw: "x", Err: errors.New("bad")},
			want: "AI model returned an invalid JSON format. Please try again.",
		},
		{
			name: "timeout",
			err:  &completion.UpstreamError{Provider: "gemini", Message: "request failed", Err: context.DeadlineExceeded},
			want: "the language model did not answer in time, please try again",
		},
		{
			name: "upstream",
			err:  &completion.UpstreamError{Provider: "gemini", Message: "circuit breaker is open"},
			want: "the language model is unavailable: circuit breaker is open",
		},
		{
			name: "other",
			err:  prompt.ErrEmptyText,
			want: prompt.ErrEmptyText.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage(tt.err); got != tt.want {
				t.Errorf("userMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessText_SessionEnd(t *testing.T) {
	completer := testutil.NewMockCompleter(omnibusReply)
	p, buf := newTestProcessor(t, testSettings(prompt.StrategyOmnibus, prompt.Translation), completer)

	if err := p.ProcessText(context.Background(), " End "); err != nil {
		t.Fatalf("The end word must not fail a one-shot run: %v", err)
	}
	if !strings.Contains(buf.String(), "Goodbye!") {
		t.Errorf("Expected goodbye, got %q", buf.String())
	}
	if completer.Calls() != 0 {
		t.Errorf("Expected no completion calls, got %d", completer.Calls())
	}
}

func TestArchive(t *testing.T) {
	base := t.TempDir()
	audioDir := testutil.CreateTestAudioDirectory(t, base, 2)

	settings := testSettings(prompt.StrategyOmnibus, prompt.PronunciationGuide)
	settings.Audio.OutputDir = audioDir
	settings.Audio.CacheDir = filepath.Join(audioDir, ".cache")
	testutil.CreateTestFile(t, filepath.Join(settings.Audio.CacheDir, "ab", "cdef.mp3"), []byte("clip"))

	target, err := Archive(settings)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	testutil.AssertFileNotExists(t, audioDir)
	testutil.AssertFileNotExists(t, filepath.Join(target, ".cache"))
	clips, _ := filepath.Glob(filepath.Join(target, "*.mp3"))
	if len(clips) != 2 {
		t.Errorf("Expected 2 archived clips, got %v", clips)
	}
}

func TestClose(t *testing.T) {
	settings := testSettings(prompt.StrategyOmnibus, prompt.Translation)
	settings.Audio.EnableCache = true
	settings.Audio.CacheDir = t.TempDir()

	p, err := NewProcessor(context.Background(), settings)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
