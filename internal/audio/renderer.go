package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/lughat/internal"
	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/metrics"
)

// DefaultTimeout bounds one synthesis call
const DefaultTimeout = 30 * time.Second

// SynthesisError reports a failed or impossible synthesis
type SynthesisError struct {
	Provider string
	Message  string
	Err      error
}

func (e *SynthesisError) Error() string {
	msg := "speech synthesis failed: " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time
func (e *SynthesisError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Normalize prepares text for speech: "*" and "#" are dropped, whitespace
// runs become single spaces and the ends are trimmed.
func Normalize(text string) string {
	text = strings.NewReplacer("*", "", "#", "").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Renderer writes one pronunciation clip per request
type Renderer struct {
	provider Provider
	dir      string
	timeout  time.Duration
	metrics  *metrics.Recorder
}

// NewRenderer creates a renderer writing into dir. A zero timeout means
// DefaultTimeout.
func NewRenderer(provider Provider, dir string, timeout time.Duration, m *metrics.Recorder) *Renderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Renderer{provider: provider, dir: dir, timeout: timeout, metrics: m}
}

// Dir returns the directory clips are written to
func (r *Renderer) Dir() string {
	return r.dir
}

// ClipPath returns the clip path for a request id
func (r *Renderer) ClipPath(requestID string) string {
	return filepath.Join(r.dir, "pronunciation-"+internal.SanitizeFilename(requestID)+".mp3")
}

// Synthesize normalizes text and renders it to the clip of requestID,
// returning the clip path. An empty requestID gets a fresh one.
func (r *Renderer) Synthesize(ctx context.Context, text string, speed Speed, requestID string) (string, error) {
	path, err := r.synthesize(ctx, text, speed, requestID)
	r.metrics.ObserveSynthesis(err)
	return path, err
}

func (r *Renderer) synthesize(ctx context.Context, text string, speed Speed, requestID string) (string, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", &SynthesisError{Provider: r.provider.Name(), Message: "nothing to synthesize"}
	}
	if requestID == "" {
		requestID = internal.GenerateRequestID()
	}

	path := r.ClipPath(requestID)
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", &SynthesisError{Provider: r.provider.Name(), Message: "cannot create audio directory", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logging.NewLogger(ctx).WithField("provider", r.provider.Name()).
		Debugf("synthesizing %d characters at %s speed into %s", len(normalized), speed, path)

	if err := r.provider.GenerateAudio(callCtx, normalized, speed, path); err != nil {
		if callCtx.Err() != nil && !errors.Is(err, callCtx.Err()) {
			err = errors.Join(callCtx.Err(), err)
		}
		_ = os.Remove(path)
		return "", &SynthesisError{Provider: r.provider.Name(), Message: "provider error", Err: err}
	}
	return path, nil
}
