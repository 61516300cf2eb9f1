package pipeline

import (
	"context"
	"errors"
	"strings"

	"codeberg.org/snonux/lughat/internal"
	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/cache"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/metrics"
	"codeberg.org/snonux/lughat/internal/parser"
	"codeberg.org/snonux/lughat/internal/prompt"
)

// sessionEndWord ends an interactive session
const sessionEndWord = "end"

// ErrSessionEnded is returned by Run for the session end word
var ErrSessionEnded = errors.New("session ended")

// IsSessionEnd reports whether text is the session end word
func IsSessionEnd(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), sessionEndWord)
}

// Input is one learner request
type Input struct {
	Text     string
	Category prompt.Category
	Speed    audio.Speed
}

// Output is what a request produced
type Output struct {
	RequestID string
	Category  prompt.Category
	Section   string
	// Sections holds every section of the reply when the strategy returns
	// them all at once; nil otherwise.
	Sections  parser.ParsedSections
	AudioPath string
	// AudioErr is set when synthesis failed; Section is still valid.
	AudioErr error
	Cached   bool
	Metadata map[string]string
}

// Synthesizer renders a section to an audio clip
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, speed audio.Speed, requestID string) (string, error)
}

// Cache stores replies for the session
type Cache interface {
	Get(ctx context.Context, key string) (*completion.Result, bool, error)
	Put(ctx context.Context, key string, result *completion.Result) error
}

// identified is implemented by completers that know their provider and model
type identified interface {
	Provider() string
	Model() string
}

// Pipeline wires the stages together. It serves one request at a time.
type Pipeline struct {
	builder   *prompt.Builder
	completer completion.Completer
	extractor parser.Extractor
	synth     Synthesizer
	cache     Cache
	metrics   *metrics.Recorder
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithSynthesizer enables audio for the pronunciation guide
func WithSynthesizer(s Synthesizer) Option {
	return func(p *Pipeline) { p.synth = s }
}

// WithCache enables the session reply cache
func WithCache(c Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithMetrics records cache and parse outcomes
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a pipeline. The extractor follows the builder's strategy.
func New(builder *prompt.Builder, completer completion.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		builder:   builder,
		completer: completer,
		extractor: parser.ForStrategy(builder.Strategy()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strategy returns the prompt strategy in use
func (p *Pipeline) Strategy() prompt.Strategy {
	return p.builder.Strategy()
}

// Run processes one request. The session end word yields ErrSessionEnded
// without calling anything. Completion failures are returned as
// *completion.UpstreamError and undecodable structured replies as
// *parser.ParseError; a synthesis failure only sets Output.AudioErr.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Output, error) {
	if IsSessionEnd(in.Text) {
		return nil, ErrSessionEnded
	}

	req, err := prompt.NewRequest(in.Text, in.Category)
	if err != nil {
		return nil, err
	}
	rendered, err := p.builder.Build(req)
	if err != nil {
		return nil, err
	}

	out := &Output{
		RequestID: internal.GenerateRequestID(),
		Category:  req.Category(),
	}
	log := logging.NewLogger(ctx).
		WithField("request_id", out.RequestID).
		WithField("category", req.Category().Key())

	key := p.cacheKey(rendered)
	result, cached := p.lookup(ctx, log, key)
	if !cached {
		result, err = p.completer.Complete(ctx, rendered)
		if err != nil {
			if completion.IsUpstreamError(err) {
				log.Warnf("%v", err)
			}
			return nil, err
		}
	}
	out.Cached = cached
	out.Metadata = result.Metadata

	out.Section, err = p.extractor.Section(result.Text, req.Category())
	if err != nil {
		if parser.IsParseError(err) {
			p.metrics.IncParseFailure()
			log.Warnf("undecodable reply: %v", errors.Unwrap(err))
		}
		return nil, err
	}
	if se, ok := p.extractor.(parser.SectionsExtractor); ok {
		if out.Sections, err = se.Sections(result.Text); err != nil {
			return nil, err
		}
	}

	if !cached {
		p.store(ctx, log, key, result)
	}

	if req.Category() == prompt.PronunciationGuide && p.synth != nil && out.Section != parser.SectionNotFound {
		out.AudioPath, out.AudioErr = p.synth.Synthesize(ctx, out.Section, in.Speed, out.RequestID)
		if out.AudioErr != nil {
			log.Warnf("%v", out.AudioErr)
		}
	}

	return out, nil
}

func (p *Pipeline) cacheKey(rendered string) string {
	provider, model := "", ""
	if id, ok := p.completer.(identified); ok {
		provider, model = id.Provider(), id.Model()
	}
	return cache.Key(provider, model, rendered)
}

func (p *Pipeline) lookup(ctx context.Context, log logging.Logger, key string) (*completion.Result, bool) {
	if p.cache == nil {
		return nil, false
	}
	result, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("cache lookup failed: %v", err)
		return nil, false
	}
	p.metrics.ObserveCacheLookup(ok)
	if ok {
		log.Debugf("serving reply from the session cache")
	}
	return result, ok
}

func (p *Pipeline) store(ctx context.Context, log logging.Logger, key string, result *completion.Result) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Put(ctx, key, result); err != nil {
		log.Warnf("cache store failed: %v", err)
	}
}
