package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"codeberg.org/snonux/lughat/internal/archive"
	"codeberg.org/snonux/lughat/internal/audio"
	"codeberg.org/snonux/lughat/internal/batch"
	"codeberg.org/snonux/lughat/internal/cache"
	"codeberg.org/snonux/lughat/internal/cli"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/metrics"
	"codeberg.org/snonux/lughat/internal/parser"
	"codeberg.org/snonux/lughat/internal/pipeline"
	"codeberg.org/snonux/lughat/internal/prompt"
	"codeberg.org/snonux/lughat/internal/throttle"
)

// Processor handles one session
type Processor struct {
	settings *cli.Settings
	runner   batch.Runner
	out      io.Writer

	cache   *cache.Store
	metrics *metrics.Recorder
	server  *http.Server
}

// NewProcessor builds the pipeline for settings. A missing API key is a
// *completion.ConfigurationError; audio problems only disable audio.
func NewProcessor(ctx context.Context, settings *cli.Settings) (*Processor, error) {
	log := logging.NewLogger(ctx)
	rec := metrics.NewRecorder()

	cfg := settings.CompletionConfig()
	if settings.Strategy == prompt.StrategyJSON {
		schema, err := parser.Schema()
		if err != nil {
			return nil, fmt.Errorf("failed to generate response schema: %w", err)
		}
		cfg.ResponseSchema = schema
	}
	backend, err := completion.NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter := throttle.New(settings.MinInterval, throttle.WithMetrics(rec))
	log.Debugf("completion calls are at least %s apart", limiter.Interval())
	gateway := completion.NewGateway(backend, limiter,
		completion.WithTimeout(settings.Timeout),
		completion.WithMetrics(rec),
	)

	store, err := cache.Open(settings.CacheDSN)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithCache(store), pipeline.WithMetrics(rec)}
	if renderer := newRenderer(settings, rec, log); renderer != nil {
		opts = append(opts, pipeline.WithSynthesizer(renderer))
	}

	p := &Processor{
		settings: settings,
		runner:   pipeline.New(prompt.NewBuilder(settings.Strategy), gateway, opts...),
		out:      os.Stdout,
		cache:    store,
		metrics:  rec,
	}
	log.Debugf("using %s model %s with %s prompts", gateway.Provider(), gateway.Model(), settings.Strategy)

	if settings.MetricsAddr != "" {
		p.serveMetrics(log)
	}
	return p, nil
}

func newRenderer(settings *cli.Settings, rec *metrics.Recorder, log logging.Logger) *audio.Renderer {
	if settings.SkipAudio {
		return nil
	}

	provider, err := audio.NewProvider(settings.Audio)
	if err != nil && settings.Audio.Provider == "openai" {
		// No OpenAI key, try the local synthesizer instead
		log.Debugf("OpenAI TTS unavailable: %v", err)
		provider, err = audio.NewESpeakProvider(settings.Audio.ESpeak)
	}
	if err != nil {
		log.Warnf("audio disabled: %v", err)
		return nil
	}
	renderer := audio.NewRenderer(provider, settings.Audio.OutputDir, settings.Audio.Timeout, rec)
	log.Debugf("pronunciation clips from %s go to %s", provider.Name(), renderer.Dir())
	return renderer
}

func (p *Processor) serveMetrics(log logging.Logger) {
	p.server = &http.Server{
		Addr:              p.settings.MetricsAddr,
		Handler:           p.metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
	log.Infof("serving metrics on %s", p.settings.MetricsAddr)
}

// SetOutput redirects user-facing output
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// ProcessText runs a single text with the configured category and speed.
// The session end word ends quietly.
func (p *Processor) ProcessText(ctx context.Context, text string) error {
	out, err := p.runner.Run(ctx, pipeline.Input{
		Text:     text,
		Category: p.settings.Category,
		Speed:    p.settings.Speed,
	})
	if errors.Is(err, pipeline.ErrSessionEnded) {
		fmt.Fprintln(p.out, "Goodbye!")
		return nil
	}
	if err != nil {
		return err
	}
	printOutput(p.out, out)
	return nil
}

// ProcessBatch processes every entry of a batch file
func (p *Processor) ProcessBatch(ctx context.Context, filename string) error {
	entries, err := batch.ReadBatchFile(filename, p.settings.Category)
	if err != nil {
		return err
	}

	summary, err := batch.Run(ctx, p.runner, entries, p.settings.Speed, func(entry batch.Entry, out *pipeline.Output, err error) {
		fmt.Fprintf(p.out, "\nProcessing %d: %s\n", entry.Line, entry.Text)
		if err != nil {
			fmt.Fprintf(p.out, "Error: %s\n", userMessage(err))
			return
		}
		printOutput(p.out, out)
	})

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total texts: %d\n", summary.Total)
	fmt.Fprintf(p.out, "Processed: %d\n", summary.Processed)
	if summary.Failed > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", summary.Failed)
	}
	fmt.Fprintf(p.out, "================================\n")

	return err
}

// Close stops the metrics server and drops the session cache. Session
// statistics are logged at debug level first.
func (p *Processor) Close() error {
	log := logging.NewLogger(context.Background())
	p.logStats(log)

	var errs []error
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, p.server.Shutdown(ctx))
	}
	if p.cache != nil {
		errs = append(errs, p.cache.Close())
	}
	return errors.Join(errs...)
}

func (p *Processor) logStats(log logging.Logger) {
	if p.cache != nil {
		if n, err := p.cache.Len(context.Background()); err == nil {
			log.Debugf("session cache holds %d replies", n)
		}
	}
	if p.settings.Audio != nil && p.settings.Audio.EnableCache {
		if files, size, err := audio.CacheStats(p.settings.Audio.CacheDir); err == nil {
			log.Debugf("clip cache holds %d files (%d bytes)", files, size)
		}
	}
	if p.metrics != nil {
		families, err := p.metrics.Registry().Gather()
		if err != nil {
			return
		}
		for _, family := range families {
			log.Debugf("%s: %d series", family.GetName(), len(family.GetMetric()))
		}
	}
}

// Archive clears the clip cache and moves the audio directory of settings
// into a timestamped archive, returning the archive path
func Archive(settings *cli.Settings) (string, error) {
	if err := audio.ClearCache(settings.Audio.CacheDir); err != nil {
		return "", fmt.Errorf("failed to clear clip cache: %w", err)
	}
	return archive.ArchiveAudio(settings.Audio.OutputDir)
}
