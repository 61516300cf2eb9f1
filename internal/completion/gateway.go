package completion

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/metrics"
)

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 60 * time.Second

// Throttle spaces outbound calls. *throttle.RateLimiter implements it.
type Throttle interface {
	Acquire(ctx context.Context) error
}

// Gateway sends prompts to a Backend. Every call waits for the throttle,
// runs under a timeout and goes through a circuit breaker. Failed calls
// are not retried.
type Gateway struct {
	backend  Backend
	throttle Throttle
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	metrics  *metrics.Recorder
}

// GatewayOption configures a Gateway
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	timeout          time.Duration
	metrics          *metrics.Recorder
	failureThreshold uint32
	openTimeout      time.Duration
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) GatewayOption {
	return func(o *gatewayOptions) { o.timeout = d }
}

// WithMetrics records call outcomes and latencies
func WithMetrics(m *metrics.Recorder) GatewayOption {
	return func(o *gatewayOptions) { o.metrics = m }
}

// WithBreaker sets how many consecutive failures open the breaker and how
// long it stays open before letting a trial call through.
func WithBreaker(failures uint32, openFor time.Duration) GatewayOption {
	return func(o *gatewayOptions) {
		o.failureThreshold = failures
		o.openTimeout = openFor
	}
}

// NewGateway wraps backend. A nil throttle means calls are not spaced.
func NewGateway(backend Backend, throttle Throttle, opts ...GatewayOption) *Gateway {
	o := gatewayOptions{
		timeout:          DefaultTimeout,
		failureThreshold: 5,
		openTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	settings := gobreaker.Settings{
		Name:        backend.Name(),
		MaxRequests: 1,
		Timeout:     o.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return o.failureThreshold > 0 && counts.ConsecutiveFailures >= o.failureThreshold
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up says nothing about the service
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.NewLogger(context.Background()).
				WithField("provider", name).
				Warnf("circuit breaker state changed from %s to %s", from, to)
		},
	}

	return &Gateway{
		backend:  backend,
		throttle: throttle,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		timeout:  o.timeout,
		metrics:  o.metrics,
	}
}

// Provider returns the backend's provider name
func (g *Gateway) Provider() string { return g.backend.Name() }

// Model returns the backend's model identifier
func (g *Gateway) Model() string { return g.backend.Model() }

// Complete waits for the throttle and sends prompt to the backend
func (g *Gateway) Complete(ctx context.Context, prompt string) (*Result, error) {
	log := logging.NewLogger(ctx).WithField("provider", g.backend.Name())

	if g.throttle != nil {
		if err := g.throttle.Acquire(ctx); err != nil {
			return nil, &UpstreamError{Provider: g.backend.Name(), Message: "gave up waiting for the rate limiter", Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.backend.Complete(callCtx, prompt)
	})
	elapsed := time.Since(start)
	g.metrics.ObserveCompletion(g.backend.Name(), elapsed, err)

	if err != nil {
		err = g.classify(callCtx, err)
		log.Errorf("completion failed after %s: %v", elapsed, err)
		return nil, err
	}

	result, _ := out.(*Result)
	if result == nil {
		return nil, &UpstreamError{Provider: g.backend.Name(), Message: "empty response"}
	}
	log.Debugf("completion took %s", elapsed)
	return result, nil
}

func (g *Gateway) classify(ctx context.Context, err error) error {
	var ue *UpstreamError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &UpstreamError{Provider: g.backend.Name(), Message: "circuit breaker is open", Err: err}
	case errors.As(err, &ue):
		// the SDKs do not always wrap the deadline error
		if ctx.Err() != nil && !errors.Is(ue.Err, ctx.Err()) {
			return &UpstreamError{Provider: ue.Provider, Message: ue.Message, Err: ctx.Err()}
		}
		return ue
	case ctx.Err() != nil:
		return &UpstreamError{Provider: g.backend.Name(), Message: "request aborted", Err: ctx.Err()}
	}
	return &UpstreamError{Provider: g.backend.Name(), Message: "request failed", Err: err}
}
