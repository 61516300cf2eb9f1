package completion

import (
	"context"
	"errors"
	"fmt"
)

// ConfigurationError reports a missing or invalid setting detected before
// any request is made. It is fatal at startup.
type ConfigurationError struct {
	Setting string // config key or environment variable
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

// UpstreamError reports a failed completion call: unreachable service,
// error status, timeout, empty reply or an open circuit breaker.
type UpstreamError struct {
	Provider string
	Message  string
	Err      error // may be nil
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IsConfigurationError reports whether err is a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsUpstreamError reports whether err is an UpstreamError
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
