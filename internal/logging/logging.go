// Package logging provides the diagnostic logger used across lughat.
// User-facing output is printed directly; everything else goes through here.
package logging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logrus used by the application.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

// LoggerFactory creates loggers bound to a context.
type LoggerFactory interface {
	CreateLogger(ctx context.Context) Logger
}

var (
	mu      sync.RWMutex
	factory LoggerFactory
	base    = newBase(os.Stderr, logrus.WarnLevel)
)

func newBase(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	return l
}

// SetLoggerFactory replaces the default logrus factory; nil restores it.
func SetLoggerFactory(f LoggerFactory) {
	mu.Lock()
	defer mu.Unlock()
	factory = f
}

// Configure sets the output and level of the default logger.
func Configure(out io.Writer, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	base = newBase(out, lvl)
	return nil
}

// NewLogger returns a logger for ctx.
func NewLogger(ctx context.Context) Logger {
	mu.RLock()
	f := factory
	b := base
	mu.RUnlock()

	if f != nil {
		return f.CreateLogger(ctx)
	}
	return &logrusLogger{entry: b.WithContext(ctx)}
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}
