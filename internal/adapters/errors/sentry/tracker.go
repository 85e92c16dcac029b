package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"asclepius/pkg/errors"
)

// Tracker implements errors.Tracker backed by Sentry
type Tracker struct {
	hub *sentry.Hub
}

// NewTracker initializes the Sentry SDK and returns a tracker
func NewTracker(dsn, environment, release string) (*Tracker, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		TracesSampleRate: 0.1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init sentry")
	}

	return &Tracker{hub: sentry.CurrentHub()}, nil
}

// CaptureError sends an error to Sentry with tags
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	t.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		t.hub.CaptureException(err)
	})
	return nil
}

// CaptureMessage sends a message to Sentry
func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	t.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(toSentryLevel(level))
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		t.hub.CaptureMessage(message)
	})
	return nil
}

// AddBreadcrumb records a breadcrumb for the current scope
func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
	t.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Message:  message,
		Category: category,
		Level:    toSentryLevel(level),
		Data:     data,
	}, nil)
}

// Flush waits for pending events to be delivered
func (t *Tracker) Flush(ctx context.Context) error {
	t.hub.Flush(2 * time.Second)
	return nil
}

func toSentryLevel(level errors.Level) sentry.Level {
	switch level {
	case errors.LevelDebug:
		return sentry.LevelDebug
	case errors.LevelInfo:
		return sentry.LevelInfo
	case errors.LevelWarning:
		return sentry.LevelWarning
	case errors.LevelError:
		return sentry.LevelError
	case errors.LevelFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
