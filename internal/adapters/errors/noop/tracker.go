package noop

import (
	"context"

	"asclepius/pkg/errors"
)

// Tracker is a no-op errors.Tracker used when tracking is disabled
type Tracker struct{}

// NewTracker returns a no-op tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	return nil
}

func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	return nil
}

func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
}

func (t *Tracker) Flush(ctx context.Context) error {
	return nil
}
