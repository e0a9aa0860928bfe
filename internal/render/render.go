// Package render draws display frames onto their output targets.
package render

import (
	"context"
	"errors"
	"fmt"

	"smart_fridge/internal/models"
)

// ErrTargetUnavailable is returned when a render target cannot be written.
var ErrTargetUnavailable = errors.New("render target unavailable")

// Sink is one display output.
type Sink interface {
	Render(ctx context.Context, lines models.DisplayLines) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, lines models.DisplayLines) error

func (f SinkFunc) Render(ctx context.Context, lines models.DisplayLines) error { return f(ctx, lines) }

// Multi renders to every sink, even after a failure, and joins the errors.
type Multi []Sink

func (m Multi) Render(ctx context.Context, lines models.DisplayLines) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Render(ctx, lines); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func unavailable(target string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTargetUnavailable, target, err)
}
