package service

import (
	"context"
	"errors"
	"io/fs"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/repository"
)

// ButtonDebouncer turns the raw button level into single press events.
type ButtonDebouncer struct {
	source  repository.SensorSource
	log     *logger.Logger
	pressed bool
}

func NewButtonDebouncer(source repository.SensorSource, log *logger.Logger) *ButtonDebouncer {
	return &ButtonDebouncer{source: source, log: log}
}

// Observe reports a press only on a released-to-pressed edge.
func (b *ButtonDebouncer) Observe(raw bool) bool {
	event := raw && !b.pressed
	b.pressed = raw
	return event
}

// Poll reads the button and acknowledges a press by writing the released state back.
// A missing button source is recreated as released.
func (b *ButtonDebouncer) Poll(ctx context.Context) bool {
	raw, err := b.source.ReadButton(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if werr := b.source.WriteButton(ctx, false); werr != nil {
				b.log.Warnw("recreate button source", "error", werr)
			} else {
				b.log.Infow("button source recreated")
			}
		} else {
			b.log.Debugw("button read failed", "error", err)
		}
		b.Observe(false)
		return false
	}

	if !b.Observe(raw) {
		return false
	}
	if err := b.source.WriteButton(ctx, false); err != nil {
		b.log.Warnw("reset button source", "error", err)
	}
	return true
}

// Press simulates the operator pushing the button.
func (b *ButtonDebouncer) Press(ctx context.Context) error {
	return b.source.WriteButton(ctx, true)
}
