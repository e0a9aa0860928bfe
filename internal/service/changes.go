package service

import (
	"context"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
)

// ChangeTracker decides whether the sensor state changed since the last accepted sample.
// Every source starts out as nonexistent.
type ChangeTracker struct {
	source  repository.SensorSource
	log     *logger.Logger
	markers map[repository.SourceID]models.ChangeMarker
	last    *models.SensorSample
}

func NewChangeTracker(source repository.SensorSource, log *logger.Logger) *ChangeTracker {
	return &ChangeTracker{
		source:  source,
		log:     log,
		markers: make(map[repository.SourceID]models.ChangeMarker),
	}
}

// HasChanged compares the current marker of one source with the recorded one.
func (t *ChangeTracker) HasChanged(ctx context.Context, id repository.SourceID) bool {
	cur, err := t.source.Marker(ctx, id)
	if err != nil {
		t.log.Debugw("sensor marker unavailable", "source", id.String(), "error", err)
		return false
	}
	prev := t.markers[id]

	switch {
	case !cur.Exists && prev.Exists:
		t.markers[id] = models.ChangeMarker{}
		t.log.Warnw("sensor source disappeared", "source", id.String())
		return true
	case !cur.Exists:
		return false
	case !prev.Exists:
		t.markers[id] = cur
		t.log.Infow("sensor source appeared", "source", id.String())
		return true
	case !cur.Same(prev):
		t.markers[id] = cur
		t.log.Debugw("sensor source modified", "source", id.String())
		return true
	}
	return false
}

// AnyChanged checks every watched source once; it does not stop at the first change.
func (t *ChangeTracker) AnyChanged(ctx context.Context) bool {
	changed := false
	for _, id := range repository.WatchedSources {
		if t.HasChanged(ctx, id) {
			changed = true
		}
	}
	return changed
}

// SampleChanged is true when no sample was accepted yet or the values differ.
func (t *ChangeTracker) SampleChanged(s models.SensorSample) bool {
	return t.last == nil || !t.last.Equal(s)
}

// Accept records s as the last known sample.
func (t *ChangeTracker) Accept(s models.SensorSample) {
	t.last = &s
}

// Last returns the last accepted sample.
func (t *ChangeTracker) Last() (models.SensorSample, bool) {
	if t.last == nil {
		return models.SensorSample{}, false
	}
	return *t.last, true
}
