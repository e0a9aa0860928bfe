package render

import (
	"context"
	"time"

	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
)

// StateFunc reports the sample and log level shown with a frame.
type StateFunc func() (*models.SensorSample, string)

// Store persists the last frame so it survives restarts and can be served over HTTP.
type Store struct {
	repo  repository.DisplayRepo
	state StateFunc
}

func NewStore(repo repository.DisplayRepo, state StateFunc) *Store {
	return &Store{repo: repo, state: state}
}

func (s *Store) Render(ctx context.Context, lines models.DisplayLines) error {
	rec := repository.DisplayRecord{Lines: lines, UpdatedAt: time.Now().UTC()}
	if s.state != nil {
		rec.Sample, rec.LogLevel = s.state()
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return unavailable("display store", err)
	}
	return nil
}
