package service

import (
	"context"

	"smart_fridge/internal/repository"
)

type MonitoringService struct {
	board   *StatusBoard
	display repository.DisplayRepo
}

func NewMonitoringService(board *StatusBoard, display repository.DisplayRepo) *MonitoringService {
	return &MonitoringService{board: board, display: display}
}

// GetStatus returns the snapshot of the last tick.
func (s *MonitoringService) GetStatus(_ context.Context) (Snapshot, error) {
	snap := s.board.Get()
	snap.UpdatedAt = toUTC(snap.UpdatedAt)
	return snap, nil
}

// GetDisplay returns the persisted display row, which outlives restarts.
func (s *MonitoringService) GetDisplay(ctx context.Context) (repository.DisplayRecord, error) {
	rec, err := s.display.Load(ctx)
	if err != nil {
		return repository.DisplayRecord{}, err
	}
	rec.UpdatedAt = toUTC(rec.UpdatedAt)
	return rec, nil
}

func (s *MonitoringService) Subscribe() (<-chan Snapshot, func()) {
	return s.board.Subscribe()
}
