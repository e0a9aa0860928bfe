package service

import (
	"context"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/models"
	"smart_fridge/internal/render"
	"smart_fridge/internal/repository"

	"github.com/spf13/afero"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes read-only controller state.
type Monitoring interface {
	GetStatus(ctx context.Context) (Snapshot, error)
	GetDisplay(ctx context.Context) (repository.DisplayRecord, error)
	Subscribe() (<-chan Snapshot, func())
}

// Control forwards operator commands to the monitor loop.
type Control interface {
	SetLevel(ctx context.Context, level logger.Level) error
	PressButton(ctx context.Context) error
}

// EventLog exposes the persisted history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.FridgeEvent, error)
}

// Runner drives the controller until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

type Service struct {
	Monitoring
	Control
	EventLog
	Runner
	Authorization
}

// Deps are the process-level collaborators of the services.
type Deps struct {
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Fs      afero.Fs      // used for the log size check; nil skips it
	Sinks   []render.Sink // display outputs besides the persisted copy
}

// NewService wires the repository layer into the monitor loop and the API services.
func NewService(cfg config.Config, repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	board := NewStatusBoard()

	var loop *MonitorLoop
	sinks := append(render.Multi{}, deps.Sinks...)
	if repos.Display != nil {
		sinks = append(sinks, render.NewStore(repos.Display, func() (*models.SensorSample, string) {
			return loop.displayState()
		}))
	}

	var sim *SensorSimulator
	if cfg.Simulator.Enabled {
		sim = NewSensorSimulator(repos.Source, cfg.Targets, NewRand(cfg.Simulator.Seed), log)
	}

	var db Pinger
	if repos.DB != nil {
		db = repos.DB
	}

	loop = NewMonitorLoop(cfg.Intervals, LoopParts{
		Reader:    NewSensorReader(repos.Source, cfg.Targets, log, deps.Metrics),
		Simulator: sim,
		Tracker:   NewChangeTracker(repos.Source, log),
		Alarms:    NewAlarmEvaluator(cfg.Thresholds, log),
		Button:    NewButtonDebouncer(repos.Source, log),
		Levels:    NewLogLevelController(log, deps.Metrics),
		Display:   NewDisplayStateMachine(cfg, sinks, log, deps.Metrics),
		SelfCheck: NewSelfCheck(repos.Source, db, deps.Fs, log.FilePath(), cfg.Log.MaxBytes, log),
		Events:    repos.EventRepo,
		Board:     board,
		Log:       log,
		Metrics:   deps.Metrics,
	})

	return &Service{
		Monitoring:    NewMonitoringService(board, repos.Display),
		Control:       loop,
		EventLog:      NewEventLogService(repos.EventRepo),
		Runner:        loop,
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
	}
}
