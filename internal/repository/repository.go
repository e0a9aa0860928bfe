package repository

import (
	"context"
	"database/sql"
	"time"

	"smart_fridge/internal/models"
)

// SourceID names one externally-mutable sensor value.
type SourceID int

const (
	TemperatureSource SourceID = iota
	DoorSource
	EnergySource
	ButtonSource
)

// WatchedSources are the sources checked for changes every read tick.
var WatchedSources = []SourceID{TemperatureSource, DoorSource, EnergySource}

func (id SourceID) String() string {
	switch id {
	case TemperatureSource:
		return "temperature"
	case DoorSource:
		return "door"
	case EnergySource:
		return "energy"
	case ButtonSource:
		return "button"
	default:
		return "unknown"
	}
}

// SensorSource is read/write access to the emulated hardware values.
// Each value is independently present or absent.
type SensorSource interface {
	ReadTemperature(ctx context.Context) (float64, error)
	ReadDoor(ctx context.Context) (models.DoorReading, error)
	ReadEnergy(ctx context.Context) (float64, error)
	ReadButton(ctx context.Context) (bool, error)

	WriteTemperature(ctx context.Context, celsius float64) error
	WriteDoor(ctx context.Context, door models.DoorReading) error
	WriteEnergy(ctx context.Context, watts float64) error
	WriteButton(ctx context.Context, pressed bool) error

	// Marker reports the last-write indicator of a source. A missing source
	// is not an error: it yields a marker with Exists=false.
	Marker(ctx context.Context, id SourceID) (models.ChangeMarker, error)
	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

// DisplayRepo persists the last rendered display.
type DisplayRepo interface {
	Save(ctx context.Context, d DisplayRecord) error
	Load(ctx context.Context) (DisplayRecord, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.FridgeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.FridgeEvent, error)
}

type Repository struct {
	DB        *sql.DB
	Source    SensorSource
	Display   DisplayRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB, source SensorSource) *Repository {
	return &Repository{
		DB:        db,
		Source:    source,
		Display:   NewDisplaySQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewOperatorRepository(db),
	}
}
