package service

import (
	"context"
	"fmt"
	"math"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
)

// Plausible physical ranges of the emulated sensors.
const (
	MinPlausibleTempC   = -50.0
	MaxPlausibleTempC   = 50.0
	MinPlausibleEnergyW = 0.0
	MaxPlausibleEnergyW = 1000.0
)

// SensorReader collects one sample from the sensor source.
type SensorReader struct {
	source  repository.SensorSource
	targets config.Targets
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewSensorReader(source repository.SensorSource, targets config.Targets, log *logger.Logger, m *metrics.Metrics) *SensorReader {
	return &SensorReader{source: source, targets: targets, log: log, metrics: m}
}

// Read never fails: a sub-read that fails is replaced by its fallback and the
// sample is marked invalid, as is a sample with an implausible value.
func (r *SensorReader) Read(ctx context.Context) models.SensorSample {
	s := models.SensorSample{Valid: true}

	temp, err := r.source.ReadTemperature(ctx)
	if err != nil {
		r.readFailed(repository.TemperatureSource, err)
		temp = r.targets.TemperatureC
		s.Valid = false
	}
	s.TemperatureC = temp

	door, err := r.source.ReadDoor(ctx)
	if err != nil {
		r.readFailed(repository.DoorSource, err)
		door = models.DoorReading{}
		s.Valid = false
	}

	energy, err := r.source.ReadEnergy(ctx)
	if err != nil {
		r.readFailed(repository.EnergySource, err)
		energy = r.targets.EnergyWatts
		s.Valid = false
	}
	s.EnergyWatts = energy

	switch door.State {
	case 0:
	case 1:
		s.DoorOpen = true
		s.DoorOpenSince = door.Since
	default:
		r.invalid(repository.DoorSource, fmt.Errorf("%w: door state %d", ErrValidation, door.State))
		s.Valid = false
	}

	if err := checkRange("temperature", s.TemperatureC, MinPlausibleTempC, MaxPlausibleTempC); err != nil {
		r.invalid(repository.TemperatureSource, err)
		s.Valid = false
		if math.IsNaN(s.TemperatureC) {
			s.TemperatureC = r.targets.TemperatureC
		}
	}
	if err := checkRange("energy", s.EnergyWatts, MinPlausibleEnergyW, MaxPlausibleEnergyW); err != nil {
		r.invalid(repository.EnergySource, err)
		s.Valid = false
		if math.IsNaN(s.EnergyWatts) {
			s.EnergyWatts = r.targets.EnergyWatts
		}
	}

	return s
}

func (r *SensorReader) readFailed(id repository.SourceID, err error) {
	r.metrics.ReadFailure(id.String(), "read")
	r.log.Warnw("sensor read failed, using fallback", "sensor", id.String(), "error", fmt.Errorf("%w: %w", ErrReadFailure, err))
}

func (r *SensorReader) invalid(id repository.SourceID, err error) {
	r.metrics.ReadFailure(id.String(), "range")
	r.log.Warnw("sensor value rejected", "sensor", id.String(), "error", err)
}

// checkRange rejects NaN and values outside [lo, hi].
func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s %.2f not in [%g, %g]", ErrValidation, name, v, lo, hi)
	}
	return nil
}
