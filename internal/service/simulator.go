package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"
)

// ----------- Simulation constants -----------
const (
	TempSpreadC         = 2.0  // ± around the target temperature
	EnergySpreadW       = 30.0 // ± around the target energy draw
	DoorOpenExtraW      = 50.0 // compressor load while the door is open
	DoorOpenProbability = 0.10 // chance per write that the door is open
)

// SensorSimulator writes synthesized readings into the sensor source.
type SensorSimulator struct {
	source  repository.SensorSource
	targets config.Targets
	rng     *rand.Rand
	log     *logger.Logger

	doorOpen  bool
	doorSince time.Time
}

func NewSensorSimulator(source repository.SensorSource, targets config.Targets, rng *rand.Rand, log *logger.Logger) *SensorSimulator {
	return &SensorSimulator{source: source, targets: targets, rng: rng, log: log}
}

// NewRand returns the generator used by the simulator. A zero seed picks one from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
}

// Step synthesizes one set of values and writes them. The door keeps its open
// timestamp while it stays open across steps.
func (s *SensorSimulator) Step(ctx context.Context, now time.Time) error {
	temp := s.targets.TemperatureC + s.spread(TempSpreadC)

	open := s.rng.Float64() < DoorOpenProbability
	switch {
	case open && !s.doorOpen:
		s.doorSince = now.UTC().Truncate(time.Second)
	case !open:
		s.doorSince = time.Time{}
	}
	s.doorOpen = open

	energy := s.targets.EnergyWatts + s.spread(EnergySpreadW)
	if open {
		energy += DoorOpenExtraW
	}

	door := models.DoorReading{Since: s.doorSince}
	if open {
		door.State = 1
	}

	err := errors.Join(
		s.source.WriteTemperature(ctx, temp),
		s.source.WriteDoor(ctx, door),
		s.source.WriteEnergy(ctx, energy),
	)
	if err != nil {
		return err
	}

	s.log.Debugw("simulated sensor values written",
		"temperature_c", temp,
		"door_open", open,
		"energy_w", energy,
	)
	return nil
}

// spread returns a uniform value in [-width, width).
func (s *SensorSimulator) spread(width float64) float64 {
	return (s.rng.Float64()*2 - 1) * width
}
