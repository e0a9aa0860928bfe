package models

import "time"

// SensorSample is the set of readings collected in one tick.
// A zero DoorOpenSince means no open timestamp is known.
type SensorSample struct {
	TemperatureC  float64   `json:"temperature_c"`
	DoorOpen      bool      `json:"door_open"`
	DoorOpenSince time.Time `json:"door_open_since"`
	EnergyWatts   float64   `json:"energy_watts"`
	Valid         bool      `json:"valid"`
}

// Equal reports whether both samples carry the same values.
func (s SensorSample) Equal(o SensorSample) bool {
	return s.TemperatureC == o.TemperatureC &&
		s.DoorOpen == o.DoorOpen &&
		s.DoorOpenSince.Equal(o.DoorOpenSince) &&
		s.EnergyWatts == o.EnergyWatts &&
		s.Valid == o.Valid
}

// DoorOpenFor returns how long the door has been open at now.
// It is zero when the door is closed or the open timestamp is unknown.
func (s SensorSample) DoorOpenFor(now time.Time) time.Duration {
	if !s.DoorOpen || s.DoorOpenSince.IsZero() {
		return 0
	}
	return now.Sub(s.DoorOpenSince)
}

// DoorReading is the raw door value as stored by a sensor source.
// State is kept raw so out-of-range values can be validated.
type DoorReading struct {
	State int
	Since time.Time
}

// ChangeMarker is the last-write indicator of one sensor source.
type ChangeMarker struct {
	ModTime time.Time
	Size    int64
	Exists  bool
}

// Same reports whether two markers describe the same source content.
func (m ChangeMarker) Same(o ChangeMarker) bool {
	return m.Exists == o.Exists && m.Size == o.Size && m.ModTime.Equal(o.ModTime)
}
