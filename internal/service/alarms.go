package service

import (
	"fmt"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/models"
)

type AlarmKind string

const (
	AlarmTemperatureHigh AlarmKind = "TEMPERATURE_HIGH"
	AlarmTemperatureLow  AlarmKind = "TEMPERATURE_LOW"
	AlarmDoorOpenTooLong AlarmKind = "DOOR_OPEN_TOO_LONG"
	AlarmEnergyHigh      AlarmKind = "ENERGY_HIGH"
	AlarmSensorInvalid   AlarmKind = "SENSOR_INVALID"
)

// AlarmCondition is one triggered rule. Door values are in seconds.
type AlarmCondition struct {
	Kind      AlarmKind `json:"kind"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// Message is the operator-readable description with the measured value and limit.
func (c AlarmCondition) Message() string {
	switch c.Kind {
	case AlarmTemperatureHigh:
		return fmt.Sprintf("temperature too high: %.1fC (max %.1fC)", c.Value, c.Threshold)
	case AlarmTemperatureLow:
		return fmt.Sprintf("temperature too low: %.1fC (min %.1fC)", c.Value, c.Threshold)
	case AlarmDoorOpenTooLong:
		return fmt.Sprintf("door open too long: %.0fs (max %.0fs)", c.Value, c.Threshold)
	case AlarmEnergyHigh:
		return fmt.Sprintf("energy consumption too high: %.0fW (max %.0fW)", c.Value, c.Threshold)
	case AlarmSensorInvalid:
		return "sensor data invalid"
	default:
		return string(c.Kind)
	}
}

// doorOpenTooLong compares whole elapsed seconds, so a 30s limit trips at 31s.
func doorOpenTooLong(th config.Thresholds, s models.SensorSample, now time.Time) bool {
	if !s.DoorOpen {
		return false
	}
	return int64(s.DoorOpenFor(now)/time.Second) > int64(th.DoorOpen/time.Second)
}

// alarmRule reports the measured value and threshold when it triggers.
type alarmRule struct {
	kind  AlarmKind
	check func(th config.Thresholds, s models.SensorSample, now time.Time) (value, threshold float64, ok bool)
}

// alarmRules are evaluated in order; every triggered rule is reported.
var alarmRules = []alarmRule{
	{AlarmTemperatureHigh, func(th config.Thresholds, s models.SensorSample, _ time.Time) (float64, float64, bool) {
		return s.TemperatureC, th.MaxTempC, s.TemperatureC > th.MaxTempC
	}},
	{AlarmTemperatureLow, func(th config.Thresholds, s models.SensorSample, _ time.Time) (float64, float64, bool) {
		return s.TemperatureC, th.MinTempC, s.TemperatureC < th.MinTempC
	}},
	{AlarmDoorOpenTooLong, func(th config.Thresholds, s models.SensorSample, now time.Time) (float64, float64, bool) {
		open := s.DoorOpenFor(now)
		return open.Seconds(), th.DoorOpen.Seconds(), doorOpenTooLong(th, s, now)
	}},
	{AlarmEnergyHigh, func(th config.Thresholds, s models.SensorSample, _ time.Time) (float64, float64, bool) {
		return s.EnergyWatts, th.MaxEnergyW, s.EnergyWatts > th.MaxEnergyW
	}},
	{AlarmSensorInvalid, func(_ config.Thresholds, s models.SensorSample, _ time.Time) (float64, float64, bool) {
		return 0, 0, !s.Valid
	}},
}

// AlarmEvaluator checks a sample against the configured thresholds.
type AlarmEvaluator struct {
	thresholds config.Thresholds
	log        *logger.Logger
	now        func() time.Time
}

func NewAlarmEvaluator(th config.Thresholds, log *logger.Logger) *AlarmEvaluator {
	return &AlarmEvaluator{thresholds: th, log: log, now: time.Now}
}

// WithClock replaces the time source used for the door timer.
func (e *AlarmEvaluator) WithClock(now func() time.Time) *AlarmEvaluator {
	e.now = now
	return e
}

// Evaluate returns all triggered conditions in rule order.
func (e *AlarmEvaluator) Evaluate(s models.SensorSample) []AlarmCondition {
	now := e.now()

	var out []AlarmCondition
	for _, r := range alarmRules {
		v, th, ok := r.check(e.thresholds, s, now)
		if !ok {
			continue
		}
		c := AlarmCondition{Kind: r.kind, Value: v, Threshold: th}
		e.log.Warnw("ALARM: "+c.Message(), "kind", string(c.Kind), "value", v, "threshold", th)
		out = append(out, c)
	}
	return out
}
