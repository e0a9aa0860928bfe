package service

import (
	"context"
	"fmt"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/models"
	"smart_fridge/internal/render"
)

// Display texts.
const (
	MsgSensorError     = "SENSOR ERROR"
	MsgTempTooHigh     = "TEMPERATURE TOO HIGH"
	MsgTempTooLow      = "TEMPERATURE TOO LOW"
	MsgDoorOpenTooLong = "DOOR OPEN TOO LONG"
	MsgDoorOpen        = "Door is open"
	MsgEnergyTooHigh   = "ENERGY TOO HIGH"
	MsgStatusOK        = "Status: OK"
)

// statusRule maps a predicate to the second display line; the first match wins.
type statusRule struct {
	match   func(th config.Thresholds, s models.SensorSample, now time.Time) bool
	message func(th config.Thresholds, s models.SensorSample, now time.Time) string
}

func fixed(msg string) func(config.Thresholds, models.SensorSample, time.Time) string {
	return func(config.Thresholds, models.SensorSample, time.Time) string { return msg }
}

var statusRules = []statusRule{
	{
		match: func(_ config.Thresholds, s models.SensorSample, _ time.Time) bool {
			return !s.Valid
		},
		message: fixed(MsgSensorError),
	},
	{
		match: func(th config.Thresholds, s models.SensorSample, _ time.Time) bool {
			return s.TemperatureC > th.MaxTempC
		},
		message: fixed(MsgTempTooHigh),
	},
	{
		match: func(th config.Thresholds, s models.SensorSample, _ time.Time) bool {
			return s.TemperatureC < th.MinTempC
		},
		message: fixed(MsgTempTooLow),
	},
	{
		match: func(_ config.Thresholds, s models.SensorSample, _ time.Time) bool {
			return s.DoorOpen
		},
		message: func(th config.Thresholds, s models.SensorSample, now time.Time) string {
			if doorOpenTooLong(th, s, now) {
				return MsgDoorOpenTooLong
			}
			return MsgDoorOpen
		},
	},
	{
		match: func(th config.Thresholds, s models.SensorSample, _ time.Time) bool {
			return s.EnergyWatts > th.MaxEnergyW
		},
		message: fixed(MsgEnergyTooHigh),
	},
}

// DisplayStateMachine keeps the last shown frame and renders only what changed.
type DisplayStateMachine struct {
	cfg     config.Config
	sink    render.Sink
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	last models.DisplayLines
}

func NewDisplayStateMachine(cfg config.Config, sink render.Sink, log *logger.Logger, m *metrics.Metrics) *DisplayStateMachine {
	return &DisplayStateMachine{
		cfg:     cfg,
		sink:    sink,
		log:     log,
		metrics: m,
		now:     time.Now,
		last:    models.BlankLines(cfg.Display.Cols),
	}
}

// WithClock replaces the time source used for the door timer.
func (d *DisplayStateMachine) WithClock(now func() time.Time) *DisplayStateMachine {
	d.now = now
	return d
}

// Current returns the last frame handed to the sink.
func (d *DisplayStateMachine) Current() models.DisplayLines {
	return d.last
}

// StatusLines builds the status frame without rendering it.
func (d *DisplayStateMachine) StatusLines(s models.SensorSample, level logger.Level) models.DisplayLines {
	door := "CLOSED"
	if s.DoorOpen {
		door = "OPEN"
	}
	line1 := fmt.Sprintf("%c T:%.1fC D:%s E:%.0fW", level.Indicator(), s.TemperatureC, door, s.EnergyWatts)

	th, now := d.cfg.Thresholds, d.now()
	line2 := MsgStatusOK
	for _, r := range statusRules {
		if r.match(th, s, now) {
			line2 = r.message(th, s, now)
			break
		}
	}

	cols := d.cfg.Display.Cols
	return models.DisplayLines{Line1: models.PadLine(line1, cols), Line2: models.PadLine(line2, cols)}
}

// RenderStatus renders the status frame if it differs from the last one.
// It reports the frame now shown and whether it was rendered.
func (d *DisplayStateMachine) RenderStatus(ctx context.Context, s models.SensorSample, level logger.Level) (models.DisplayLines, bool) {
	lines := d.StatusLines(s, level)
	if lines == d.last {
		return d.last, false
	}
	d.show(ctx, "status", lines)
	return lines, true
}

// ShowWarning replaces the second line, keeping the first.
func (d *DisplayStateMachine) ShowWarning(ctx context.Context, text string) {
	d.show(ctx, "warning", models.DisplayLines{
		Line1: d.last.Line1,
		Line2: models.PadLine("WARNING: "+text, d.cfg.Display.Cols),
	})
}

func (d *DisplayStateMachine) ShowError(ctx context.Context, text string) {
	cols := d.cfg.Display.Cols
	d.show(ctx, "error", models.DisplayLines{
		Line1: models.PadLine("ERROR: "+text, cols),
		Line2: models.PadLine("Check system!", cols),
	})
}

func (d *DisplayStateMachine) ShowStartup(ctx context.Context) {
	cols := d.cfg.Display.Cols
	d.show(ctx, "startup", models.DisplayLines{
		Line1: models.CenterLine("Smart Fridge v1.0", cols),
		Line2: models.CenterLine("System starting...", cols),
	})
}

func (d *DisplayStateMachine) ShowShutdown(ctx context.Context) {
	cols := d.cfg.Display.Cols
	d.show(ctx, "shutdown", models.DisplayLines{
		Line1: models.CenterLine("System shutting down...", cols),
		Line2: models.CenterLine("Goodbye!", cols),
	})
}

// ShowSystemInfo shows targets and thresholds.
func (d *DisplayStateMachine) ShowSystemInfo(ctx context.Context) {
	cols := d.cfg.Display.Cols
	th, tg := d.cfg.Thresholds, d.cfg.Targets
	d.show(ctx, "info", models.DisplayLines{
		Line1: models.PadLine(fmt.Sprintf("Target: %.1fC | Max: %.1fC | Min: %.1fC", tg.TemperatureC, th.MaxTempC, th.MinTempC), cols),
		Line2: models.PadLine(fmt.Sprintf("Energy target: %.0fW | Max: %.0fW", tg.EnergyWatts, th.MaxEnergyW), cols),
	})
}

// show always renders. A failing sink degrades to a log entry.
func (d *DisplayStateMachine) show(ctx context.Context, screen string, lines models.DisplayLines) {
	d.last = lines
	d.metrics.Render(screen)
	if d.sink == nil {
		return
	}
	if err := d.sink.Render(ctx, lines); err != nil {
		d.log.Warnw("display render failed", "screen", screen, "error", err)
	}
}
