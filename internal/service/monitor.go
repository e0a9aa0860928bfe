package service

import (
	"context"
	"math"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"

	"github.com/google/uuid"
)

// energyLogDelta is the energy change worth an info log entry.
const energyLogDelta = 10.0

// LoopParts are the components driven by the monitor loop. Simulator, SelfCheck
// and Events may be nil.
type LoopParts struct {
	Reader    *SensorReader
	Simulator *SensorSimulator
	Tracker   *ChangeTracker
	Alarms    *AlarmEvaluator
	Button    *ButtonDebouncer
	Levels    *LogLevelController
	Display   *DisplayStateMachine
	SelfCheck *SelfCheck
	Events    repository.EventRepo
	Board     *StatusBoard
	Log       *logger.Logger
	Metrics   *metrics.Metrics
}

type levelRequest struct {
	ctx   context.Context
	level logger.Level
	reply chan error
}

// MonitorLoop polls the sensors and drives alarms and the display. All of its
// state is owned by the goroutine calling Run; other goroutines talk to it
// through SetLevel and the StatusBoard.
type MonitorLoop struct {
	LoopParts
	intervals config.Intervals
	now       func() time.Time

	requests chan levelRequest

	lastSim, lastRead, lastButton, lastSelfCheck time.Time

	holding   bool
	holdUntil time.Time

	sample     models.SensorSample
	haveSample bool
	alarms     []AlarmCondition
	active     map[AlarmKind]AlarmCondition
	ticks      uint64
}

func NewMonitorLoop(intervals config.Intervals, parts LoopParts) *MonitorLoop {
	if parts.Board == nil {
		parts.Board = NewStatusBoard()
	}
	if parts.Log == nil {
		parts.Log = logger.NewNop()
	}
	return &MonitorLoop{
		LoopParts: parts,
		intervals: intervals,
		now:       time.Now,
		requests:  make(chan levelRequest, 8),
		active:    make(map[AlarmKind]AlarmCondition),
	}
}

// WithClock replaces the time source of Run.
func (m *MonitorLoop) WithClock(now func() time.Time) *MonitorLoop {
	m.now = now
	return m
}

// Run shows the startup screens and ticks until ctx is cancelled.
func (m *MonitorLoop) Run(ctx context.Context) error {
	m.Log.Infow("monitor loop starting",
		"tick", m.intervals.Tick,
		"sensor_read", m.intervals.SensorRead,
		"simulator", m.Simulator != nil,
	)
	m.Display.ShowStartup(ctx)
	m.appendEvent(ctx, m.now(), models.EventStart, "controller started", nil)

	if sleepCtx(ctx, m.intervals.ConfirmHold) {
		m.Display.ShowSystemInfo(ctx)
		m.startHold(ctx, m.now())
	}

	for ctx.Err() == nil {
		m.Tick(ctx, m.now())
		sleepCtx(ctx, m.intervals.Tick)
	}

	// the run context is done; final I/O uses a detached one
	final := context.WithoutCancel(ctx)
	m.Log.Infow("monitor loop stopping")
	m.Display.ShowShutdown(final)
	m.rejectRequests()
	m.appendEvent(final, m.now(), models.EventStop, "controller stopped", nil)
	m.publish(m.now())
	return nil
}

// Tick runs every subsystem whose interval has elapsed at now.
func (m *MonitorLoop) Tick(ctx context.Context, now time.Time) {
	m.ticks++
	m.Metrics.Tick()

	if m.Simulator != nil && due(&m.lastSim, now, m.intervals.SimulatorWrite) {
		if err := m.Simulator.Step(ctx, now); err != nil {
			m.Log.Warnw("simulator write failed", "error", err)
		}
	}
	if due(&m.lastRead, now, m.intervals.SensorRead) {
		m.readSensors(ctx, now)
	}
	if due(&m.lastButton, now, m.intervals.ButtonPoll) && m.Button.Poll(ctx) {
		prev := m.Levels.Current()
		m.levelChanged(ctx, now, prev, m.Levels.Bump(), "button")
	}
	if m.holding && !now.Before(m.holdUntil) {
		m.holding = false
		m.refreshDisplay(ctx)
	}
	if m.SelfCheck != nil && due(&m.lastSelfCheck, now, m.intervals.SelfCheck) {
		m.runSelfCheck(ctx, now)
	}
	m.drainRequests(ctx, now)
	m.publish(now)
}

// due reports whether interval has elapsed since *last and, if so, moves *last to now.
func due(last *time.Time, now time.Time, interval time.Duration) bool {
	if !last.IsZero() && now.Sub(*last) < interval {
		return false
	}
	*last = now
	return true
}

func (m *MonitorLoop) readSensors(ctx context.Context, now time.Time) {
	sample := m.Reader.Read(ctx)

	prev, hadPrev := m.Tracker.Last()
	markersChanged := m.Tracker.AnyChanged(ctx)
	if markersChanged || m.Tracker.SampleChanged(sample) {
		m.logChanges(prev, hadPrev, sample)
	}
	m.Tracker.Accept(sample)
	m.sample, m.haveSample = sample, true
	m.Metrics.Sample(sample.TemperatureC, sample.EnergyWatts, sample.DoorOpen)

	alarms := m.Alarms.Evaluate(sample)
	if len(alarms) > 0 {
		m.Log.Warnw("active alarms", "count", len(alarms))
	} else {
		m.Log.Debugw("active alarms", "count", 0)
	}
	m.trackAlarms(ctx, now, alarms)

	if !m.holding {
		m.refreshDisplay(ctx)
	}
}

func (m *MonitorLoop) logChanges(prev models.SensorSample, hadPrev bool, cur models.SensorSample) {
	m.Log.Debugw("sensor data updated",
		"temperature_c", cur.TemperatureC,
		"door_open", cur.DoorOpen,
		"energy_w", cur.EnergyWatts,
		"valid", cur.Valid,
	)
	if !hadPrev {
		return
	}
	if prev.TemperatureC != cur.TemperatureC {
		m.Log.Infof("temperature changed: %.1fC -> %.1fC", prev.TemperatureC, cur.TemperatureC)
	}
	if prev.DoorOpen != cur.DoorOpen {
		if cur.DoorOpen {
			m.Log.Infow("door opened")
		} else {
			m.Log.Infow("door closed")
		}
	}
	if math.Abs(prev.EnergyWatts-cur.EnergyWatts) > energyLogDelta {
		m.Log.Infof("energy consumption changed: %.0fW -> %.0fW", prev.EnergyWatts, cur.EnergyWatts)
	}
}

// trackAlarms persists raise and clear transitions of the active alarm set.
func (m *MonitorLoop) trackAlarms(ctx context.Context, now time.Time, alarms []AlarmCondition) {
	m.alarms = alarms

	current := make(map[AlarmKind]AlarmCondition, len(alarms))
	for _, a := range alarms {
		current[a.Kind] = a
		if _, ok := m.active[a.Kind]; ok {
			continue
		}
		m.Metrics.AlarmRaised(string(a.Kind))
		m.appendEvent(ctx, now, models.EventAlarmRaised, a.Message(), a)
	}
	for kind, a := range m.active {
		if _, ok := current[kind]; ok {
			continue
		}
		m.Metrics.AlarmCleared(string(kind))
		m.appendEvent(ctx, now, models.EventAlarmCleared, string(kind)+" cleared", a)
	}
	m.active = current
}

func (m *MonitorLoop) refreshDisplay(ctx context.Context) {
	if !m.haveSample {
		return
	}
	m.Display.RenderStatus(ctx, m.sample, m.Levels.Current())
}

func (m *MonitorLoop) setLevel(ctx context.Context, now time.Time, level logger.Level) error {
	prev := m.Levels.Current()
	if err := m.Levels.Set(level); err != nil {
		return err
	}
	m.levelChanged(ctx, now, prev, level, "api")
	return nil
}

// levelChanged records a level change, redraws the status with the new level
// and shows a confirmation for the hold interval.
func (m *MonitorLoop) levelChanged(ctx context.Context, now time.Time, prev, level logger.Level, origin string) {
	m.appendEvent(ctx, now, models.EventLevelChange,
		"log level changed from "+prev.String()+" to "+level.String(),
		map[string]any{"from": prev.String(), "to": level.String(), "origin": origin},
	)

	m.refreshDisplay(ctx)
	m.Display.ShowWarning(ctx, "Log level: "+level.String())
	m.startHold(ctx, now)
}

// startHold keeps the current override screen up for the confirm interval.
// With no interval the status is restored at once.
func (m *MonitorLoop) startHold(ctx context.Context, now time.Time) {
	if m.intervals.ConfirmHold <= 0 {
		m.holding = false
		m.refreshDisplay(ctx)
		return
	}
	m.holding = true
	m.holdUntil = now.Add(m.intervals.ConfirmHold)
}

func (m *MonitorLoop) runSelfCheck(ctx context.Context, now time.Time) {
	err := m.SelfCheck.Check(ctx)
	m.Metrics.SelfCheck(err == nil)
	if err == nil {
		return
	}
	m.Log.Errorw("self-check failed", "error", err)
	m.Display.ShowError(ctx, "Self-check failed")
	m.startHold(ctx, now)
	m.appendEvent(ctx, now, models.EventSelfCheckFailed, err.Error(), nil)
}

// SetLevel asks the loop to change the log level and waits for the result.
// A request abandoned by its caller is dropped, not applied later.
func (m *MonitorLoop) SetLevel(ctx context.Context, level logger.Level) error {
	if !level.Valid() {
		// rejected without touching the level; Set reports it at Warning
		return m.Levels.Set(level)
	}
	req := levelRequest{ctx: ctx, level: level, reply: make(chan error, 1)}
	select {
	case m.requests <- req:
	case <-ctx.Done():
		return ErrLoopUnavailable
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ErrLoopUnavailable
	}
}

func (m *MonitorLoop) drainRequests(ctx context.Context, now time.Time) {
	for {
		select {
		case req := <-m.requests:
			if req.ctx.Err() != nil {
				m.Log.Warnw("dropped abandoned log level request", "level", req.level.String())
				continue
			}
			req.reply <- m.setLevel(ctx, now, req.level)
		default:
			return
		}
	}
}

// rejectRequests answers queued requests once the loop stops ticking.
func (m *MonitorLoop) rejectRequests() {
	for {
		select {
		case req := <-m.requests:
			req.reply <- ErrLoopUnavailable
		default:
			return
		}
	}
}

func (m *MonitorLoop) publish(now time.Time) {
	level := m.Levels.Current()
	m.Board.Publish(Snapshot{
		Sample:    m.sample,
		Display:   m.Display.Current(),
		LogLevel:  level.String(),
		Level:     int(level),
		Alarms:    append([]AlarmCondition(nil), m.alarms...),
		Ticks:     m.ticks,
		UpdatedAt: now.UTC(),
	})
}

// displayState feeds the display store with what the current frame shows.
func (m *MonitorLoop) displayState() (*models.SensorSample, string) {
	level := m.Levels.Current().String()
	if !m.haveSample {
		return nil, level
	}
	s := m.sample
	return &s, level
}

func (m *MonitorLoop) appendEvent(ctx context.Context, now time.Time, typ, desc string, meta any) {
	if m.Events == nil {
		return
	}
	err := m.Events.Append(ctx, models.FridgeEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		m.Log.Warnw("append event failed", "type", typ, "error", err)
	}
}

// sleepCtx waits for d or until ctx is done; it reports whether the full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
