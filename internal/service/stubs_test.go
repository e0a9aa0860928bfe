package service

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/models"
	"smart_fridge/internal/repository"

	"go.uber.org/zap/zapcore"
)

// memSource is an in-memory repository.SensorSource. Missing values read as
// fs.ErrNotExist; every write bumps the source's marker.
type memSource struct {
	mu sync.Mutex

	temp   *float64
	door   *models.DoorReading
	energy *float64
	button *bool

	readErr  map[repository.SourceID]error
	writeErr error
	pingErr  error

	versions map[repository.SourceID]int64
	writes   []string
}

func newMemSource(temp float64, door models.DoorReading, energy float64) *memSource {
	s := &memSource{
		readErr:  make(map[repository.SourceID]error),
		versions: make(map[repository.SourceID]int64),
	}
	s.setTemp(temp)
	s.setDoor(door)
	s.setEnergy(energy)
	released := false
	s.button = &released
	return s
}

func notExist(id repository.SourceID) error {
	return &fs.PathError{Op: "open", Path: id.String(), Err: fs.ErrNotExist}
}

func (s *memSource) setTemp(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp = &v
	s.versions[repository.TemperatureSource]++
}

func (s *memSource) setDoor(d models.DoorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.door = &d
	s.versions[repository.DoorSource]++
}

func (s *memSource) setEnergy(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.energy = &v
	s.versions[repository.EnergySource]++
}

func (s *memSource) ReadTemperature(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErr[repository.TemperatureSource]; err != nil {
		return 0, err
	}
	if s.temp == nil {
		return 0, notExist(repository.TemperatureSource)
	}
	return *s.temp, nil
}

func (s *memSource) ReadDoor(context.Context) (models.DoorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErr[repository.DoorSource]; err != nil {
		return models.DoorReading{}, err
	}
	if s.door == nil {
		return models.DoorReading{}, notExist(repository.DoorSource)
	}
	return *s.door, nil
}

func (s *memSource) ReadEnergy(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErr[repository.EnergySource]; err != nil {
		return 0, err
	}
	if s.energy == nil {
		return 0, notExist(repository.EnergySource)
	}
	return *s.energy, nil
}

func (s *memSource) ReadButton(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readErr[repository.ButtonSource]; err != nil {
		return false, err
	}
	if s.button == nil {
		return false, notExist(repository.ButtonSource)
	}
	return *s.button, nil
}

func (s *memSource) write(name string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, name)
	return nil
}

func (s *memSource) WriteTemperature(_ context.Context, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("temperature"); err != nil {
		return err
	}
	s.temp = &v
	s.versions[repository.TemperatureSource]++
	return nil
}

func (s *memSource) WriteDoor(_ context.Context, d models.DoorReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("door"); err != nil {
		return err
	}
	s.door = &d
	s.versions[repository.DoorSource]++
	return nil
}

func (s *memSource) WriteEnergy(_ context.Context, v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("energy"); err != nil {
		return err
	}
	s.energy = &v
	s.versions[repository.EnergySource]++
	return nil
}

func (s *memSource) WriteButton(_ context.Context, pressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("button"); err != nil {
		return err
	}
	s.button = &pressed
	s.versions[repository.ButtonSource]++
	return nil
}

func (s *memSource) Marker(_ context.Context, id repository.SourceID) (models.ChangeMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists := true
	switch id {
	case repository.TemperatureSource:
		exists = s.temp != nil
	case repository.DoorSource:
		exists = s.door != nil
	case repository.EnergySource:
		exists = s.energy != nil
	case repository.ButtonSource:
		exists = s.button != nil
	}
	if !exists {
		return models.ChangeMarker{}, nil
	}
	return models.ChangeMarker{Size: s.versions[id], Exists: true}, nil
}

func (s *memSource) Ping(context.Context) error { return s.pingErr }

// memEvents is an in-memory repository.EventRepo.
type memEvents struct {
	mu     sync.Mutex
	events []models.FridgeEvent
	err    error
}

func (m *memEvents) Append(_ context.Context, e models.FridgeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(_ context.Context, _, _ time.Time, typ string) ([]models.FridgeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FridgeEvent
	for _, e := range m.events {
		if typ == "" || e.Type == typ {
			out = append(out, e)
		}
	}
	return out, m.err
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// recordingSink remembers every rendered frame.
type recordingSink struct {
	mu     sync.Mutex
	frames []models.DisplayLines
	err    error
}

func (r *recordingSink) Render(_ context.Context, lines models.DisplayLines) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, lines)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingSink) last() models.DisplayLines {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return models.DisplayLines{}
	}
	return r.frames[len(r.frames)-1]
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) count(substr string) int {
	return strings.Count(b.String(), substr)
}

func newTestLogger(level logger.Level) (*logger.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return logger.New(level, zapcore.WriteSyncer(buf)), buf
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Intervals = config.Intervals{
		Tick:           10 * time.Millisecond,
		SensorRead:     time.Second,
		SimulatorWrite: 5 * time.Second,
		ButtonPoll:     2 * time.Second,
		SelfCheck:      30 * time.Second,
		ConfirmHold:    2 * time.Second,
	}
	cfg.Simulator.Enabled = false
	return cfg
}

var errBoom = errors.New("boom")

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
