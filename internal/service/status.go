package service

import (
	"sync"
	"time"

	"smart_fridge/internal/models"
)

// Snapshot is the state published by the monitor loop after every tick.
type Snapshot struct {
	Sample    models.SensorSample `json:"sample"`
	Display   models.DisplayLines `json:"display"`
	LogLevel  string              `json:"log_level"`
	Level     int                 `json:"level"`
	Alarms    []AlarmCondition    `json:"alarms"`
	Ticks     uint64              `json:"ticks"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// StatusBoard hands the latest snapshot from the loop to concurrent readers.
type StatusBoard struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[chan Snapshot]struct{}
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{subs: make(map[chan Snapshot]struct{})}
}

func (b *StatusBoard) Get() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// Publish stores s and offers it to subscribers. Slow subscribers miss snapshots.
func (b *StatusBoard) Publish(s Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribe returns a channel of published snapshots and a func to stop receiving.
func (b *StatusBoard) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}
