package models

import "time"

// Event types persisted to the fridge history.
const (
	EventStart           = "START"
	EventStop            = "STOP"
	EventAlarmRaised     = "ALARM_RAISED"
	EventAlarmCleared    = "ALARM_CLEARED"
	EventLevelChange     = "LEVEL_CHANGE"
	EventSelfCheckFailed = "SELF_CHECK_FAILED"
)

// FridgeEvent is a single history entry.
type FridgeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | ALARM_RAISED | ALARM_CLEARED | LEVEL_CHANGE | SELF_CHECK_FAILED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
