package logger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Level is the controller's log verbosity. Messages below the current level are dropped.
type Level int8

// Log levels in ascending severity.
const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
)

// levelCount is the number of valid levels; Next wraps around it.
const levelCount = 4

// ErrUnknownLevel is returned by ParseLevel for unrecognized input.
var ErrUnknownLevel = errors.New("unknown log level")

var levelNames = [levelCount]string{"DEBUG", "INFO", "WARNING", "ERROR"}

// Valid reports whether l is within [DebugLevel, ErrorLevel].
func (l Level) Valid() bool {
	return l >= DebugLevel && l <= ErrorLevel
}

// Next returns the cyclic successor: Debug → Info → Warning → Error → Debug.
func (l Level) Next() Level {
	return Level((int(l) + 1) % levelCount)
}

// Indicator is the single digit shown on the display for this level.
func (l Level) Indicator() byte {
	if !l.Valid() {
		return '?'
	}
	return '0' + byte(l)
}

func (l Level) String() string {
	if !l.Valid() {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel accepts a level name ("debug", "info", "warn", "warning", "error")
// or its digit ("0".."3").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarningLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && Level(n).Valid() {
		return Level(n), nil
	}
	return DebugLevel, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}
