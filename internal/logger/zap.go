package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger and owns the level shared by all of its cores.
type Logger struct {
	*zap.SugaredLogger
	level zap.AtomicLevel

	mu   sync.Mutex
	file *os.File
	path string
}

// toZapLevel maps a controller level onto zap's levels.
func toZapLevel(l Level) zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// fromZapLevel maps zap's level back; anything above error collapses to ErrorLevel.
func fromZapLevel(l zapcore.Level) Level {
	switch {
	case l <= zapcore.DebugLevel:
		return DebugLevel
	case l == zapcore.InfoLevel:
		return InfoLevel
	case l == zapcore.WarnLevel:
		return WarningLevel
	default:
		return ErrorLevel
	}
}

// newConsoleCore builds a console-encoded core writing to ws.
// Timestamps are only included when withTime is set.
func newConsoleCore(ws zapcore.WriteSyncer, level zap.AtomicLevel, withTime bool) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	if withTime {
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.ConsoleSeparator = " "

	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(ws), level)
}

// New builds a logger writing to the given sinks. With no sinks it writes to stdout.
func New(level Level, sinks ...zapcore.WriteSyncer) *Logger {
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))
	if len(sinks) == 0 {
		sinks = []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	}
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, ws := range sinks {
		cores = append(cores, newConsoleCore(ws, atomic, false))
	}
	return &Logger{
		SugaredLogger: zap.New(zapcore.NewTee(cores...)).Sugar(),
		level:         atomic,
	}
}

// Open builds a logger writing to stdout and appending to the file at path.
func Open(level Level, path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewTee(
		newConsoleCore(zapcore.AddSync(os.Stdout), atomic, false),
		newConsoleCore(zapcore.AddSync(f), atomic, true),
	)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		level:         atomic,
		file:          f,
		path:          path,
	}, nil
}

// NewNop returns a logger that discards everything. Its level can still be changed.
func NewNop() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		level:         zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
}

// SetLevel changes the filter of every core at once.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(toZapLevel(level))
}

// Level returns the currently applied level.
func (l *Logger) Level() Level {
	return fromZapLevel(l.level.Level())
}

// FilePath is the path of the log file, empty when logging to stdout only.
func (l *Logger) FilePath() string {
	return l.path
}

// Close flushes buffered entries and releases the log file.
func (l *Logger) Close() error {
	_ = l.Sync()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
