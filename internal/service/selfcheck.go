package service

import (
	"context"
	"errors"
	"fmt"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/repository"

	"github.com/spf13/afero"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SelfCheck verifies that the controller's storage is usable.
type SelfCheck struct {
	source   repository.SensorSource
	db       Pinger
	fs       afero.Fs
	logPath  string
	maxBytes int64
	log      *logger.Logger
}

// NewSelfCheck builds a check; db and fs may be nil to skip those parts.
func NewSelfCheck(source repository.SensorSource, db Pinger, fs afero.Fs, logPath string, maxBytes int64, log *logger.Logger) *SelfCheck {
	return &SelfCheck{source: source, db: db, fs: fs, logPath: logPath, maxBytes: maxBytes, log: log}
}

// Check fails when the sensor workspace or the history database is unreachable.
// An oversized log file only produces a warning.
func (c *SelfCheck) Check(ctx context.Context) error {
	c.log.Debugw("running self-check")

	var errs []error
	if err := c.source.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sensor workspace: %w", err))
	}
	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("history database: %w", err))
		}
	}
	c.checkLogSize()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	c.log.Debugw("self-check ok")
	return nil
}

func (c *SelfCheck) checkLogSize() {
	if c.fs == nil || c.logPath == "" || c.maxBytes <= 0 {
		return
	}
	info, err := c.fs.Stat(c.logPath)
	if err != nil {
		return
	}
	if info.Size() > c.maxBytes {
		c.log.Warnw("log file is getting large", "path", c.logPath, "bytes", info.Size(), "limit", c.maxBytes)
	}
}
