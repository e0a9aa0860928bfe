package service

import (
	"fmt"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
)

// LogLevelController owns the process log level.
type LogLevelController struct {
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewLogLevelController(log *logger.Logger, m *metrics.Metrics) *LogLevelController {
	c := &LogLevelController{log: log, metrics: m}
	m.LogLevel(int(log.Level()))
	return c
}

func (c *LogLevelController) Current() logger.Level {
	return c.log.Level()
}

// Set applies level to every log sink. The change is logged after it takes effect.
func (c *LogLevelController) Set(level logger.Level) error {
	if !level.Valid() {
		c.log.Warnw("rejected log level", "level", int(level))
		return fmt.Errorf("%w: %d", ErrInvalidLevel, int(level))
	}
	prev := c.Current()
	c.log.SetLevel(level)
	c.metrics.LogLevel(int(level))
	c.log.Infof("log level changed from %s to %s", prev, level)
	return nil
}

// Bump advances to the next level, wrapping from ERROR to DEBUG.
func (c *LogLevelController) Bump() logger.Level {
	next := c.Current().Next()
	_ = c.Set(next)
	return next
}
