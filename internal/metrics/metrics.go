// Package metrics exposes controller counters and gauges for Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fridge"

type Metrics struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	readFailures *prometheus.CounterVec
	alarms       *prometheus.CounterVec
	renders      *prometheus.CounterVec
	selfChecks   *prometheus.CounterVec

	temperature prometheus.Gauge
	energy      prometheus.Gauge
	doorOpen    prometheus.Gauge
	logLevel    prometheus.Gauge
	activeAlarm *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the metric set on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_ticks_total",
			Help:      "Monitor loop iterations.",
		}),
		readFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_read_failures_total",
			Help:      "Sensor sub-reads that failed or were out of range, by sensor and reason.",
		}, []string{"sensor", "reason"}),
		alarms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alarms_raised_total",
			Help:      "Alarm conditions that became active, by kind.",
		}, []string{"kind"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_renders_total",
			Help:      "Display renders, by screen.",
		}, []string{"screen"}),
		selfChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "self_checks_total",
			Help:      "Self-check runs, by result.",
		}, []string{"result"}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last sampled temperature.",
		}),
		energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_watts",
			Help:      "Last sampled energy draw.",
		}),
		doorOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "door_open",
			Help:      "1 when the door is open.",
		}),
		logLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_level",
			Help:      "Current log level (0 debug .. 3 error).",
		}),
		activeAlarm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarm_active",
			Help:      "1 while an alarm kind is active.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.ticks,
		m.readFailures,
		m.alarms,
		m.renders,
		m.selfChecks,
		m.temperature,
		m.energy,
		m.doorOpen,
		m.logLevel,
		m.activeAlarm,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

func (m *Metrics) ReadFailure(sensor, reason string) {
	if m == nil {
		return
	}
	m.readFailures.WithLabelValues(sensor, reason).Inc()
}

func (m *Metrics) AlarmRaised(kind string) {
	if m == nil {
		return
	}
	m.alarms.WithLabelValues(kind).Inc()
	m.activeAlarm.WithLabelValues(kind).Set(1)
}

func (m *Metrics) AlarmCleared(kind string) {
	if m == nil {
		return
	}
	m.activeAlarm.WithLabelValues(kind).Set(0)
}

func (m *Metrics) Render(screen string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(screen).Inc()
}

func (m *Metrics) SelfCheck(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.selfChecks.WithLabelValues(result).Inc()
}

// Sample records the last sensor values.
func (m *Metrics) Sample(temperatureC, energyW float64, doorOpen bool) {
	if m == nil {
		return
	}
	m.temperature.Set(temperatureC)
	m.energy.Set(energyW)
	if doorOpen {
		m.doorOpen.Set(1)
	} else {
		m.doorOpen.Set(0)
	}
}

func (m *Metrics) LogLevel(level int) {
	if m == nil {
		return
	}
	m.logLevel.Set(float64(level))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
