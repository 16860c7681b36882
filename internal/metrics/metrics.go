// Package metrics exposes Prometheus counters for session and progress activity.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the set of events the state container and HTTP layer report
type Recorder interface {
	RecordLogin(firstTime bool)
	RecordSignup(parent bool)
	RecordLogout()
	RecordStreak(days int)
	RecordStarsAwarded(stars int)
	RecordLevelUp()
	RecordMalformedState(key string)
	RecordHTTPStatus(statusCode int)
	RecordActiveStates(n int)
}

// Nop discards every event
type Nop struct{}

func (Nop) RecordLogin(bool) {}
func (Nop) RecordSignup(bool) {}
func (Nop) RecordLogout() {}
func (Nop) RecordStreak(int) {}
func (Nop) RecordStarsAwarded(int) {}
func (Nop) RecordLevelUp() {}
func (Nop) RecordMalformedState(string) {}
func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordActiveStates(int) {}

// Collector records events into Prometheus metrics
type Collector struct {
	logins         *prometheus.CounterVec
	signups        *prometheus.CounterVec
	logouts        prometheus.Counter
	streak         prometheus.Histogram
	stars          prometheus.Counter
	levelUps       prometheus.Counter
	malformedState *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	activeStates   prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balagh_logins_total",
			Help: "Logins by whether a new session was created",
		}, []string{"first_time"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balagh_signups_total",
			Help: "Signups by account role",
		}, []string{"role"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balagh_logouts_total",
			Help: "Logouts",
		}),
		streak: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "balagh_daily_streak_days",
			Help:    "Daily streak length after each progress update",
			Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60, 100},
		}),
		stars: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balagh_stars_awarded_total",
			Help: "Stars awarded to children",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balagh_level_ups_total",
			Help: "Levels gained",
		}),
		malformedState: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balagh_malformed_state_total",
			Help: "Stored values discarded because they could not be decoded",
		}, []string{"key"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balagh_http_status_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
		activeStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "balagh_active_device_states",
			Help: "Device states currently held in memory",
		}),
	}

	reg.MustRegister(
		c.logins,
		c.signups,
		c.logouts,
		c.streak,
		c.stars,
		c.levelUps,
		c.malformedState,
		c.httpStatus,
		c.activeStates,
	)

	return c
}

func (c *Collector) RecordLogin(firstTime bool) {
	c.logins.WithLabelValues(strconv.FormatBool(firstTime)).Inc()
}

func (c *Collector) RecordSignup(parent bool) {
	role := "adult"
	if parent {
		role = "parent"
	}
	c.signups.WithLabelValues(role).Inc()
}

func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

func (c *Collector) RecordStreak(days int) {
	c.streak.Observe(float64(days))
}

func (c *Collector) RecordStarsAwarded(stars int) {
	if stars > 0 {
		c.stars.Add(float64(stars))
	}
}

func (c *Collector) RecordLevelUp() {
	c.levelUps.Inc()
}

func (c *Collector) RecordMalformedState(key string) {
	c.malformedState.WithLabelValues(key).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordActiveStates(n int) {
	c.activeStates.Set(float64(n))
}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
