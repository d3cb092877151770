// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the services and the HTTP middleware report to.
type Recorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordRegistration()
	RecordLogin(success bool)
	RecordLikeToggle(liked bool)
	RecordComment()
	RecordNotification(kind string, success bool)
	RecordRateLimited(route string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	likeToggles   *prometheus.CounterVec
	comments      prometheus.Counter
	notifications *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP responses by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_registrations_total",
			Help: "Accounts created",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		likeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_like_toggles_total",
			Help: "Like toggles by resulting state",
		}, []string{"state"}),
		comments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_comments_total",
			Help: "Comments added",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_notifications_total",
			Help: "Outbound emails by kind and outcome",
		}, []string{"kind", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.registrations,
		c.logins,
		c.likeToggles,
		c.comments,
		c.notifications,
		c.rateLimited,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(outcome(success)).Inc()
}

func (c *Collector) RecordLikeToggle(liked bool) {
	state := "unliked"
	if liked {
		state = "liked"
	}
	c.likeToggles.WithLabelValues(state).Inc()
}

func (c *Collector) RecordComment() {
	c.comments.Inc()
}

func (c *Collector) RecordNotification(kind string, success bool) {
	c.notifications.WithLabelValues(kind, outcome(success)).Inc()
}

func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, mostly tests.
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordRegistration()                                 {}
func (Nop) RecordLogin(bool)                                    {}
func (Nop) RecordLikeToggle(bool)                               {}
func (Nop) RecordComment()                                      {}
func (Nop) RecordNotification(string, bool)                     {}
func (Nop) RecordRateLimited(string)                            {}
