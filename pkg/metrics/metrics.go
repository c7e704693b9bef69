package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	AuthRejections  *prometheus.CounterVec
	Registrations   prometheus.Counter
	Logins          *prometheus.CounterVec
	DonorSearches   *prometheus.CounterVec
	DonorCacheHits  prometheus.Counter
	SideEffectFails *prometheus.CounterVec
}

// New creates the metrics on a private registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_registry_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donor_registry_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		AuthRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_registry_auth_rejections_total",
			Help: "Requests rejected by the auth gate, by reason",
		}, []string{"reason"}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "donor_registry_registrations_total",
			Help: "Total number of users registered",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_registry_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		DonorSearches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_registry_donor_searches_total",
			Help: "Donor searches by which filters were applied",
		}, []string{"filters"}),
		DonorCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "donor_registry_donor_search_cache_hits_total",
			Help: "Donor searches answered from the cache",
		}),
		SideEffectFails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_registry_side_effect_failures_total",
			Help: "Best-effort side effects that failed (cache, index, email)",
		}, []string{"kind"}),
	}
}

// Auth gate rejection reasons.
const (
	ReasonMissing        = "missing"
	ReasonExpired        = "expired"
	ReasonMalformed      = "malformed"
	ReasonUnknownSubject = "unknown_subject"
)

func (m *Metrics) IncAuthRejection(reason string) {
	if m == nil {
		return
	}
	m.AuthRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncRegistrations() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

// IncLogin records a login attempt; outcome is "success" or "failure".
func (m *Metrics) IncLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSearch(byBloodGroup, byCity bool, cached bool) {
	if m == nil {
		return
	}
	filters := "none"
	switch {
	case byBloodGroup && byCity:
		filters = "blood_group_city"
	case byBloodGroup:
		filters = "blood_group"
	case byCity:
		filters = "city"
	}
	m.DonorSearches.WithLabelValues(filters).Inc()
	if cached {
		m.DonorCacheHits.Inc()
	}
}

// IncSideEffectFailure counts a failed best-effort action; kind is e.g.
// "cache", "index" or "email".
func (m *Metrics) IncSideEffectFailure(kind string) {
	if m == nil {
		return
	}
	m.SideEffectFails.WithLabelValues(kind).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
