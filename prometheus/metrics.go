package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"church-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Setup flow counters
	SetupStatusCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "church_setup_status_total",
			Help: "Total number of setup status checks",
		},
	)

	InitializeCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "church_setup_initialize_total",
			Help: "Total number of system initialization attempts",
		},
	)

	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "church_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Identity resolution counter by lookup key kind
	IdentityLookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_identity_lookups_total",
			Help: "Total number of identity resolutions by lookup key",
		},
		[]string{"key"}, // "id" or "email"
	)

	// Church operation counter
	ChurchOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_operations_total",
			Help: "Total number of church operations",
		},
		[]string{"operation"}, // "create", "access", "update"
	)

	// Member operation counter
	MemberOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_member_operations_total",
			Help: "Total number of member operations",
		},
		[]string{"operation"}, // "create", "access", "list", "update", "delete"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counter
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // "validation_failed", "already_initialized", "db_error", ...
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "church_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "church_info",
			Help: "Information about the church service",
		},
		[]string{"version", "environment"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(SetupStatusCounter)
	prometheus.MustRegister(InitializeCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(IdentityLookupCounter)
	prometheus.MustRegister(ChurchOperationCounter)
	prometheus.MustRegister(MemberOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(ErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
}

// InitMetrics sets the static service info labels
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{
		"version":     "1.0.0",
		"environment": cfg.Server.Env,
	}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordError records an error by type
func RecordError(errorType string) {
	ErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordIdentityLookup records an identity resolution by lookup key kind
func RecordIdentityLookup(key string) {
	IdentityLookupCounter.With(prometheus.Labels{"key": key}).Inc()
}

// RecordChurchOperation records a church operation
func RecordChurchOperation(operation string) {
	ChurchOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordMemberOperation records a member operation
func RecordMemberOperation(operation string) {
	MemberOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
