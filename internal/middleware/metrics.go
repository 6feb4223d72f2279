package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Question resolution and execution metrics
	QuestionsTotal    *prometheus.CounterVec
	QuestionDuration  *prometheus.HistogramVec
	QuestionRowsRead  *prometheus.CounterVec
	QuestionErrors    *prometheus.CounterVec
	FallbackPlansUsed *prometheus.CounterVec

	// Legacy gateway metrics
	TallyRequestsTotal *prometheus.CounterVec

	// Incremental sync metrics
	SyncRuns          *prometheus.CounterVec
	SyncRowsPersisted prometheus.Counter
}

var metrics *PrometheusMetrics

// InitMetrics initializes all Prometheus metrics
func InitMetrics() {
	metrics = &PrometheusMetrics{
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_gateway_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		QuestionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_questions_total",
				Help: "Total number of questions resolved",
			},
			[]string{"backend", "intent", "status"},
		),
		QuestionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_gateway_question_duration_seconds",
				Help:    "End-to-end question handling time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		QuestionRowsRead: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_question_rows_read_total",
				Help: "Total number of rows returned to askers",
			},
			[]string{"backend"},
		),
		QuestionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_question_errors_total",
				Help: "Total number of question failures by error code",
			},
			[]string{"backend", "error_code"},
		),
		FallbackPlansUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_fallback_plans_total",
				Help: "Generated plans executed after rule resolution defaulted",
			},
			[]string{"status"},
		),

		TallyRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_tally_requests_total",
				Help: "Total number of gateway exchanges with the Tally server",
			},
			[]string{"operation", "status"},
		),

		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_gateway_sync_runs_total",
				Help: "Incremental sync attempts by outcome",
			},
			[]string{"status"},
		),
		SyncRowsPersisted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ledger_gateway_sync_rows_persisted_total",
				Help: "New ledger rows written to the sink",
			},
		),
	}
}

// GetMetrics returns the initialized metrics
func GetMetrics() *PrometheusMetrics {
	return metrics
}

// PrometheusMiddleware is a Gin middleware that records HTTP metrics
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		metrics.HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		metrics.HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	}
}

// RecordQuestion records one resolved question.
func RecordQuestion(backend, intent, status string, duration time.Duration, rows int) {
	if metrics == nil {
		return
	}

	metrics.QuestionsTotal.WithLabelValues(backend, intent, status).Inc()
	metrics.QuestionDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if rows > 0 {
		metrics.QuestionRowsRead.WithLabelValues(backend).Add(float64(rows))
	}
}

// RecordQuestionError records a question failure by error code.
func RecordQuestionError(backend, errorCode string) {
	if metrics == nil {
		return
	}
	metrics.QuestionErrors.WithLabelValues(backend, errorCode).Inc()
}

// RecordFallbackPlan records an executed or rejected generated plan.
func RecordFallbackPlan(status string) {
	if metrics == nil {
		return
	}
	metrics.FallbackPlansUsed.WithLabelValues(status).Inc()
}

// RecordTallyRequest records one exchange with the legacy gateway.
func RecordTallyRequest(operation, status string) {
	if metrics == nil {
		return
	}
	metrics.TallyRequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordSync records one incremental sync run.
func RecordSync(status string, rowsPersisted int) {
	if metrics == nil {
		return
	}
	metrics.SyncRuns.WithLabelValues(status).Inc()
	if rowsPersisted > 0 {
		metrics.SyncRowsPersisted.Add(float64(rowsPersisted))
	}
}
