package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuestionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kreuzen_questions_created_total",
			Help: "Questions created, by question type",
		},
		[]string{"type"},
	)

	SelectionsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kreuzen_selections_total",
			Help: "Selections written, by question type",
		},
		[]string{"type"},
	)

	SessionScoreRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kreuzen_session_score_ratio",
			Help:    "Awarded points divided by achievable points per scored session",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(QuestionsCreated)
		prometheus.MustRegister(SelectionsRecorded)
		prometheus.MustRegister(SessionScoreRatio)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
