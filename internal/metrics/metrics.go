// Package metrics は Prometheus のメトリクスと計測用ミドルウェアを提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)

	VisitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visitor_visits_total",
			Help: "Total number of recorded visits",
		},
		[]string{"result"}, // created, updated
	)

	VisitorCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visitor_cleanup_deleted_total",
			Help: "Total number of visitor rows removed by cleanup",
		},
	)
)

// Middleware はHTTPリクエストの件数と処理時間を記録します。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		ActiveRequests.Inc()
		defer ActiveRequests.Dec()

		c.Next()

		// ルート未登録のパスはラベルを1つにまとめる
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// TrackDBOperation はDB操作の計測を開始します。戻り値の ObserveDuration を defer で呼んでください。
func TrackDBOperation(operation, table string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, table))
}

// TrackVisit は訪問の記録結果 (created / updated) をカウントします。
func TrackVisit(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	VisitsTotal.WithLabelValues(result).Inc()
}
