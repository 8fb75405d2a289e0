package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	reportsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "glucowizard",
		Name:      "reports_submitted_total",
		Help:      "Total reports accepted for analysis.",
	})
	reportsOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glucowizard",
		Name:      "reports_outcome_total",
		Help:      "Reports reaching a terminal status, by status and failure stage.",
	}, []string{"status", "stage"})
	reportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "glucowizard",
		Name:      "report_analysis_duration_seconds",
		Help:      "Time from record creation to terminal status.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	signFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "glucowizard",
		Name:      "document_url_sign_failures_total",
		Help:      "Signed URL generation failures while serving reports.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glucowizard",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "glucowizard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		reportsSubmittedTotal,
		reportsOutcomeTotal,
		reportDuration,
		signFailuresTotal,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// IncReportSubmitted increments the submitted counter.
func IncReportSubmitted() {
	reportsSubmittedTotal.Inc()
}

// IncReportOutcome records a terminal status. stage is empty on success.
func IncReportOutcome(status, stage string) {
	reportsOutcomeTotal.WithLabelValues(status, stage).Inc()
}

// ObserveReportDuration records the time a report took to reach a terminal status.
func ObserveReportDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	reportDuration.Observe(d.Seconds())
}

// IncSignFailure counts a failed signed URL generation.
func IncSignFailure() {
	signFailuresTotal.Inc()
}

// Middleware records per-route HTTP counters and latency.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
