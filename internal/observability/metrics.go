package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microsync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "microsync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	routerAttach = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microsync",
			Subsystem: "router",
			Name:      "attach_total",
			Help:      "Micro paths attached to the shared URL.",
		},
		[]string{"placement"},
	)
	routerDetach = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microsync",
			Subsystem: "router",
			Name:      "detach_total",
			Help:      "Micro path removals from the shared URL.",
		},
		[]string{"placement", "found"},
	)
	stateOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "microsync",
			Subsystem: "state",
			Name:      "ops_total",
			Help:      "History state merge operations.",
		},
		[]string{"op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, routerAttach, routerDetach, stateOps)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordAttach(toHash bool) {
	RegisterMetrics()
	routerAttach.WithLabelValues(placementLabel(toHash)).Inc()
}

func RecordDetach(fromHash, found bool) {
	RegisterMetrics()
	routerDetach.WithLabelValues(placementLabel(fromHash), strconv.FormatBool(found)).Inc()
}

func RecordStateOp(op string) {
	RegisterMetrics()
	stateOps.WithLabelValues(op).Inc()
}

func placementLabel(hash bool) string {
	if hash {
		return "hash"
	}
	return "search"
}
