package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	votesTotal          *prometheus.CounterVec
	motionsClosedTotal  *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	sweepDurationSecond prometheus.Histogram
	registerOnce        sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council_vote",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the voting API.",
		}, []string{"method", "path", "status"})
		votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council_vote",
			Name:      "votes_total",
			Help:      "Ballot submissions by result (accepted or rejection reason).",
		}, []string{"result"})
		motionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council_vote",
			Name:      "motions_closed_total",
			Help:      "Motions closed by the completion sweeper, by close reason.",
		}, []string{"reason"})
		notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council_vote",
			Name:      "notification_attempts_total",
			Help:      "Results notification attempts by result.",
		}, []string{"result"})
		sweepDurationSecond = promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "council_vote",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of completion sweeps.",
			Buckets:   prometheus.DefBuckets,
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func IncVote(result string) {
	if votesTotal == nil {
		return
	}
	votesTotal.WithLabelValues(result).Inc()
}

func IncMotionClosed(reason string) {
	if motionsClosedTotal == nil {
		return
	}
	motionsClosedTotal.WithLabelValues(reason).Inc()
}

func IncNotification(result string) {
	if notificationsTotal == nil {
		return
	}
	notificationsTotal.WithLabelValues(result).Inc()
}

func ObserveSweep(seconds float64) {
	if sweepDurationSecond == nil {
		return
	}
	sweepDurationSecond.Observe(seconds)
}
