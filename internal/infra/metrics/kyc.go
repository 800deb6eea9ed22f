package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(stepSubmissionsTotal, remoteCallSeconds, snapshotOpsTotal,
		reviewNavigationsTotal, activeSessions, rateLimitedTotal, auditDroppedTotal)
}

var (
	stepSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_step_submissions_total",
			Help: "Wizard step submissions by step and result.",
		},
		[]string{"step", "result"}, // result: advanced|review|missing_prior|remote_failed|rejected|in_flight|invalid
	)

	remoteCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kyc_remote_call_seconds",
			Help:    "Latency of account service calls.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"op", "success"},
	)

	snapshotOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_snapshot_ops_total",
			Help: "Snapshot persistence operations by op and outcome.",
		},
		[]string{"op", "outcome"}, // op: save|restore|clear; outcome: ok|miss|expired|malformed|error
	)

	reviewNavigationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kyc_review_navigations_total",
			Help: "Times a completed wizard redirected the user to the review screen.",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kyc_active_sessions",
			Help: "Wizard sessions currently held in memory.",
		},
	)

	rateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_rate_limited_total",
			Help: "Requests rejected by the submission rate limiter.",
		},
		[]string{"route"},
	)

	auditDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kyc_audit_dropped_total",
			Help: "Submission audit records dropped because the worker queue was full or the write failed.",
		},
	)
)

func IncStepSubmission(step, result string) {
	stepSubmissionsTotal.WithLabelValues(step, norm(result)).Inc()
}

func ObserveRemoteCall(op string, d time.Duration, success bool) {
	remoteCallSeconds.WithLabelValues(norm(op), boolLabel(success)).Observe(d.Seconds())
}

func IncSnapshotOp(op, outcome string) {
	snapshotOpsTotal.WithLabelValues(norm(op), norm(outcome)).Inc()
}

func IncReviewNavigation() { reviewNavigationsTotal.Inc() }

func SetActiveSessions(n int) { activeSessions.Set(float64(n)) }

func IncRateLimited(route string) { rateLimitedTotal.WithLabelValues(route).Inc() }

func IncAuditDropped() { auditDroppedTotal.Inc() }
