package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, kvPurgedTotal) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	kvPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kv_entries_purged_total",
			Help: "Expired key/value rows removed by the janitor.",
		},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func AddKVPurged(n int64) {
	if n > 0 {
		kvPurgedTotal.Add(float64(n))
	}
}
