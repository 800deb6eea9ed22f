package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheEvictionsTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Tracks cache hits and misses for the reference data caches.",
		},
		[]string{"cache", "result"}, // e.g., cache="categories", result="hit"
	)

	cacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_truncated_items_total",
			Help: "Items dropped because a list exceeded the cache bound.",
		},
		[]string{"cache"},
	)
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func AddCacheTruncated(cacheName string, n int) {
	if n > 0 {
		cacheEvictionsTotal.WithLabelValues(norm(cacheName)).Add(float64(n))
	}
}
