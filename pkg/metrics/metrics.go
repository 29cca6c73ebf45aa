package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MoodEntriesLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_entries_logged_total",
			Help: "Total number of mood entries logged, by mood label",
		},
		[]string{"mood"},
	)

	ExternalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_api_requests_total",
			Help: "Total number of third-party API calls, by provider and outcome",
		},
		[]string{"provider", "outcome"}, // "ok", "error", "cached", "open"
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// RecordHTTPRequest 记录一次HTTP请求
func RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RecordMoodLogged 记录一次心情打卡
func RecordMoodLogged(mood string) {
	MoodEntriesLogged.WithLabelValues(mood).Inc()
}

// RecordExternal 记录一次第三方调用
func RecordExternal(provider, outcome string) {
	ExternalRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordCacheLookup 记录一次缓存查询
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
