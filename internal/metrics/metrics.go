package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_searches_total",
			Help: "Searches handled, by outcome (ok, backend_error, stale)",
		},
		[]string{"outcome"},
	)

	PlacesReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_search_places",
			Help:    "Places returned per search, by origin (organic, sponsored)",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"origin"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_ai_request_duration_seconds",
			Help:    "Latency of AI backend calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	AIRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_ai_requests_failed_total",
			Help: "AI backend calls that returned an error",
		},
		[]string{"operation"},
	)

	WeatherCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nearby_weather_cache_hits_total",
			Help: "Weather lookups served from cache",
		},
	)

	GeoRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_geo_requests_total",
			Help: "Position requests by resulting status",
		},
		[]string{"status"},
	)

	VoiceSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nearby_voice_sessions_active",
			Help: "Voice sessions currently open",
		},
	)

	AdminActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_admin_actions_total",
			Help: "Admin mutations by action",
		},
		[]string{"action"},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nearby_http_request_duration_seconds",
			Help:    "HTTP latency by route pattern and status class",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	RequestsDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nearby_http_denied_total",
			Help: "Requests refused by an access guard (cidr, host, passkey, rate_limit)",
		},
		[]string{"guard"},
	)
)
