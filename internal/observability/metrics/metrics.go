package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// AssistantMetrics holds every series the service exports, on a private
// registry so tests can build isolated instances.
type AssistantMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatTurnsTotal      *prometheus.CounterVec
	searchTotal         *prometheus.CounterVec
	searchDuration      *prometheus.HistogramVec
	retrievedPassages   *prometheus.HistogramVec
	rerankFallbackTotal prometheus.Counter
}

func New(service string) *AssistantMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ida",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ida",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ida",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ida",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed chat turns by classified intent.",
		},
		[]string{"service", "intent", "used_tool"},
	)
	searchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ida",
			Subsystem: "retrieval",
			Name:      "searches_total",
			Help:      "Total retrieval pipeline runs by rerank method and outcome.",
		},
		[]string{"service", "method", "outcome"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ida",
			Subsystem: "retrieval",
			Name:      "search_duration_seconds",
			Help:      "Retrieval pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
	retrievedPassages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ida",
			Subsystem: "retrieval",
			Name:      "collected_passages",
			Help:      "Distribution of deduplicated passages collected per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "method"},
	)
	rerankFallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ida",
			Subsystem: "retrieval",
			Name:      "rerank_fallback_total",
			Help:      "Total cross-encoder failures that fell back to embedding rerank.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatTurnsTotal,
		searchTotal,
		searchDuration,
		retrievedPassages,
		rerankFallbackTotal,
	)

	return &AssistantMetrics{
		registry:            registry,
		service:             service,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		chatTurnsTotal:      chatTurnsTotal,
		searchTotal:         searchTotal,
		searchDuration:      searchDuration,
		retrievedPassages:   retrievedPassages,
		rerankFallbackTotal: rerankFallbackTotal,
	}
}

func (m *AssistantMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *AssistantMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// RecordChatTurn counts a completed exchange by its classified intent.
func (m *AssistantMetrics) RecordChatTurn(intent domain.Intent, usedTool bool) {
	m.chatTurnsTotal.WithLabelValues(m.service, string(intent), strconv.FormatBool(usedTool)).Inc()
}

// ObserveSearch implements the retrieval pipeline's metrics hook.
func (m *AssistantMetrics) ObserveSearch(method domain.RerankMethod, collected, returned int, duration time.Duration) {
	outcome := "hit"
	if returned == 0 {
		outcome = "empty"
	}
	m.searchTotal.WithLabelValues(m.service, string(method), outcome).Inc()
	m.searchDuration.WithLabelValues(m.service, string(method)).Observe(duration.Seconds())
	m.retrievedPassages.WithLabelValues(m.service, string(method)).Observe(float64(collected))
}

// IncRerankFallback implements the retrieval pipeline's metrics hook.
func (m *AssistantMetrics) IncRerankFallback() {
	m.rerankFallbackTotal.Inc()
}
