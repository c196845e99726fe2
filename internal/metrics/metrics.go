package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "artauction",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artauction",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "artauction",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	bids = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artauction",
			Subsystem: "bidding",
			Name:      "bids_total",
			Help:      "Bids placed, by outcome.",
		},
		[]string{"result"},
	)

	auctionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artauction",
			Subsystem: "bidding",
			Name:      "auctions_closed_total",
			Help:      "Auction close attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	walletOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artauction",
			Subsystem: "wallet",
			Name:      "operations_total",
			Help:      "Wallet operations, by type and outcome.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bids,
		auctionsClosed,
		walletOperations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument collects request metrics labelled by the matched chi route.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordBid(result string) {
	bids.WithLabelValues(result).Inc()
}

func RecordClose(outcome string) {
	auctionsClosed.WithLabelValues(outcome).Inc()
}

func RecordWalletOperation(typ string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	walletOperations.WithLabelValues(typ, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
