package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vmarchenko/contacts-api/internal/health"
)

var (
	// Auth metrics

	SignupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "signups_total",
		Help:      "Total signup attempts, by outcome.",
	}, []string{"outcome"})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "tokens_issued_total",
		Help:      "Total tokens issued, by scope.",
	}, []string{"scope"})

	VerificationEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "verification_emails_total",
		Help:      "Verification emails dispatched, by outcome.",
	}, []string{"outcome"})

	// Digest metrics

	DigestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "digest_runs_total",
		Help:      "Total birthday digest cycles.",
	})

	DigestEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "digest_emails_total",
		Help:      "Digest emails sent, by outcome.",
	}, []string{"outcome"})

	DigestCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contacts",
		Name:      "digest_cycle_duration_seconds",
		Help:      "Time taken for one digest cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contacts",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contacts",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		LoginsTotal,
		TokensIssuedTotal,
		VerificationEmailsTotal,
		DigestRunsTotal,
		DigestEmailsTotal,
		DigestCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
