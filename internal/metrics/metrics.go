package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taskhive/taskhive/internal/health"
)

var (
	// Auth metrics

	LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "login_attempts_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	TokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "tokens_issued_total",
		Help:      "Tokens issued, by kind (access, refresh, verification).",
	}, []string{"kind"})

	TokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "tokens_revoked_total",
		Help:      "Refresh tokens explicitly revoked.",
	})

	TokensSweptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "tokens_swept_total",
		Help:      "Expired token rows removed by the sweeper, by store.",
	}, []string{"store"})

	BreachChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "breach_checks_total",
		Help:      "Password breach screenings, by verdict.",
	}, []string{"verdict"})

	// OAuth metrics

	OAuthExchangeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskhive",
		Name:      "oauth_exchange_duration_seconds",
		Help:      "Duration of the full provider exchange (code + user info).",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	OAuthLoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "oauth_logins_total",
		Help:      "OAuth login attempts, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskhive",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskhive",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		TokensIssuedTotal,
		TokensRevokedTotal,
		TokensSweptTotal,
		BreachChecksTotal,
		OAuthExchangeDuration,
		OAuthLoginsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves Prometheus metrics and the health endpoints on a port
// separate from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		res := checker.Readiness(r.Context())
		if res.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		writeHealth(w, res)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, res health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}
