package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jasdeace/webapp/internal/auth"
	"github.com/jasdeace/webapp/internal/metrics"
	"github.com/jasdeace/webapp/internal/payment"
	"github.com/jasdeace/webapp/internal/services/credits"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Coordinator *credits.Coordinator
	Gateway     payment.Gateway
	Identity    auth.Provider
	Gatherer    prometheus.Gatherer

	// Per-user rate limit on mutating routes.
	RateLimit rate.Limit
	RateBurst int
}

// NewRouter registers all API endpoints. The returned stop func halts the
// rate limiter's background cleanup.
func NewRouter(cfg RouterConfig) (http.Handler, func()) {
	h := NewHandler(cfg.Coordinator, cfg.Gateway)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Gatherer))
	}

	limiter := newRateLimiter(cfg.RateLimit, cfg.RateBurst)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Identity))

		r.Get("/balance", h.GetBalanceHandler)
		r.Get("/submissions", h.ListSubmissionsHandler)

		r.Group(func(r chi.Router) {
			r.Use(limiter.middleware)

			r.Post("/submit", h.SubmitHandler)
			r.Post("/topup", h.TopUpHandler)
			r.Post("/payment/session", h.PaymentSessionHandler)
		})
	})

	return r, limiter.stop
}
