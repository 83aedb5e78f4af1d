package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	API     *Handler
	Health  *HealthHandler
	Metrics http.Handler // served at /metrics when set
	Meter   metric.Meter
	Logger  *slog.Logger
	// RateLimit is requests per second across /api/v1; 0 disables limiting.
	RateLimit float64
}

// NewRouter builds the gorilla/mux router. Health checks and /metrics bypass the
// rate limiter.
func NewRouter(cfg RouterConfig) (*mux.Router, error) {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method not allowed"})
	})

	r.Use(LoggingMiddleware(cfg.Logger))
	if cfg.Meter != nil {
		mw, err := MetricsMiddleware(cfg.Meter)
		if err != nil {
			return nil, err
		}
		r.Use(mw)
	}

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.NewRoute().Subrouter()
	if cfg.RateLimit > 0 {
		api.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimit)))
	}
	cfg.API.RegisterRoutes(api)
	return r, nil
}
