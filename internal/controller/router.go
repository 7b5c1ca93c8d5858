// internal/controller/router.go
package controller

import (
    "net/http"

    "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"
    "github.com/sirupsen/logrus"

    "github.com/unclebandit/customer-address-backend/internal/handler"
    "github.com/unclebandit/customer-address-backend/internal/metrics"
    appmw "github.com/unclebandit/customer-address-backend/internal/middleware"
)

type RouterConfig struct {
    Customers      *CustomerController
    Health         *handler.HealthHandler // optional
    RateLimiter    *appmw.RateLimiter     // optional
    AllowedOrigins []string
    Log            *logrus.Logger
}

// NewRouter builds the full HTTP surface: /api/... plus /healthz and /metrics.
func NewRouter(cfg RouterConfig) http.Handler {
    r := chi.NewRouter()

    r.Use(chimw.RequestID)
    r.Use(appmw.RequestLogger(cfg.Log))
    r.Use(appmw.Recoverer(cfg.Log))
    r.Use(metrics.InstrumentHandler)
    r.Use(appmw.NewCORSMiddleware(cfg.AllowedOrigins).Handler)
    if cfg.RateLimiter != nil {
        r.Use(cfg.RateLimiter.Handler)
    }

    if cfg.Health != nil {
        r.Get("/healthz", cfg.Health.Healthz)
        r.Method(http.MethodGet, "/metrics", cfg.Health.Metrics())
    }

    // Customer & address routes
    r.Route("/api", cfg.Customers.Routes)

    r.NotFound(func(w http.ResponseWriter, r *http.Request) {
        writeJSON(w, http.StatusNotFound, errorBody{"Route not found."})
    })
    r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
        writeJSON(w, http.StatusMethodNotAllowed, errorBody{"Method not allowed."})
    })

    return r
}
