// internal/handler/health_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/customer-address-backend/internal/metrics"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler holds the dependencies for the operational endpoints
type HealthHandler struct {
	DB      Pinger
	Timeout time.Duration
	Log     *logrus.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, timeout time.Duration, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		DB:      db,
		Timeout: timeout,
		Log:     log,
	}
}

// Healthz reports whether the store answers within the timeout
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := h.DB.PingContext(ctx); err != nil {
		h.Log.WithError(err).Warn("health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Metrics exposes the Prometheus registry
func (h *HealthHandler) Metrics() http.Handler {
	return metrics.Handler()
}
