package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentora/internal/httputil"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check responds with service and database status.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}

	if h.pool != nil {
		if err := h.pool.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			httputil.RespondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}
