package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"stationmap/internal/utils"
)

// CheckFunc reports whether a dependency the server needs is reachable.
type CheckFunc func(ctx context.Context) error

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	check CheckFunc
}

func NewHealthchecker(check CheckFunc) healthchecker {
	return &healthcheckerImpl{check: check}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			utils.WriteError(w, http.StatusServiceUnavailable, "dependency check failed")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, check CheckFunc) {
	healthchecker := NewHealthchecker(check)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
