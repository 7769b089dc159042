package api

import (
	"net/http"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
)

// CheckHandler handles GET /check
func (h *HandlerProvider) CheckHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "API is up",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// HealthzHandler handles GET /healthz
func (h *HandlerProvider) HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DBPingHandler handles GET /db/ping
func (h *HandlerProvider) DBPingHandler(w http.ResponseWriter, r *http.Request) {
	if h.ping == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store not wired", Kind: apperr.KindStoreUnavailable})
		return
	}

	err := h.ping(r.Context())
	if err != nil {
		writeErrorStatus(w, r, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
