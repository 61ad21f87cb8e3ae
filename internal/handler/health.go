package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/mdpress/mdpress/internal/api"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, api.MessageResponse{Message: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "ready"})
}
