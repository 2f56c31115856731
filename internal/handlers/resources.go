package handlers

import (
	"context"
	"errors"
	"net/http"

	"mindwell/internal/middleware"
	"mindwell/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.resources.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load resources")
		return
	}
	normalized := make([]map[string]any, 0, len(resources))
	for _, resource := range resources {
		normalized = append(normalized, map[string]any{
			"id":          resource.ID,
			"title":       resource.Title,
			"description": resource.Description,
			"kind":        resource.Kind,
			"premium":     resource.Premium,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) ReadResource(w http.ResponseWriter, r *http.Request) {
	h.recordResourceProgress(w, r, h.engagement.MarkResourceRead)
}

func (h *Handler) CompleteResource(w http.ResponseWriter, r *http.Request) {
	h.recordResourceProgress(w, r, h.engagement.CompleteResource)
}

func (h *Handler) recordResourceProgress(w http.ResponseWriter, r *http.Request, record func(ctx context.Context, userID, resourceID string) (services.Balance, bool, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	resourceID := chi.URLParam(r, "id")
	if resourceID == "" {
		respondError(w, http.StatusBadRequest, "resource id is required")
		return
	}
	balance, awarded, err := record(r.Context(), userID, resourceID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrResourceNotFound):
			respondError(w, http.StatusNotFound, "resource not found")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, "token account not found")
		default:
			respondError(w, http.StatusInternalServerError, "unable to record progress")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"awarded": awarded,
		"balance": balancePayload(balance),
	})
}
