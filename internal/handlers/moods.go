package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mindwell/internal/middleware"
	"mindwell/internal/services"
	"mindwell/internal/validator"
)

type logMoodRequest struct {
	Score int    `json:"score"`
	Note  string `json:"note"`
}

func (h *Handler) LogMood(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req logMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateMoodScore(req.Score); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	balance, err := h.engagement.LogMood(r.Context(), userID, req.Score, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMoodAlreadyLogged):
			respondError(w, http.StatusConflict, "mood already logged today")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, "token account not found")
		default:
			respondError(w, http.StatusInternalServerError, "unable to log mood")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"balance": balancePayload(balance),
	})
}

func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 30)
	entries, err := h.engagement.ListMoods(r.Context(), userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load mood entries")
		return
	}
	normalized := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		normalized = append(normalized, map[string]any{
			"id":         entry.ID,
			"score":      entry.Score,
			"note":       entry.Note,
			"entry_date": entry.EntryDate,
			"created_at": entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
