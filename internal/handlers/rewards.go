package handlers

import (
	"errors"
	"net/http"

	"mindwell/internal/middleware"
	"mindwell/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load rewards")
		return
	}
	normalized := make([]map[string]any, 0, len(rewards))
	for _, reward := range rewards {
		normalized = append(normalized, map[string]any{
			"id":          reward.ID,
			"name":        reward.Name,
			"description": reward.Description,
			"cost":        reward.Cost,
			"type":        reward.Type,
			"available":   reward.Available,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rewardID := chi.URLParam(r, "id")
	if rewardID == "" {
		respondError(w, http.StatusBadRequest, "reward id is required")
		return
	}
	balance, reward, err := h.ledger.Redeem(r.Context(), userID, rewardID)
	if err != nil {
		var insufficient *services.InsufficientTokensError
		switch {
		case errors.As(err, &insufficient):
			respondInsufficientTokens(w, insufficient)
		case errors.Is(err, services.ErrRewardNotFound):
			respondError(w, http.StatusNotFound, "reward not found")
		case errors.Is(err, services.ErrRewardUnavailable):
			respondError(w, http.StatusConflict, "reward unavailable")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, "token account not found")
		default:
			respondError(w, http.StatusInternalServerError, "unable to redeem reward")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"reward": map[string]any{
			"id":   reward.ID,
			"name": reward.Name,
			"cost": reward.Cost,
		},
		"balance": balancePayload(balance),
	})
}
