package handlers

import (
	"encoding/json"
	"net/http"

	"mindwell/internal/services"
	"mindwell/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondInsufficientTokens(w http.ResponseWriter, err *services.InsufficientTokensError) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":     "insufficient_tokens",
		"shortfall": err.Shortfall,
	})
}

func balancePayload(balance services.Balance) map[string]any {
	return map[string]any{
		"balance":      balance.Balance,
		"total_earned": balance.TotalEarned,
		"streaks": map[string]int64{
			"mood":      balance.Streaks.Mood,
			"sessions":  balance.Streaks.Sessions,
			"resources": balance.Streaks.Resources,
		},
	}
}

func transactionPayload(tx store.TokenTransaction) map[string]any {
	return map[string]any{
		"id":         tx.ID,
		"type":       tx.Type,
		"amount":     tx.Amount,
		"reason":     tx.Reason,
		"category":   tx.Category,
		"created_at": tx.CreatedAt,
	}
}
