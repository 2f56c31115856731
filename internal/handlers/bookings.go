package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mindwell/internal/middleware"
	"mindwell/internal/money"
	"mindwell/internal/pricing"
	"mindwell/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProfessionals(w http.ResponseWriter, r *http.Request) {
	professionals, err := h.professionals.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load professionals")
		return
	}
	normalized := make([]map[string]any, 0, len(professionals))
	for _, p := range professionals {
		normalized = append(normalized, map[string]any{
			"id":           p.ID,
			"name":         p.Name,
			"title":        p.Title,
			"specialties":  p.Specialties,
			"session_rate": money.FormatMinor(p.SessionRateMinor),
			"token_rate":   p.BaseTokenRate,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type quoteRequest struct {
	ProfessionalID  string `json:"professional_id"`
	SessionType     string `json:"session_type"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *Handler) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	quote, err := h.booking.Quote(r.Context(), services.QuoteRequest{
		ProfessionalID:  req.ProfessionalID,
		SessionType:     req.SessionType,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfessionalNotFound):
			respondError(w, http.StatusNotFound, "professional not found")
		case errors.Is(err, pricing.ErrInvalidSessionType):
			respondError(w, http.StatusBadRequest, "invalid session type")
		case errors.Is(err, pricing.ErrInvalidDuration):
			respondError(w, http.StatusBadRequest, "invalid duration")
		default:
			respondError(w, http.StatusInternalServerError, "unable to quote session")
		}
		return
	}
	respondJSON(w, http.StatusOK, quotePayload(quote))
}

func quotePayload(quote services.SessionQuote) map[string]any {
	return map[string]any{
		"professional_id":   quote.Professional.ID,
		"professional_name": quote.Professional.Name,
		"price_minor":       quote.Price.USDMinor,
		"price":             money.FormatMinor(quote.Price.USDMinor),
		"price_tokens":      quote.Price.Tokens,
	}
}

type bookRequest struct {
	ProfessionalID  string    `json:"professional_id"`
	SessionType     string    `json:"session_type"`
	DurationMinutes int       `json:"duration_minutes"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	PaymentMethod   string    `json:"payment_method"`
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	booked, err := h.booking.Book(r.Context(), services.BookRequest{
		PatientID:       userID,
		ProfessionalID:  req.ProfessionalID,
		SessionType:     req.SessionType,
		DurationMinutes: req.DurationMinutes,
		ScheduledAt:     req.ScheduledAt,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		var insufficient *services.InsufficientTokensError
		switch {
		case errors.As(err, &insufficient):
			respondInsufficientTokens(w, insufficient)
		case errors.Is(err, services.ErrProfessionalNotFound):
			respondError(w, http.StatusNotFound, "professional not found")
		case errors.Is(err, services.ErrInvalidPaymentMethod):
			respondError(w, http.StatusBadRequest, "invalid payment method")
		case errors.Is(err, services.ErrInvalidSchedule):
			respondError(w, http.StatusBadRequest, "scheduled time must be in the future")
		case errors.Is(err, pricing.ErrInvalidSessionType):
			respondError(w, http.StatusBadRequest, "invalid session type")
		case errors.Is(err, pricing.ErrInvalidDuration):
			respondError(w, http.StatusBadRequest, "invalid duration")
		case errors.Is(err, services.ErrAccountNotFound):
			respondError(w, http.StatusNotFound, "token account not found")
		default:
			respondError(w, http.StatusInternalServerError, "unable to book session")
		}
		return
	}
	payload := map[string]any{
		"session_id":   booked.SessionID,
		"status":       booked.Status,
		"price_minor":  booked.Price.USDMinor,
		"price":        money.FormatMinor(booked.Price.USDMinor),
		"price_tokens": booked.Price.Tokens,
	}
	if booked.Balance != nil {
		payload["balance"] = balancePayload(*booked.Balance)
	}
	respondJSON(w, http.StatusCreated, payload)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	sessions, err := h.sessions.ListByPatient(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load bookings")
		return
	}
	normalized := make([]map[string]any, 0, len(sessions))
	for _, session := range sessions {
		normalized = append(normalized, map[string]any{
			"id":               session.ID,
			"professional_id":  session.ProfessionalID,
			"session_type":     session.SessionType,
			"duration_minutes": session.DurationMinutes,
			"scheduled_at":     session.ScheduledAt,
			"status":           session.Status,
			"payment_method":   session.PaymentMethod,
			"price_minor":      session.PriceMinor,
			"price_tokens":     session.PriceTokens,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session id is required")
		return
	}
	balance, err := h.booking.Complete(r.Context(), services.CompleteRequest{
		ProfessionalUserID: userID,
		SessionID:          sessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, services.ErrNotSessionProfessional):
			respondError(w, http.StatusForbidden, "not the session professional")
		case errors.Is(err, services.ErrSessionNotCompletable):
			respondError(w, http.StatusConflict, "session cannot be completed")
		default:
			respondError(w, http.StatusInternalServerError, "unable to complete session")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "completed",
		"patient_balance": balancePayload(balance),
	})
}
