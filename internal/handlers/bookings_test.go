package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindwell/internal/pricing"
	"mindwell/internal/services"
	"mindwell/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestQuoteBookingSuccess(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			quoteFn: func(_ context.Context, req services.QuoteRequest) (services.SessionQuote, error) {
				if req.SessionType != "audio" || req.DurationMinutes != 30 {
					t.Fatalf("unexpected request: %#v", req)
				}
				return services.SessionQuote{
					Professional: store.Professional{ID: "prof-chen", Name: "Dr. Sarah Chen"},
					Price:        pricing.Quote{USDMinor: 6120, Tokens: 72},
				}, nil
			},
		},
	})
	body := []byte(`{"professional_id":"prof-chen","session_type":"audio","duration_minutes":30}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings/quote", bytes.NewReader(body))
	rr := serveAuthed(t, handler.QuoteBooking, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["price_minor"] != float64(6120) || payload["price"] != "61.20" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload["price_tokens"] != float64(72) {
		t.Fatalf("unexpected token price: %#v", payload)
	}
}

func TestQuoteBookingInvalidDuration(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			quoteFn: func(context.Context, services.QuoteRequest) (services.SessionQuote, error) {
				return services.SessionQuote{}, pricing.ErrInvalidDuration
			},
		},
	})
	body := []byte(`{"professional_id":"prof-chen","session_type":"video","duration_minutes":45}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings/quote", bytes.NewReader(body))
	rr := serveAuthed(t, handler.QuoteBooking, req, "user-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateBookingWithTokens(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			bookFn: func(_ context.Context, req services.BookRequest) (services.BookedSession, error) {
				if req.PatientID != "user-1" || req.PaymentMethod != "tokens" {
					t.Fatalf("unexpected request: %#v", req)
				}
				balance := services.Balance{Balance: 80}
				return services.BookedSession{
					SessionID: "sess-1",
					Status:    "scheduled",
					Price:     pricing.Quote{USDMinor: 12000, Tokens: 120},
					Balance:   &balance,
				}, nil
			},
		},
	})
	scheduled := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	body := []byte(`{"professional_id":"prof-chen","session_type":"video","duration_minutes":50,"scheduled_at":"` + scheduled + `","payment_method":"tokens"}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	rr := serveAuthed(t, handler.CreateBooking, req, "user-1")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "scheduled" || payload["session_id"] != "sess-1" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	balance := payload["balance"].(map[string]any)
	if balance["balance"] != float64(80) {
		t.Fatalf("unexpected balance: %#v", balance)
	}
}

func TestCreateBookingInsufficientTokens(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			bookFn: func(context.Context, services.BookRequest) (services.BookedSession, error) {
				return services.BookedSession{}, &services.InsufficientTokensError{Shortfall: 40}
			},
		},
	})
	scheduled := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	body := []byte(`{"professional_id":"prof-chen","session_type":"video","duration_minutes":50,"scheduled_at":"` + scheduled + `","payment_method":"tokens"}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	rr := serveAuthed(t, handler.CreateBooking, req, "user-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["shortfall"] != float64(40) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestCreateBookingInvalidSchedule(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			bookFn: func(context.Context, services.BookRequest) (services.BookedSession, error) {
				return services.BookedSession{}, services.ErrInvalidSchedule
			},
		},
	})
	body := []byte(`{"professional_id":"prof-chen","session_type":"video","duration_minutes":50,"scheduled_at":"2020-01-01T10:00:00Z","payment_method":"card"}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	rr := serveAuthed(t, handler.CreateBooking, req, "user-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCompleteBookingForbidden(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			completeFn: func(context.Context, services.CompleteRequest) (services.Balance, error) {
				return services.Balance{}, services.ErrNotSessionProfessional
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/sess-1/complete", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "sess-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := serveAuthed(t, handler.CompleteBooking, req, "user-2")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestCompleteBookingSuccess(t *testing.T) {
	handler := newTestHandler(testDeps{
		booking: stubBookingService{
			completeFn: func(_ context.Context, req services.CompleteRequest) (services.Balance, error) {
				if req.SessionID != "sess-1" || req.ProfessionalUserID != "prof-user-1" {
					t.Fatalf("unexpected request: %#v", req)
				}
				return services.Balance{Balance: 150, TotalEarned: 150, Streaks: services.Streaks{Sessions: 1}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings/sess-1/complete", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "sess-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := serveAuthed(t, handler.CompleteBooking, req, "prof-user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "completed" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestListBookings(t *testing.T) {
	handler := newTestHandler(testDeps{
		sessions: stubSessionStore{
			listByPatientFn: func(_ context.Context, patientID string, limit, offset int) ([]store.Session, error) {
				if patientID != "user-1" || limit != 50 || offset != 0 {
					t.Fatalf("unexpected args: %s %d %d", patientID, limit, offset)
				}
				return []store.Session{{ID: "sess-1", Status: "scheduled", SessionType: "video"}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rr := serveAuthed(t, handler.ListBookings, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["session_type"] != "video" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
