package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindwell/internal/services"
	"mindwell/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestLogMoodSuccess(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			logMoodFn: func(_ context.Context, userID string, score int, note string) (services.Balance, error) {
				if userID != "user-1" || score != 4 || note != "better today" {
					t.Fatalf("unexpected args: %s %d %q", userID, score, note)
				}
				return services.Balance{Balance: 110, Streaks: services.Streaks{Mood: 2}}, nil
			},
		},
	})
	body := []byte(`{"score":4,"note":"better today"}`)
	req := httptest.NewRequest(http.MethodPost, "/moods", bytes.NewReader(body))
	rr := serveAuthed(t, handler.LogMood, req, "user-1")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	balance := payload["balance"].(map[string]any)
	if balance["balance"] != float64(110) {
		t.Fatalf("unexpected balance: %#v", balance)
	}
}

func TestLogMoodOutOfRangeScore(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			logMoodFn: func(context.Context, string, int, string) (services.Balance, error) {
				t.Fatalf("invalid score must not reach the service")
				return services.Balance{}, nil
			},
		},
	})
	body := []byte(`{"score":9}`)
	req := httptest.NewRequest(http.MethodPost, "/moods", bytes.NewReader(body))
	rr := serveAuthed(t, handler.LogMood, req, "user-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLogMoodDuplicateDayConflict(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			logMoodFn: func(context.Context, string, int, string) (services.Balance, error) {
				return services.Balance{}, services.ErrMoodAlreadyLogged
			},
		},
	})
	body := []byte(`{"score":3}`)
	req := httptest.NewRequest(http.MethodPost, "/moods", bytes.NewReader(body))
	rr := serveAuthed(t, handler.LogMood, req, "user-1")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestListMoods(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			listMoodsFn: func(_ context.Context, _ string, limit int) ([]store.MoodEntry, error) {
				if limit != 30 {
					t.Fatalf("expected default limit 30, got %d", limit)
				}
				return []store.MoodEntry{{ID: "mood-1", Score: 4, EntryDate: "2026-08-30"}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/moods", nil)
	rr := serveAuthed(t, handler.ListMoods, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["entry_date"] != "2026-08-30" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestReadResourceAlreadyRead(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			markReadFn: func(context.Context, string, string) (services.Balance, bool, error) {
				return services.Balance{Balance: 15}, false, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/resources/res-breathing/read", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "res-breathing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := serveAuthed(t, handler.ReadResource, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["awarded"] != false {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestCompleteResourceNotFound(t *testing.T) {
	handler := newTestHandler(testDeps{
		engagement: stubEngagementService{
			completeResourceFn: func(context.Context, string, string) (services.Balance, bool, error) {
				return services.Balance{}, false, services.ErrResourceNotFound
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/resources/missing/complete", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := serveAuthed(t, handler.CompleteResource, req, "user-1")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
