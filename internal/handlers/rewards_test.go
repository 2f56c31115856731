package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindwell/internal/services"
	"mindwell/internal/store"

	"github.com/go-chi/chi/v5"
)

func redeemRequest(rewardID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/rewards/"+rewardID+"/redeem", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", rewardID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListRewards(t *testing.T) {
	handler := newTestHandler(testDeps{
		rewards: stubRewardStore{
			listFn: func(context.Context) ([]store.Reward, error) {
				return []store.Reward{
					{ID: "premium-content", Name: "Premium Content Access", Cost: 150, Available: true},
					{ID: "free-session", Name: "Free Therapy Session", Cost: 500, Available: true},
				}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/rewards", nil)
	rr := serveAuthed(t, handler.ListRewards, req, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 2 || payload[0]["cost"] != float64(150) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestRedeemRewardSuccess(t *testing.T) {
	handler := newTestHandler(testDeps{
		ledger: stubTokenLedger{
			redeemFn: func(_ context.Context, userID, rewardID string) (services.Balance, store.Reward, error) {
				if userID != "user-1" || rewardID != "free-session" {
					t.Fatalf("unexpected redeem: %s %s", userID, rewardID)
				}
				return services.Balance{Balance: 100, TotalEarned: 600},
					store.Reward{ID: "free-session", Name: "Free Therapy Session", Cost: 500}, nil
			},
		},
	})
	rr := serveAuthed(t, handler.RedeemReward, redeemRequest("free-session"), "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	balance := payload["balance"].(map[string]any)
	if balance["balance"] != float64(100) {
		t.Fatalf("unexpected balance: %#v", balance)
	}
}

func TestRedeemRewardInsufficientTokens(t *testing.T) {
	handler := newTestHandler(testDeps{
		ledger: stubTokenLedger{
			redeemFn: func(context.Context, string, string) (services.Balance, store.Reward, error) {
				return services.Balance{}, store.Reward{}, &services.InsufficientTokensError{Shortfall: 350}
			},
		},
	})
	rr := serveAuthed(t, handler.RedeemReward, redeemRequest("free-session"), "user-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["error"] != "insufficient_tokens" || payload["shortfall"] != float64(350) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestRedeemRewardNotFound(t *testing.T) {
	handler := newTestHandler(testDeps{
		ledger: stubTokenLedger{
			redeemFn: func(context.Context, string, string) (services.Balance, store.Reward, error) {
				return services.Balance{}, store.Reward{}, services.ErrRewardNotFound
			},
		},
	})
	rr := serveAuthed(t, handler.RedeemReward, redeemRequest("missing"), "user-1")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRedeemRewardUnavailable(t *testing.T) {
	handler := newTestHandler(testDeps{
		ledger: stubTokenLedger{
			redeemFn: func(context.Context, string, string) (services.Balance, store.Reward, error) {
				return services.Balance{}, store.Reward{}, services.ErrRewardUnavailable
			},
		},
	})
	rr := serveAuthed(t, handler.RedeemReward, redeemRequest("group-session"), "user-1")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}
