package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindwell/internal/store"
)

func TestReconcileReportsDrift(t *testing.T) {
	handler := newTestHandler(testDeps{
		accounts: stubTokenAccountStore{
			listSummariesFn: func(context.Context) ([]store.TokenAccountSummary, error) {
				return []store.TokenAccountSummary{
					{UserID: "user-1", Username: "alice", Balance: 100, CalculatedBalance: 100},
					{UserID: "user-2", Username: "bob", Balance: 120, CalculatedBalance: 100, BalanceDrift: 20},
				}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/reconcile", nil)
	rr := serveAuthed(t, handler.Reconcile, req, "admin-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 2 || payload[1]["balance_drift"] != float64(20) {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestGrantRoleRequiresSuperAdmin(t *testing.T) {
	handler := newTestHandler(testDeps{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, false, nil
			},
		},
	})
	body := []byte(`{"admin_user_id":"user-2","role":"CanViewUsers"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/roles/grant", bytes.NewReader(body))
	rr := serveAuthed(t, handler.GrantRole, req, "admin-1")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	handler := newTestHandler(testDeps{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, true, nil
			},
			grantRoleFn: func(context.Context, store.Execer, string, string) error {
				t.Fatalf("unknown roles must not be granted")
				return nil
			},
		},
	})
	body := []byte(`{"admin_user_id":"user-2","role":"CanDeleteUsers"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/roles/grant", bytes.NewReader(body))
	rr := serveAuthed(t, handler.GrantRole, req, "admin-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLinkProfessionalBindsAccount(t *testing.T) {
	var linkedProfessional, linkedUser string
	handler := newTestHandler(testDeps{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, true, nil
			},
		},
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (store.User, error) {
				return store.User{ID: "user-2", Email: email, Role: "professional"}, nil
			},
			getByIDFn: func(_ context.Context, userID string) (store.User, error) {
				return store.User{ID: userID, Role: "professional"}, nil
			},
		},
		professionals: stubProfessionalStore{
			linkUserFn: func(_ context.Context, _ store.Execer, professionalID, userID string) error {
				linkedProfessional = professionalID
				linkedUser = userID
				return nil
			},
		},
	})
	body := []byte(`{"professional_id":"prof-chen","identifier":"chen@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/professionals/link", bytes.NewReader(body))
	rr := serveAuthed(t, handler.LinkProfessional, req, "admin-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if linkedProfessional != "prof-chen" || linkedUser != "user-2" {
		t.Fatalf("unexpected link: %s %s", linkedProfessional, linkedUser)
	}
}

func TestLinkProfessionalRejectsPatientAccount(t *testing.T) {
	handler := newTestHandler(testDeps{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, true, nil
			},
		},
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (store.User, error) {
				return store.User{ID: "user-3", Email: email, Role: "patient"}, nil
			},
			getByIDFn: func(_ context.Context, userID string) (store.User, error) {
				return store.User{ID: userID, Role: "patient"}, nil
			},
		},
		professionals: stubProfessionalStore{
			linkUserFn: func(context.Context, store.Execer, string, string) error {
				t.Fatalf("patient accounts must not be linked")
				return nil
			},
		},
	})
	body := []byte(`{"professional_id":"prof-chen","identifier":"pat@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/professionals/link", bytes.NewReader(body))
	rr := serveAuthed(t, handler.LinkProfessional, req, "admin-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPromoteAdminByEmail(t *testing.T) {
	promoted := ""
	handler := newTestHandler(testDeps{
		admin: stubAdminStore{
			isAdminFn: func(context.Context, string) (bool, bool, error) {
				return true, true, nil
			},
			createAdminFn: func(_ context.Context, _ store.Execer, userID string, isSuper bool, _ *string) error {
				if isSuper {
					t.Fatalf("promotions must not create super admins")
				}
				promoted = userID
				return nil
			},
		},
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (store.User, error) {
				if email != "bob@example.com" {
					t.Fatalf("unexpected email: %s", email)
				}
				return store.User{ID: "user-2", Email: email}, nil
			},
		},
	})
	body := []byte(`{"identifier":"bob@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/promote", bytes.NewReader(body))
	rr := serveAuthed(t, handler.PromoteAdmin, req, "admin-1")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if promoted != "user-2" {
		t.Fatalf("unexpected promotion: %s", promoted)
	}
}

func TestAdminListTransactionsPaginates(t *testing.T) {
	handler := newTestHandler(testDeps{
		transactions: stubTokenTransactionStore{
			listAllFn: func(_ context.Context, limit, offset int) ([]store.TokenTransaction, error) {
				if limit != 25 || offset != 25 {
					t.Fatalf("unexpected pagination: %d %d", limit, offset)
				}
				return []store.TokenTransaction{{ID: "tx-1", UserID: "user-1", Type: "spent", Amount: 500}}, nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/transactions?limit=25&page=2", nil)
	rr := serveAuthed(t, handler.AdminListTransactions, req, "admin-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["user_id"] != "user-1" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
