package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAdminStoreHasAnyAdminReadsThroughTransaction(t *testing.T) {
	var queried bool
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admins") {
				t.Fatalf("unexpected query: %s", query)
			}
			queried = true
			count := dest.(*int)
			*count = 1
			return nil
		},
	}
	store := NewAdminStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			t.Fatalf("bootstrap check must use the caller's transaction")
			return nil
		},
	})
	exists, err := store.HasAnyAdmin(context.Background(), getter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists || !queried {
		t.Fatalf("expected admin count read through the transaction")
	}
}

func TestAdminStoreIsAdminMissingRow(t *testing.T) {
	store := NewAdminStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isAdmin || isSuper {
		t.Fatalf("expected non-admin for missing row")
	}
}

func TestAdminStoreGrantRoleIgnoresDuplicates(t *testing.T) {
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT DO NOTHING") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "user-2" || args[1] != RoleViewUsers {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	if err := store.GrantRole(context.Background(), execer, "user-2", RoleViewUsers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKnownAdminRole(t *testing.T) {
	for _, role := range []string{RoleViewUsers, RoleViewTransactions} {
		if !KnownAdminRole(role) {
			t.Fatalf("expected %s to be grantable", role)
		}
	}
	if KnownAdminRole("CanDeleteUsers") {
		t.Fatalf("unexpected grantable role")
	}
}
