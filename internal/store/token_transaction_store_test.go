package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestTokenTransactionStoreInsert(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO token_transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 6 || args[2] != "earned" || args[3] != int64(10) || args[5] != "mood" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTokenTransactionStore(stubDB{})
	err := store.Insert(ctx, execer, TokenTransactionInput{
		ID: "tx-1", UserID: "user-1", Type: "earned", Amount: 10, Reason: "Logged daily mood", Category: "mood",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenTransactionStoreListByUserNewestFirst(t *testing.T) {
	store := NewTokenTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "ORDER BY created_at DESC, seq DESC") {
				t.Fatalf("unexpected order: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != 10 {
				t.Fatalf("unexpected args: %#v", args)
			}
			rows := dest.(*[]TokenTransaction)
			*rows = []TokenTransaction{{ID: "tx-2"}, {ID: "tx-1"}}
			return nil
		},
	})
	rows, err := store.ListByUser(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "tx-2" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestTokenTransactionStoreListAllPaginates(t *testing.T) {
	store := NewTokenTransactionStore(stubDB{
		selectFn: func(_ context.Context, _ any, query string, args ...any) error {
			if !strings.Contains(query, "OFFSET $2") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != 50 || args[1] != 100 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListAll(context.Background(), 50, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
