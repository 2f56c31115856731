package store

import (
	"context"
	"errors"
)

var ErrUnknownStreakColumn = errors.New("unknown streak column")

type TokenTransactionStore struct {
	db DB
}

// TokenTransaction is one immutable entry in a user's token history.
type TokenTransaction struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Type      string `db:"type"`
	Amount    int64  `db:"amount"`
	Reason    string `db:"reason"`
	Category  string `db:"category"`
	CreatedAt any    `db:"created_at"`
}

type TokenTransactionInput struct {
	ID       string
	UserID   string
	Type     string
	Amount   int64
	Reason   string
	Category string
}

func NewTokenTransactionStore(db DB) *TokenTransactionStore {
	return &TokenTransactionStore{db: db}
}

func (s *TokenTransactionStore) Insert(ctx context.Context, tx Execer, input TokenTransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO token_transactions (id, user_id, type, amount, reason, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, input.ID, input.UserID, input.Type, input.Amount, input.Reason, input.Category)
	return err
}

// ListByUser returns the most recent transactions, newest first. The
// seq column breaks ties between rows created inside one transaction so
// read order always matches append order.
func (s *TokenTransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]TokenTransaction, error) {
	var rows []TokenTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, type, amount, reason, category, created_at
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TokenTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]TokenTransaction, error) {
	var rows []TokenTransaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, type, amount, reason, category, created_at
		FROM token_transactions
		ORDER BY created_at DESC, seq DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
