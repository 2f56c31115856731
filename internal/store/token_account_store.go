package store

import "context"

type TokenAccountStore struct {
	db DB
}

// TokenAccount is one user's token balance and streak counters. The
// transaction log is the system of record; balance and total_earned are
// maintained alongside it and checked by reconciliation.
type TokenAccount struct {
	UserID         string `db:"user_id"`
	Balance        int64  `db:"balance"`
	TotalEarned    int64  `db:"total_earned"`
	MoodStreak     int64  `db:"mood_streak"`
	SessionStreak  int64  `db:"session_streak"`
	ResourceStreak int64  `db:"resource_streak"`
	CreatedAt      any    `db:"created_at"`
}

// TokenAccountSummary compares the stored balance against the balance
// recomputed from the transaction log.
type TokenAccountSummary struct {
	UserID            string `db:"user_id"`
	Username          string `db:"username"`
	Balance           int64  `db:"balance"`
	TotalEarned       int64  `db:"total_earned"`
	CalculatedBalance int64  `db:"calculated_balance"`
	CalculatedEarned  int64  `db:"calculated_earned"`
	BalanceDrift      int64  `db:"balance_drift"`
	EarnedDrift       int64  `db:"earned_drift"`
}

func NewTokenAccountStore(db DB) *TokenAccountStore {
	return &TokenAccountStore{db: db}
}

func (s *TokenAccountStore) Create(ctx context.Context, tx Execer, userID string, balance, totalEarned int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO token_accounts (user_id, balance, total_earned)
		VALUES ($1, $2, $3)
	`, userID, balance, totalEarned)
	return err
}

func (s *TokenAccountStore) GetByUser(ctx context.Context, userID string) (TokenAccount, error) {
	var row TokenAccount
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, balance, total_earned, mood_streak, session_streak, resource_streak, created_at
		FROM token_accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return TokenAccount{}, err
	}
	return row, nil
}

// GetForUpdate locks the account row for the duration of the surrounding
// transaction. Every balance or streak mutation goes through this lock so
// concurrent awards and spends serialize per user.
func (s *TokenAccountStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (TokenAccount, error) {
	var row TokenAccount
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, balance, total_earned, mood_streak, session_streak, resource_streak
		FROM token_accounts
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return TokenAccount{}, err
	}
	return row, nil
}

func (s *TokenAccountStore) UpdateBalance(ctx context.Context, tx Execer, userID string, balance, totalEarned int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE token_accounts
		SET balance = $1, total_earned = $2, updated_at = NOW()
		WHERE user_id = $3
	`, balance, totalEarned, userID)
	return err
}

func (s *TokenAccountStore) UpdateStreak(ctx context.Context, tx Execer, userID, column string, count int64) error {
	var query string
	switch column {
	case "mood_streak":
		query = `UPDATE token_accounts SET mood_streak = $1, updated_at = NOW() WHERE user_id = $2`
	case "session_streak":
		query = `UPDATE token_accounts SET session_streak = $1, updated_at = NOW() WHERE user_id = $2`
	case "resource_streak":
		query = `UPDATE token_accounts SET resource_streak = $1, updated_at = NOW() WHERE user_id = $2`
	default:
		return ErrUnknownStreakColumn
	}
	_, err := tx.ExecContext(ctx, query, count, userID)
	return err
}

// ListSummaries recomputes every account's balance and lifetime earnings
// from the transaction log, for admin reconciliation.
func (s *TokenAccountStore) ListSummaries(ctx context.Context) ([]TokenAccountSummary, error) {
	var rows []TokenAccountSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT a.user_id,
		       u.username,
		       a.balance,
		       a.total_earned,
		       COALESCE(SUM(CASE WHEN t.type = 'earned' THEN t.amount ELSE -t.amount END), 0) AS calculated_balance,
		       COALESCE(SUM(CASE WHEN t.type = 'earned' THEN t.amount ELSE 0 END), 0) AS calculated_earned,
		       (a.balance - COALESCE(SUM(CASE WHEN t.type = 'earned' THEN t.amount ELSE -t.amount END), 0)) AS balance_drift,
		       (a.total_earned - COALESCE(SUM(CASE WHEN t.type = 'earned' THEN t.amount ELSE 0 END), 0)) AS earned_drift
		FROM token_accounts a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN token_transactions t ON t.user_id = a.user_id
		GROUP BY a.user_id, u.username, a.balance, a.total_earned
		ORDER BY u.username
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
