package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"mindwell/internal/db"
	"mindwell/internal/metrics"
	"mindwell/internal/models"
	"mindwell/internal/store"
	"mindwell/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidStreak     = errors.New("invalid streak")
	ErrAccountNotFound   = errors.New("token account not found")
	ErrRewardNotFound    = errors.New("reward not found")
	ErrRewardUnavailable = errors.New("reward unavailable")
)

// InsufficientTokensError is returned when a spend exceeds the balance.
// Shortfall is how many more tokens the user would need; no state is
// mutated when it is returned.
type InsufficientTokensError struct {
	Shortfall int64
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: need %d more", e.Shortfall)
}

// Balance is the ledger state returned from every read and mutation.
type Balance struct {
	Balance     int64   `json:"balance"`
	TotalEarned int64   `json:"total_earned"`
	Streaks     Streaks `json:"streaks"`
}

type Streaks struct {
	Mood      int64 `json:"mood"`
	Sessions  int64 `json:"sessions"`
	Resources int64 `json:"resources"`
}

type TokenAccountStore interface {
	Create(ctx context.Context, tx store.Execer, userID string, balance, totalEarned int64) error
	GetByUser(ctx context.Context, userID string) (store.TokenAccount, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (store.TokenAccount, error)
	UpdateBalance(ctx context.Context, tx store.Execer, userID string, balance, totalEarned int64) error
	UpdateStreak(ctx context.Context, tx store.Execer, userID, column string, count int64) error
}

type TokenTransactionStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.TokenTransactionInput) error
	ListByUser(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error)
}

type RewardStore interface {
	GetByID(ctx context.Context, rewardID string) (store.Reward, error)
	InsertRedemption(ctx context.Context, tx store.Execer, id, userID, rewardID string) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// LedgerService owns per-user token balances and their append-only
// transaction history. Every mutation locks the account row inside a
// database transaction, so concurrent awards and spends for one user
// serialize instead of losing updates.
type LedgerService struct {
	txRunner     db.TxRunner
	accounts     TokenAccountStore
	transactions TokenTransactionStore
	rewards      RewardStore
	audit        AuditStore
	hub          BalanceHub
}

func NewLedgerService(txRunner db.TxRunner, accounts TokenAccountStore, transactions TokenTransactionStore, rewards RewardStore, audit AuditStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		rewards:      rewards,
		audit:        audit,
		hub:          hub,
	}
}

// CreateAccount opens a token account with the welcome bonus and its seed
// transaction. It runs on the caller's transaction so registration and
// account creation commit together. Account creation is the only place an
// account comes into existence; reads never create one.
func (s *LedgerService) CreateAccount(ctx context.Context, tx store.Execer, userID string, welcomeBonus int64) error {
	if welcomeBonus < 0 {
		return ErrInvalidAmount
	}
	if err := s.accounts.Create(ctx, tx, userID, welcomeBonus, welcomeBonus); err != nil {
		return err
	}
	if welcomeBonus == 0 {
		return nil
	}
	return s.transactions.Insert(ctx, tx, store.TokenTransactionInput{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     models.TxEarned,
		Amount:   welcomeBonus,
		Reason:   "Welcome bonus for joining MindWell!",
		Category: models.CategoryMilestone,
	})
}

// GetBalance is a pure read; a missing account is an error, never an
// implicit initialization.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (Balance, error) {
	account, err := s.accounts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrAccountNotFound
		}
		return Balance{}, err
	}
	return balanceOf(account), nil
}

// BalanceTx reads the balance under the caller's transaction, holding the
// account lock.
func (s *LedgerService) BalanceTx(ctx context.Context, tx store.Tx, userID string) (Balance, error) {
	account, err := s.lockAccount(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}
	return balanceOf(account), nil
}

func (s *LedgerService) Award(ctx context.Context, userID string, amount int64, reason, category string) (Balance, error) {
	var balance Balance
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.AwardTx(ctx, tx, userID, amount, reason, category)
		return err
	})
	if err != nil {
		return Balance{}, err
	}
	s.broadcast(userID, balance)
	return balance, nil
}

// AwardTx credits amount inside the caller's transaction. The caller is
// responsible for broadcasting the returned balance after commit.
func (s *LedgerService) AwardTx(ctx context.Context, tx store.Tx, userID string, amount int64, reason, category string) (Balance, error) {
	if amount <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	account, err := s.lockAccount(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}
	account.Balance += amount
	account.TotalEarned += amount
	if err := s.accounts.UpdateBalance(ctx, tx, userID, account.Balance, account.TotalEarned); err != nil {
		return Balance{}, err
	}
	if err := s.transactions.Insert(ctx, tx, store.TokenTransactionInput{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     models.TxEarned,
		Amount:   amount,
		Reason:   reason,
		Category: category,
	}); err != nil {
		return Balance{}, err
	}
	metrics.TokensAwardedTotal.WithLabelValues(category).Add(float64(amount))
	return balanceOf(account), nil
}

func (s *LedgerService) Spend(ctx context.Context, userID string, amount int64, reason, category string) (Balance, error) {
	var balance Balance
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.SpendTx(ctx, tx, userID, amount, reason, category)
		return err
	})
	if err != nil {
		return Balance{}, err
	}
	s.broadcast(userID, balance)
	return balance, nil
}

// SpendTx debits amount inside the caller's transaction. A balance lower
// than amount fails with *InsufficientTokensError and leaves all state
// untouched.
func (s *LedgerService) SpendTx(ctx context.Context, tx store.Tx, userID string, amount int64, reason, category string) (Balance, error) {
	if amount <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	account, err := s.lockAccount(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}
	if account.Balance < amount {
		return Balance{}, &InsufficientTokensError{Shortfall: amount - account.Balance}
	}
	account.Balance -= amount
	if err := s.accounts.UpdateBalance(ctx, tx, userID, account.Balance, account.TotalEarned); err != nil {
		return Balance{}, err
	}
	if err := s.transactions.Insert(ctx, tx, store.TokenTransactionInput{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     models.TxSpent,
		Amount:   amount,
		Reason:   reason,
		Category: category,
	}); err != nil {
		return Balance{}, err
	}
	metrics.TokensSpentTotal.WithLabelValues(category).Add(float64(amount))
	return balanceOf(account), nil
}

func (s *LedgerService) UpdateStreak(ctx context.Context, userID, kind string, count int64) (Balance, error) {
	var balance Balance
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.UpdateStreakTx(ctx, tx, userID, kind, count)
		return err
	})
	if err != nil {
		return Balance{}, err
	}
	s.broadcast(userID, balance)
	return balance, nil
}

// UpdateStreakTx sets the named streak counter. Reaching 3, 7, or 30 on
// the mood streak pays the matching bonus in the same transaction. Only
// the mood streak carries bonuses.
func (s *LedgerService) UpdateStreakTx(ctx context.Context, tx store.Tx, userID, kind string, count int64) (Balance, error) {
	if count < 0 {
		return Balance{}, ErrInvalidStreak
	}
	column, ok := streakColumns[kind]
	if !ok {
		return Balance{}, ErrInvalidStreak
	}
	account, err := s.lockAccount(ctx, tx, userID)
	if err != nil {
		return Balance{}, err
	}
	if err := s.accounts.UpdateStreak(ctx, tx, userID, column, count); err != nil {
		return Balance{}, err
	}
	setStreak(&account, kind, count)
	if kind == models.StreakMood {
		if bonus, reason, ok := moodStreakBonus(count); ok {
			return s.AwardTx(ctx, tx, userID, bonus, reason, models.CategoryStreak)
		}
	}
	return balanceOf(account), nil
}

// RecentTransactions returns up to limit entries, most recent first.
func (s *LedgerService) RecentTransactions(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.transactions.ListByUser(ctx, userID, limit)
}

// Redeem spends a catalog reward's cost and records the redemption.
func (s *LedgerService) Redeem(ctx context.Context, userID, rewardID string) (Balance, store.Reward, error) {
	reward, err := s.rewards.GetByID(ctx, rewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, store.Reward{}, ErrRewardNotFound
		}
		return Balance{}, store.Reward{}, err
	}
	if !reward.Available {
		return Balance{}, store.Reward{}, ErrRewardUnavailable
	}
	var balance Balance
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.SpendTx(ctx, tx, userID, reward.Cost, "Redeemed: "+reward.Name, models.CategoryReward)
		if err != nil {
			return err
		}
		if err := s.rewards.InsertRedemption(ctx, tx, uuid.NewString(), userID, reward.ID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"reward_id": reward.ID,
			"cost":      reward.Cost,
		})
		return s.audit.Log(ctx, tx, userID, "redeem_reward", "reward", reward.ID, string(data))
	})
	if err != nil {
		return Balance{}, store.Reward{}, err
	}
	s.broadcast(userID, balance)
	return balance, reward, nil
}

func (s *LedgerService) lockAccount(ctx context.Context, tx store.Getter, userID string) (store.TokenAccount, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.TokenAccount{}, ErrAccountNotFound
		}
		return store.TokenAccount{}, err
	}
	return account, nil
}

func (s *LedgerService) broadcast(userID string, balance Balance) {
	s.hub.BroadcastBalance(userID, balanceUpdate(balance))
}

func balanceUpdate(balance Balance) websocket.BalanceUpdate {
	return websocket.BalanceUpdate{
		Balance:     balance.Balance,
		TotalEarned: balance.TotalEarned,
	}
}

var streakColumns = map[string]string{
	models.StreakMood:      "mood_streak",
	models.StreakSessions:  "session_streak",
	models.StreakResources: "resource_streak",
}

func moodStreakBonus(count int64) (int64, string, bool) {
	switch count {
	case 3:
		return models.AwardStreak3, "3-day mood tracking streak!", true
	case 7:
		return models.AwardStreak7, "7-day mood tracking streak!", true
	case 30:
		return models.AwardStreak30, "30-day mood tracking streak!", true
	}
	return 0, "", false
}

func balanceOf(account store.TokenAccount) Balance {
	return Balance{
		Balance:     account.Balance,
		TotalEarned: account.TotalEarned,
		Streaks: Streaks{
			Mood:      account.MoodStreak,
			Sessions:  account.SessionStreak,
			Resources: account.ResourceStreak,
		},
	}
}

func setStreak(account *store.TokenAccount, kind string, count int64) {
	switch kind {
	case models.StreakMood:
		account.MoodStreak = count
	case models.StreakSessions:
		account.SessionStreak = count
	case models.StreakResources:
		account.ResourceStreak = count
	}
}
