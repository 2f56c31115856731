package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"mindwell/internal/db"
	"mindwell/internal/models"
	"mindwell/internal/store"
	"mindwell/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrMoodAlreadyLogged = errors.New("mood already logged today")
	ErrResourceNotFound  = errors.New("resource not found")
)

type MoodStore interface {
	Insert(ctx context.Context, tx store.Execer, id, userID string, score int, note, entryDate string) error
	ExistsForDate(ctx context.Context, tx store.Getter, userID, entryDate string) (bool, error)
	LastEntryDate(ctx context.Context, tx store.Getter, userID, beforeDate string) (string, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error)
}

type ResourceStore interface {
	GetByID(ctx context.Context, resourceID string) (store.Resource, error)
	GetProgressForUpdate(ctx context.Context, tx store.Getter, userID, resourceID string) (store.ResourceProgress, error)
	MarkRead(ctx context.Context, tx store.Execer, userID, resourceID string) error
	MarkCompleted(ctx context.Context, tx store.Execer, userID, resourceID string) error
	CountCompleted(ctx context.Context, tx store.Getter, userID string) (int64, error)
}

// EngagementService handles the daily-engagement loops: mood logging and
// resource consumption, each paying their token awards through the ledger.
type EngagementService struct {
	txRunner  db.TxRunner
	moods     MoodStore
	resources ResourceStore
	ledger    TokenLedger
	hub       BalanceHub
	now       func() time.Time
}

func NewEngagementService(txRunner db.TxRunner, moods MoodStore, resources ResourceStore, ledger TokenLedger, hub BalanceHub) *EngagementService {
	return &EngagementService{
		txRunner:  txRunner,
		moods:     moods,
		resources: resources,
		ledger:    ledger,
		hub:       hub,
		now:       time.Now,
	}
}

const dateLayout = "2006-01-02"

// LogMood records today's mood once, awards the daily-log tokens, and
// advances the mood streak: logging on consecutive calendar days extends
// it, a gap resets it to 1. Streak bonuses pay out inside the same
// transaction when 3, 7, or 30 is reached.
func (s *EngagementService) LogMood(ctx context.Context, userID string, score int, note string) (Balance, error) {
	if err := validator.ValidateMoodScore(score); err != nil {
		return Balance{}, err
	}
	today := s.now().UTC().Format(dateLayout)
	var balance Balance
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.moods.ExistsForDate(ctx, tx, userID, today)
		if err != nil {
			return err
		}
		if exists {
			return ErrMoodAlreadyLogged
		}
		if err := s.moods.Insert(ctx, tx, uuid.NewString(), userID, score, note, today); err != nil {
			// Two same-day requests can race past the existence check;
			// the unique (user_id, entry_date) constraint catches the loser.
			if isUniqueViolation(err) {
				return ErrMoodAlreadyLogged
			}
			return err
		}
		balance, err = s.ledger.AwardTx(ctx, tx, userID, models.AwardMoodLog, "Logged daily mood", models.CategoryMood)
		if err != nil {
			return err
		}
		streak := int64(1)
		lastDate, err := s.moods.LastEntryDate(ctx, tx, userID, today)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err == nil && isPreviousDay(lastDate, today) {
			streak = balance.Streaks.Mood + 1
		}
		balance, err = s.ledger.UpdateStreakTx(ctx, tx, userID, models.StreakMood, streak)
		return err
	})
	if err != nil {
		return Balance{}, err
	}
	s.hub.BroadcastBalance(userID, balanceUpdate(balance))
	return balance, nil
}

func (s *EngagementService) ListMoods(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error) {
	if limit <= 0 {
		limit = 30
	}
	if limit > 100 {
		limit = 100
	}
	return s.moods.ListByUser(ctx, userID, limit)
}

// MarkResourceRead awards the reading tokens the first time a user opens
// a resource. Repeat reads change nothing and report awarded=false.
func (s *EngagementService) MarkResourceRead(ctx context.Context, userID, resourceID string) (Balance, bool, error) {
	resource, err := s.getResource(ctx, resourceID)
	if err != nil {
		return Balance{}, false, err
	}
	var balance Balance
	awarded := false
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		progress, err := s.progressFor(ctx, tx, userID, resourceID)
		if err != nil {
			return err
		}
		if progress.ReadAt != nil {
			balance, err = s.currentBalance(ctx, tx, userID)
			return err
		}
		if err := s.resources.MarkRead(ctx, tx, userID, resourceID); err != nil {
			return err
		}
		balance, err = s.ledger.AwardTx(ctx, tx, userID, models.AwardResourceRead, "Read: "+resource.Title, models.CategoryResource)
		if err != nil {
			return err
		}
		awarded = true
		return nil
	})
	if err != nil {
		return Balance{}, false, err
	}
	if awarded {
		s.hub.BroadcastBalance(userID, balanceUpdate(balance))
	}
	return balance, awarded, nil
}

// CompleteResource awards the completion tokens once per resource and
// advances the resource streak.
func (s *EngagementService) CompleteResource(ctx context.Context, userID, resourceID string) (Balance, bool, error) {
	resource, err := s.getResource(ctx, resourceID)
	if err != nil {
		return Balance{}, false, err
	}
	var balance Balance
	awarded := false
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		progress, err := s.progressFor(ctx, tx, userID, resourceID)
		if err != nil {
			return err
		}
		if progress.CompletedAt != nil {
			balance, err = s.currentBalance(ctx, tx, userID)
			return err
		}
		if err := s.resources.MarkCompleted(ctx, tx, userID, resourceID); err != nil {
			return err
		}
		balance, err = s.ledger.AwardTx(ctx, tx, userID, models.AwardResourceComplete, "Completed: "+resource.Title, models.CategoryResource)
		if err != nil {
			return err
		}
		balance, err = s.ledger.UpdateStreakTx(ctx, tx, userID, models.StreakResources, balance.Streaks.Resources+1)
		if err != nil {
			return err
		}
		awarded = true
		return nil
	})
	if err != nil {
		return Balance{}, false, err
	}
	if awarded {
		s.hub.BroadcastBalance(userID, balanceUpdate(balance))
	}
	return balance, awarded, nil
}

func (s *EngagementService) getResource(ctx context.Context, resourceID string) (store.Resource, error) {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Resource{}, ErrResourceNotFound
		}
		return store.Resource{}, err
	}
	return resource, nil
}

func (s *EngagementService) progressFor(ctx context.Context, tx store.Tx, userID, resourceID string) (store.ResourceProgress, error) {
	progress, err := s.resources.GetProgressForUpdate(ctx, tx, userID, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ResourceProgress{}, nil
		}
		return store.ResourceProgress{}, err
	}
	return progress, nil
}

func (s *EngagementService) currentBalance(ctx context.Context, tx store.Tx, userID string) (Balance, error) {
	return s.ledger.BalanceTx(ctx, tx, userID)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isPreviousDay(lastDate, today string) bool {
	last, err := time.Parse(dateLayout, lastDate)
	if err != nil {
		return false
	}
	current, err := time.Parse(dateLayout, today)
	if err != nil {
		return false
	}
	return last.AddDate(0, 0, 1).Equal(current)
}
