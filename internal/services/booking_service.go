package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindwell/internal/db"
	"mindwell/internal/metrics"
	"mindwell/internal/models"
	"mindwell/internal/pricing"
	"mindwell/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrInvalidSchedule        = errors.New("invalid schedule")
	ErrNotSessionProfessional = errors.New("session belongs to another professional")
	ErrSessionNotCompletable  = errors.New("session cannot be completed")
)

type ProfessionalStore interface {
	GetByID(ctx context.Context, professionalID string) (store.Professional, error)
}

type SessionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.SessionInput) error
	GetForUpdate(ctx context.Context, tx store.Getter, sessionID string) (store.Session, error)
	UpdateStatus(ctx context.Context, tx store.Execer, sessionID, status string) error
	CountCompletedByPatient(ctx context.Context, tx store.Getter, patientID string) (int64, error)
}

// TokenLedger is the slice of LedgerService the booking flow needs;
// mutations run on the booking's own transaction.
type TokenLedger interface {
	SpendTx(ctx context.Context, tx store.Tx, userID string, amount int64, reason, category string) (Balance, error)
	AwardTx(ctx context.Context, tx store.Tx, userID string, amount int64, reason, category string) (Balance, error)
	UpdateStreakTx(ctx context.Context, tx store.Tx, userID, kind string, count int64) (Balance, error)
	BalanceTx(ctx context.Context, tx store.Tx, userID string) (Balance, error)
}

// BookingService prices and books therapy sessions, and settles the
// engagement awards when a professional completes one.
type BookingService struct {
	txRunner      db.TxRunner
	professionals ProfessionalStore
	sessions      SessionStore
	ledger        TokenLedger
	audit         AuditStore
	hub           BalanceHub
}

func NewBookingService(txRunner db.TxRunner, professionals ProfessionalStore, sessions SessionStore, ledger TokenLedger, audit AuditStore, hub BalanceHub) *BookingService {
	return &BookingService{
		txRunner:      txRunner,
		professionals: professionals,
		sessions:      sessions,
		ledger:        ledger,
		audit:         audit,
		hub:           hub,
	}
}

type QuoteRequest struct {
	ProfessionalID  string
	SessionType     string
	DurationMinutes int
}

type SessionQuote struct {
	Professional store.Professional
	Price        pricing.Quote
}

// Quote computes the USD and token price for a booking. Quotes are
// derived on every call and never stored.
func (s *BookingService) Quote(ctx context.Context, req QuoteRequest) (SessionQuote, error) {
	professional, err := s.professionals.GetByID(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionQuote{}, ErrProfessionalNotFound
		}
		return SessionQuote{}, err
	}
	price, err := pricing.SessionPrice(professional.SessionRateMinor, professional.BaseTokenRate, req.SessionType, req.DurationMinutes)
	if err != nil {
		return SessionQuote{}, err
	}
	return SessionQuote{Professional: professional, Price: price}, nil
}

type BookRequest struct {
	PatientID       string
	ProfessionalID  string
	SessionType     string
	DurationMinutes int
	ScheduledAt     time.Time
	PaymentMethod   string
}

type BookedSession struct {
	SessionID string
	Status    string
	Price     pricing.Quote
	Balance   *Balance
}

// Book creates a session. Token payment spends the quoted token price
// atomically with the session insert; card payment records the session
// as pending until the charge clears out of band.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (BookedSession, error) {
	if req.PaymentMethod != models.PaymentTokens && req.PaymentMethod != models.PaymentCard {
		return BookedSession{}, ErrInvalidPaymentMethod
	}
	if req.ScheduledAt.IsZero() || req.ScheduledAt.Before(time.Now()) {
		return BookedSession{}, ErrInvalidSchedule
	}
	quote, err := s.Quote(ctx, QuoteRequest{
		ProfessionalID:  req.ProfessionalID,
		SessionType:     req.SessionType,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return BookedSession{}, err
	}

	sessionID := uuid.NewString()
	status := models.SessionPendingPayment
	var balance *Balance
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if req.PaymentMethod == models.PaymentTokens {
			reason := fmt.Sprintf("%d-min %s session with %s", req.DurationMinutes, req.SessionType, quote.Professional.Name)
			spent, err := s.ledger.SpendTx(ctx, tx, req.PatientID, quote.Price.Tokens, reason, models.CategoryPurchase)
			if err != nil {
				return err
			}
			balance = &spent
			status = models.SessionScheduled
		}
		if err := s.sessions.Create(ctx, tx, store.SessionInput{
			ID:              sessionID,
			PatientID:       req.PatientID,
			ProfessionalID:  req.ProfessionalID,
			SessionType:     req.SessionType,
			DurationMinutes: req.DurationMinutes,
			ScheduledAt:     req.ScheduledAt.UTC().Format(time.RFC3339),
			Status:          status,
			PaymentMethod:   req.PaymentMethod,
			PriceMinor:      quote.Price.USDMinor,
			PriceTokens:     quote.Price.Tokens,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"professional_id": req.ProfessionalID,
			"payment_method":  req.PaymentMethod,
			"price_minor":     quote.Price.USDMinor,
			"price_tokens":    quote.Price.Tokens,
		})
		return s.audit.Log(ctx, tx, req.PatientID, "book_session", "session", sessionID, string(data))
	})
	if err != nil {
		return BookedSession{}, err
	}
	if balance != nil {
		s.hub.BroadcastBalance(req.PatientID, balanceUpdate(*balance))
	}
	metrics.SessionsBookedTotal.WithLabelValues(req.PaymentMethod).Inc()
	return BookedSession{
		SessionID: sessionID,
		Status:    status,
		Price:     quote.Price,
		Balance:   balance,
	}, nil
}

type CompleteRequest struct {
	ProfessionalUserID string
	SessionID          string
}

// Complete marks a scheduled session as held. The patient earns the
// session-completion award, the session streak advances, and crossing a
// completed-session milestone pays its bonus, all in one transaction.
func (s *BookingService) Complete(ctx context.Context, req CompleteRequest) (Balance, error) {
	var balance Balance
	var patientID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		session, err := s.sessions.GetForUpdate(ctx, tx, req.SessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSessionNotFound
			}
			return err
		}
		professional, err := s.professionals.GetByID(ctx, session.ProfessionalID)
		if err != nil {
			return err
		}
		if professional.UserID == nil || *professional.UserID != req.ProfessionalUserID {
			return ErrNotSessionProfessional
		}
		if session.Status != models.SessionScheduled {
			return ErrSessionNotCompletable
		}
		if err := s.sessions.UpdateStatus(ctx, tx, session.ID, models.SessionCompleted); err != nil {
			return err
		}
		patientID = session.PatientID
		balance, err = s.ledger.AwardTx(ctx, tx, patientID, models.AwardSessionComplete, "Completed therapy session", models.CategorySession)
		if err != nil {
			return err
		}
		completed, err := s.sessions.CountCompletedByPatient(ctx, tx, patientID)
		if err != nil {
			return err
		}
		if bonus, reason, ok := sessionMilestone(completed); ok {
			balance, err = s.ledger.AwardTx(ctx, tx, patientID, bonus, reason, models.CategoryMilestone)
			if err != nil {
				return err
			}
		}
		balance, err = s.ledger.UpdateStreakTx(ctx, tx, patientID, models.StreakSessions, balance.Streaks.Sessions+1)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"patient_id": patientID,
			"completed":  completed,
		})
		return s.audit.Log(ctx, tx, req.ProfessionalUserID, "complete_session", "session", session.ID, string(data))
	})
	if err != nil {
		return Balance{}, err
	}
	s.hub.BroadcastBalance(patientID, balanceUpdate(balance))
	return balance, nil
}

func sessionMilestone(completed int64) (int64, string, bool) {
	switch completed {
	case 1:
		return models.AwardFirstSession, "Completed your first session!", true
	case 5:
		return models.AwardMilestone5, "Milestone: 5 sessions completed", true
	case 10:
		return models.AwardMilestone10, "Milestone: 10 sessions completed", true
	case 20:
		return models.AwardMilestone20, "Milestone: 20 sessions completed", true
	}
	return 0, "", false
}
