package handlers

import (
	"context"

	"mindwell/internal/services"
	"mindwell/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByUsername(ctx context.Context, username string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
	List(ctx context.Context, limit, offset int) ([]store.User, error)
}

type TokenAccountStore interface {
	ListSummaries(ctx context.Context) ([]store.TokenAccountSummary, error)
}

type TokenTransactionStore interface {
	ListAll(ctx context.Context, limit, offset int) ([]store.TokenTransaction, error)
}

type RewardStore interface {
	List(ctx context.Context) ([]store.Reward, error)
}

type ProfessionalStore interface {
	List(ctx context.Context) ([]store.Professional, error)
	LinkUser(ctx context.Context, tx store.Execer, professionalID, userID string) error
}

type SessionStore interface {
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]store.Session, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

type TokenLedger interface {
	CreateAccount(ctx context.Context, tx store.Execer, userID string, welcomeBonus int64) error
	GetBalance(ctx context.Context, userID string) (services.Balance, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error)
	Redeem(ctx context.Context, userID, rewardID string) (services.Balance, store.Reward, error)
}

type BookingService interface {
	Quote(ctx context.Context, req services.QuoteRequest) (services.SessionQuote, error)
	Book(ctx context.Context, req services.BookRequest) (services.BookedSession, error)
	Complete(ctx context.Context, req services.CompleteRequest) (services.Balance, error)
}

type EngagementService interface {
	LogMood(ctx context.Context, userID string, score int, note string) (services.Balance, error)
	ListMoods(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error)
	MarkResourceRead(ctx context.Context, userID, resourceID string) (services.Balance, bool, error)
	CompleteResource(ctx context.Context, userID, resourceID string) (services.Balance, bool, error)
}

type ResourceStore interface {
	List(ctx context.Context) ([]store.Resource, error)
}
