package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindwell/internal/auth"
	"mindwell/internal/config"
	"mindwell/internal/middleware"
	"mindwell/internal/services"
	"mindwell/internal/store"
	"mindwell/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error
	getByEmailFn    func(ctx context.Context, email string) (store.User, error)
	getByUsernameFn func(ctx context.Context, username string) (store.User, error)
	getByIDFn       func(ctx context.Context, userID string) (store.User, error)
	listFn          func(ctx context.Context, limit, offset int) ([]store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash, role string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash, role)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (store.User, error) {
	if s.getByUsernameFn == nil {
		return store.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) List(ctx context.Context, limit, offset int) ([]store.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubTokenAccountStore struct {
	listSummariesFn func(ctx context.Context) ([]store.TokenAccountSummary, error)
}

func (s stubTokenAccountStore) ListSummaries(ctx context.Context) ([]store.TokenAccountSummary, error) {
	if s.listSummariesFn == nil {
		return nil, nil
	}
	return s.listSummariesFn(ctx)
}

type stubTokenTransactionStore struct {
	listAllFn func(ctx context.Context, limit, offset int) ([]store.TokenTransaction, error)
}

func (s stubTokenTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]store.TokenTransaction, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubRewardStore struct {
	listFn func(ctx context.Context) ([]store.Reward, error)
}

func (s stubRewardStore) List(ctx context.Context) ([]store.Reward, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

type stubProfessionalStore struct {
	listFn     func(ctx context.Context) ([]store.Professional, error)
	linkUserFn func(ctx context.Context, tx store.Execer, professionalID, userID string) error
}

func (s stubProfessionalStore) List(ctx context.Context) ([]store.Professional, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubProfessionalStore) LinkUser(ctx context.Context, tx store.Execer, professionalID, userID string) error {
	if s.linkUserFn == nil {
		return nil
	}
	return s.linkUserFn(ctx, tx, professionalID, userID)
}

type stubSessionStore struct {
	listByPatientFn func(ctx context.Context, patientID string, limit, offset int) ([]store.Session, error)
}

func (s stubSessionStore) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]store.Session, error) {
	if s.listByPatientFn == nil {
		return nil, nil
	}
	return s.listByPatientFn(ctx, patientID, limit, offset)
}

type stubResourceStore struct {
	listFn func(ctx context.Context) ([]store.Resource, error)
}

func (s stubResourceStore) List(ctx context.Context) ([]store.Resource, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context, tx store.Getter) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx, tx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditEntry, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditEntry, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubTokenLedger struct {
	createAccountFn      func(ctx context.Context, tx store.Execer, userID string, welcomeBonus int64) error
	getBalanceFn         func(ctx context.Context, userID string) (services.Balance, error)
	recentTransactionsFn func(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error)
	redeemFn             func(ctx context.Context, userID, rewardID string) (services.Balance, store.Reward, error)
}

func (s stubTokenLedger) CreateAccount(ctx context.Context, tx store.Execer, userID string, welcomeBonus int64) error {
	if s.createAccountFn == nil {
		return nil
	}
	return s.createAccountFn(ctx, tx, userID, welcomeBonus)
}

func (s stubTokenLedger) GetBalance(ctx context.Context, userID string) (services.Balance, error) {
	if s.getBalanceFn == nil {
		return services.Balance{}, nil
	}
	return s.getBalanceFn(ctx, userID)
}

func (s stubTokenLedger) RecentTransactions(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error) {
	if s.recentTransactionsFn == nil {
		return nil, nil
	}
	return s.recentTransactionsFn(ctx, userID, limit)
}

func (s stubTokenLedger) Redeem(ctx context.Context, userID, rewardID string) (services.Balance, store.Reward, error) {
	if s.redeemFn == nil {
		return services.Balance{}, store.Reward{}, nil
	}
	return s.redeemFn(ctx, userID, rewardID)
}

type stubBookingService struct {
	quoteFn    func(ctx context.Context, req services.QuoteRequest) (services.SessionQuote, error)
	bookFn     func(ctx context.Context, req services.BookRequest) (services.BookedSession, error)
	completeFn func(ctx context.Context, req services.CompleteRequest) (services.Balance, error)
}

func (s stubBookingService) Quote(ctx context.Context, req services.QuoteRequest) (services.SessionQuote, error) {
	if s.quoteFn == nil {
		return services.SessionQuote{}, nil
	}
	return s.quoteFn(ctx, req)
}

func (s stubBookingService) Book(ctx context.Context, req services.BookRequest) (services.BookedSession, error) {
	if s.bookFn == nil {
		return services.BookedSession{}, nil
	}
	return s.bookFn(ctx, req)
}

func (s stubBookingService) Complete(ctx context.Context, req services.CompleteRequest) (services.Balance, error) {
	if s.completeFn == nil {
		return services.Balance{}, nil
	}
	return s.completeFn(ctx, req)
}

type stubEngagementService struct {
	logMoodFn          func(ctx context.Context, userID string, score int, note string) (services.Balance, error)
	listMoodsFn        func(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error)
	markReadFn         func(ctx context.Context, userID, resourceID string) (services.Balance, bool, error)
	completeResourceFn func(ctx context.Context, userID, resourceID string) (services.Balance, bool, error)
}

func (s stubEngagementService) LogMood(ctx context.Context, userID string, score int, note string) (services.Balance, error) {
	if s.logMoodFn == nil {
		return services.Balance{}, nil
	}
	return s.logMoodFn(ctx, userID, score, note)
}

func (s stubEngagementService) ListMoods(ctx context.Context, userID string, limit int) ([]store.MoodEntry, error) {
	if s.listMoodsFn == nil {
		return nil, nil
	}
	return s.listMoodsFn(ctx, userID, limit)
}

func (s stubEngagementService) MarkResourceRead(ctx context.Context, userID, resourceID string) (services.Balance, bool, error) {
	if s.markReadFn == nil {
		return services.Balance{}, false, nil
	}
	return s.markReadFn(ctx, userID, resourceID)
}

func (s stubEngagementService) CompleteResource(ctx context.Context, userID, resourceID string) (services.Balance, bool, error) {
	if s.completeResourceFn == nil {
		return services.Balance{}, false, nil
	}
	return s.completeResourceFn(ctx, userID, resourceID)
}

// testDeps collects every Handler dependency so a test only overrides
// what it asserts on.
type testDeps struct {
	txRunner      fakeTxRunner
	users         stubUserStore
	accounts      stubTokenAccountStore
	transactions  stubTokenTransactionStore
	rewards       stubRewardStore
	professionals stubProfessionalStore
	sessions      stubSessionStore
	resources     stubResourceStore
	admin         stubAdminStore
	audit         stubAuditStore
	ledger        stubTokenLedger
	booking       stubBookingService
	engagement    stubEngagementService
}

func newTestHandler(deps testDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
		WelcomeBonus:   100,
	}
	return New(deps.txRunner, cfg, deps.users, deps.accounts, deps.transactions, deps.rewards, deps.professionals, deps.sessions, deps.resources, deps.admin, deps.audit, deps.ledger, deps.booking, deps.engagement, websocket.NewHub())
}

func serveAuthed(t *testing.T, handler http.HandlerFunc, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
