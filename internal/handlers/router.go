package handlers

import (
	"net/http"

	"mindwell/internal/config"
	"mindwell/internal/db"
	"mindwell/internal/middleware"
	"mindwell/internal/store"
	"mindwell/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	txRunner      db.TxRunner
	cfg           config.Config
	users         UserStore
	accounts      TokenAccountStore
	transactions  TokenTransactionStore
	rewards       RewardStore
	professionals ProfessionalStore
	sessions      SessionStore
	resources     ResourceStore
	admin         AdminStore
	audit         AuditStore
	ledger        TokenLedger
	booking       BookingService
	engagement    EngagementService
	hub           *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts TokenAccountStore, transactions TokenTransactionStore, rewards RewardStore, professionals ProfessionalStore, sessions SessionStore, resources ResourceStore, admin AdminStore, audit AuditStore, ledger TokenLedger, booking BookingService, engagement EngagementService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:      txRunner,
		cfg:           cfg,
		users:         users,
		accounts:      accounts,
		transactions:  transactions,
		rewards:       rewards,
		professionals: professionals,
		sessions:      sessions,
		resources:     resources,
		admin:         admin,
		audit:         audit,
		ledger:        ledger,
		booking:       booking,
		engagement:    engagement,
		hub:           hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/tokens/balance", h.GetBalance)
		r.Get("/tokens/transactions", h.ListTransactions)
		r.Get("/rewards", h.ListRewards)
		r.Post("/rewards/{id}/redeem", h.RedeemReward)
		r.Get("/professionals", h.ListProfessionals)
		r.Post("/bookings/quote", h.QuoteBooking)
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings", h.ListBookings)
		r.Post("/bookings/{id}/complete", h.CompleteBooking)
		r.Post("/moods", h.LogMood)
		r.Get("/moods", h.ListMoods)
		r.Get("/resources", h.ListResources)
		r.Post("/resources/{id}/read", h.ReadResource)
		r.Post("/resources/{id}/complete", h.CompleteResource)
	})

	router.Get("/ws/tokens", h.WSTokens)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.admin, store.RoleViewUsers)).Get("/users", h.AdminListUsers)
		r.With(middleware.RequireAdmin(h.admin, store.RoleViewTransactions)).Get("/transactions", h.AdminListTransactions)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/professionals/link", h.LinkProfessional)
		r.With(middleware.RequireAdmin(h.admin, store.RoleViewTransactions)).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.admin, store.RoleViewTransactions)).Get("/reconcile", h.Reconcile)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	return router
}
