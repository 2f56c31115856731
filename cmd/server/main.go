package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindwell/internal/config"
	"mindwell/internal/db"
	"mindwell/internal/handlers"
	"mindwell/internal/services"
	"mindwell/internal/store"
	"mindwell/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewTokenAccountStore(database)
	transactions := store.NewTokenTransactionStore(database)
	rewards := store.NewRewardStore(database)
	professionals := store.NewProfessionalStore(database)
	sessions := store.NewSessionStore(database)
	moods := store.NewMoodStore(database)
	resources := store.NewResourceStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	ledger := services.NewLedgerService(txRunner, accounts, transactions, rewards, audit, hub)
	booking := services.NewBookingService(txRunner, professionals, sessions, ledger, audit, hub)
	engagement := services.NewEngagementService(txRunner, moods, resources, ledger, hub)

	handler := handlers.New(txRunner, cfg, users, accounts, transactions, rewards, professionals, sessions, resources, admin, audit, ledger, booking, engagement, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("mindwell API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
