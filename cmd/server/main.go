package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinledger/internal/config"
	"coinledger/internal/db"
	"coinledger/internal/handlers"
	"coinledger/internal/metrics"
	"coinledger/internal/payments"
	"coinledger/internal/policy"
	"coinledger/internal/services"
	"coinledger/internal/store"
	"coinledger/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	balances := store.NewBalanceStore(database)
	transactions := store.NewTransactionStore(database)
	reports := store.NewReportStore(database)
	listings := store.NewListingStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	collector := metrics.NewCollector()
	gateway := payments.NewSimulatedGateway()

	ledger := services.NewLedger(txRunner, users, balances, transactions, audit, gateway, hub, collector)
	listingService := services.NewListings(txRunner, listings, ledger, policy.ParseFeePercent(cfg.SaleFeePercent))

	if summary, err := reports.CirculationSummary(context.Background()); err == nil {
		collector.SetCirculation(summary.TotalCoinsInCirculation)
	}

	handler := handlers.New(cfg, txRunner, users, balances, transactions, reports, listings, admin, audit, ledger, listingService, hub, collector, collector.Handler())
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go ledger.RunRetentionSweeper(sweepCtx, cfg.RetentionSweepEvery, time.Duration(cfg.RetentionDays)*24*time.Hour)

	go func() {
		log.Printf("coin ledger API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
