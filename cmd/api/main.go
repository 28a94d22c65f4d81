package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/cubanstagelink-ai/reupspots-app/internal/application"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/booking"
	"github.com/cubanstagelink-ai/reupspots-app/internal/config"
	"github.com/cubanstagelink-ai/reupspots-app/internal/eligibility"
	"github.com/cubanstagelink-ai/reupspots-app/internal/escrow"
	"github.com/cubanstagelink-ai/reupspots-app/internal/handlers"
	"github.com/cubanstagelink-ai/reupspots-app/internal/ledger"
	"github.com/cubanstagelink-ai/reupspots-app/internal/listing"
	"github.com/cubanstagelink-ai/reupspots-app/internal/notify"
	"github.com/cubanstagelink-ai/reupspots-app/internal/payments"
	"github.com/cubanstagelink-ai/reupspots-app/internal/pricing"
	"github.com/cubanstagelink-ai/reupspots-app/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	creditRepo := repository.NewCreditRepo(pool)
	postRepo := repository.NewPostRepo(pool)
	applicationRepo := repository.NewApplicationRepo(pool)
	bookingRepo := repository.NewBookingRepo(pool)
	verificationRepo := repository.NewVerificationRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	followRepo := repository.NewFollowRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)

	// River worker + client
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewListingPublishedWorker(followRepo, notificationRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	enqueue := func(ctx context.Context, args notify.ListingPublishedArgs) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}

	// Core services
	policy := authz.NewEmailAllowlist(cfg.AdminEmails)
	provider := payments.NewCheckoutClient(cfg.ProviderBaseURL, cfg.ProviderSecretKey)
	calc := pricing.NewCalculator(cfg)
	gate := eligibility.NewGate(verificationRepo, cfg)

	ledgerSvc := ledger.NewService(creditRepo, pool)
	listingSvc := listing.NewService(pool, postRepo, ledgerSvc, profileRepo, gate, calc, enqueue, logger)
	applicationSvc := application.NewService(pool, applicationRepo, postRepo, ledgerSvc, policy)
	bookingSvc := booking.NewService(bookingRepo, calc, policy)
	escrowCtl := escrow.NewController(bookingRepo, provider, policy)

	validate := validator.New()

	creditHandler := &handlers.CreditHandler{
		Ledger: ledgerSvc, Provider: provider,
		StartingCredits: cfg.StartingCredits, Validate: validate, Logger: logger,
	}
	listingHandler := &handlers.ListingHandler{Listings: listingSvc, Validate: validate, Logger: logger}
	applicationHandler := &handlers.ApplicationHandler{Applications: applicationSvc, Validate: validate, Logger: logger}
	bookingHandler := &handlers.BookingHandler{Bookings: bookingSvc, Validate: validate, Logger: logger}
	escrowHandler := &handlers.EscrowHandler{Escrow: escrowCtl, Logger: logger}

	mux := http.NewServeMux()
	RegisterRoutes(mux, cfg, creditHandler, listingHandler, applicationHandler, bookingHandler, escrowHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes notification jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	addr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
