package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/workbridge/backend/internal/auth"
	"github.com/workbridge/backend/internal/config"
	"github.com/workbridge/backend/internal/dashboard"
	"github.com/workbridge/backend/internal/handlers"
	"github.com/workbridge/backend/internal/metrics"
	"github.com/workbridge/backend/internal/middleware"
	"github.com/workbridge/backend/internal/payments"
	"github.com/workbridge/backend/internal/repository"
	"github.com/workbridge/backend/internal/router"
	"github.com/workbridge/backend/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
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
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Payment gateway: insert func is set after the River client is created
	// (breaks init cycle between gateway and worker).
	var insertMu sync.Mutex
	var insertFn payments.InsertConfirmInvoiceTxFunc
	insertConfirmInvoice := func(ctx context.Context, tx pgx.Tx, args payments.ConfirmInvoiceJobArgs, runAt time.Time) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args, runAt)
	}

	gateway := payments.NewPGGateway(pool, insertConfirmInvoice, cfg.InvoiceConfirmDelay)

	workers := river.NewWorkers()
	river.AddWorker(workers, payments.NewConfirmInvoiceWorker(gateway))

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

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args payments.ConfirmInvoiceJobArgs, runAt time.Time) error {
		_, err := riverClient.InsertTx(ctx, tx, args, &river.InsertOpts{ScheduledAt: runAt})
		return err
	}
	insertMu.Unlock()

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	// Repositories
	projectRepo := repository.NewProjectRepo(pool)
	proposalRepo := repository.NewProposalRepo(pool)
	contractRepo := repository.NewContractRepo(pool)
	milestoneRepo := repository.NewMilestoneRepo(pool)

	// Workflow services
	hireSvc := services.NewHireService(pool, projectRepo, proposalRepo, contractRepo)
	milestoneSvc := services.NewMilestoneService(contractRepo, milestoneRepo, gateway)

	validator, err := services.NewValidator(ctx, cfg.SchemaDir)
	if err != nil {
		slog.Error("Schema validator init failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	projectHandler := &handlers.ProjectHandler{Projects: projectRepo, Validator: validator, Logger: logger}
	proposalHandler := &handlers.ProposalHandler{
		Proposals: proposalRepo,
		Projects:  projectRepo,
		Hire:      hireSvc,
		Metrics:   m,
		Logger:    logger,
	}
	contractHandler := &handlers.ContractHandler{
		Contracts:  contractRepo,
		Milestones: milestoneSvc,
		Validator:  validator,
		Metrics:    m,
		Logger:     logger,
	}
	invoiceHandler := &handlers.InvoiceHandler{Gateway: gateway, Metrics: m, Logger: logger}
	overviewHandler := dashboard.NewHandler(projectRepo, proposalRepo, contractRepo, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/", router.New(authHandler, invoiceHandler))
	mux.Handle("GET /metrics", m.Handler())

	authMW := middleware.JWTAuth(authSvc, authRepo)
	RegisterMarketplaceRoutes(mux, authMW, projectHandler, proposalHandler, contractHandler, overviewHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (settles scheduled invoices)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
