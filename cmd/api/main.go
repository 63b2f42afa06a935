// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/live"
	"github.com/pkordes/trip-planner/internal/middleware"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
	"github.com/pkordes/trip-planner/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// goose runs on database/sql, so borrow a *sql.DB view of the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)
	results, err := migrations.Up(context.Background(), sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", len(results))

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	expenseRepo := repo.NewExpenseRepo(pool)
	categoryRepo := repo.NewCategoryRepo(pool)

	hub := live.NewHub(live.NewRepoSource(tripRepo, expenseRepo), logger)

	categories := service.NewCategoryService(categoryRepo, logger)
	server := handler.NewServer(handler.Services{
		Trips: service.NewTripService(tripRepo, expenseRepo, hub, service.TripDefaults{
			Timezone:     cfg.DefaultTimezone,
			BaseCurrency: cfg.DefaultBaseCurrency,
		}),
		Itinerary:  service.NewItineraryService(tripRepo, hub),
		Expenses:   service.NewExpenseService(tripRepo, expenseRepo, categories, hub),
		Categories: categories,
		Export:     service.NewExportService(tripRepo, expenseRepo, categories, hub),
		Live:       hub,
	}, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. Auth is applied per route group by Routes.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", server.Routes(middleware.NewAuthHandler([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Hijacked WebSocket connections manage their own deadlines, so the
	// write timeout only bounds ordinary requests.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown does not wait for hijacked connections; close them first.
	_ = hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
