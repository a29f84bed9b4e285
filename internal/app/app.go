package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-wbs-tracker/internal/config"
	"go-wbs-tracker/internal/database"
	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/handler"
	"go-wbs-tracker/internal/middleware"
	"go-wbs-tracker/internal/repository"
	"go-wbs-tracker/internal/router"
	"go-wbs-tracker/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(context.Background(), cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)
	slog.Info("database ready")

	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, userRepo, tokenRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	bus := event.NewBus()
	taskService := service.NewTaskService(taskRepo, bus)
	linkService := service.NewLinkService(linkRepo, bus)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Task:   handler.NewTaskHandler(taskService),
		Link:   handler.NewLinkHandler(linkService),
		Events: handler.NewEventsHandler(bus),
		Health: handler.NewHealthHandler(db),
	}, registry)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	if cfg.TokenSweepInterval > 0 {
		go runTokenSweep(sweepCtx, authService, cfg.TokenSweepInterval)
	}

	// No WriteTimeout: /events connections stay open indefinitely.
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			sweepCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runTokenSweep(ctx context.Context, authService *service.AuthService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			authService.SweepExpiredTokens(ctx)
		}
	}
}
