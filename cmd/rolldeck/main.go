package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rolldeck/rolldeck/internal/app"
	"github.com/rolldeck/rolldeck/internal/dice"
	"github.com/rolldeck/rolldeck/internal/identity"
	"github.com/rolldeck/rolldeck/internal/macros"
	"github.com/rolldeck/rolldeck/internal/observability"
	"github.com/rolldeck/rolldeck/internal/platform/db"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	verifier := identity.NewVerifier([]byte(cfg.JWTSecret), nil)
	identityMiddleware := identity.Middleware{
		Verifier:   verifier,
		CookieName: cfg.TokenCookie,
		Logger:     logger,
	}

	metrics := observability.NewMetrics()

	macroRepo := macros.NewRepository(pool)
	macroService := macros.NewService(macroRepo)
	macroHandler := macros.NewHandler(logger, macroService, metrics)

	diceHandler := dice.NewHandler(logger, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Identity:     identityMiddleware,
		DiceHandler:  diceHandler,
		MacroHandler: macroHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
