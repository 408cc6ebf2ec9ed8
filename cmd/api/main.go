package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/loan-match/backend/internal/config"
	"github.com/zhouzirui/loan-match/backend/internal/handler"
	"github.com/zhouzirui/loan-match/backend/internal/middleware"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/observability"
	"github.com/zhouzirui/loan-match/backend/internal/repository/catalog"
	"github.com/zhouzirui/loan-match/backend/internal/service/ai"
	"github.com/zhouzirui/loan-match/backend/internal/service/ask"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "loan-match-api",
	})
	log.Logger = logger
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using system environment only")
	}

	products, closeCatalog, err := catalog.Build(ctx, cfg.Catalog, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open catalog")
	}
	defer func() {
		if err := closeCatalog(); err != nil {
			logger.Warn().Err(err).Msg("close catalog")
		}
	}()

	askSvc := newAskService(ctx, cfg.AI, products, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	defer limiter.Stop()

	router := handler.NewRouter(products, askSvc, limiter)

	startServer(ctx, cfg.Server, router, logger)
}

// newAskService returns nil when the chat model is not configured or fails to start.
func newAskService(ctx context.Context, cfg config.AIConfig, products product.Store, logger zerolog.Logger) *ask.Service {
	if !cfg.Enabled() {
		logger.Warn().Str("provider", cfg.Provider).Msg("AI credentials not configured, /ask will return 503")
		return nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create chat model, continuing without AI")
		return nil
	}

	generator, err := ai.NewGenerator(ctx, chatModel, cfg.HistoryLimit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build generation chain, continuing without AI")
		return nil
	}

	logger.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("AI service initialized")
	return ask.NewService(products, generator, cfg.Timeout, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", serverCfg.Addr).Msg("loan match backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
