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
	"github.com/rs/zerolog/log"

	"github.com/oidebrett/ai-pricing-txt-manager/internal/config"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/handler"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/mcp"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/model/campaign"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/service/shopify"
	"github.com/oidebrett/ai-pricing-txt-manager/internal/targeting"
)

const serverVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load .env file, continuing with system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.SetupLogging(cfg.Log.Level)

	store, err := campaign.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize campaign store")
	}

	catalogClient := shopify.New(cfg.Shopify)

	registry := mcp.NewRegistry()
	events := mcp.NewEventLog()
	dispatcher := mcp.NewDispatcher(ctx)
	invoker := mcp.NewInvoker(store, targeting.NewEvaluator(), events, dispatcher, registry)
	mcpHandler := mcp.NewHandler(registry, invoker, events, mcp.ServerInfo{
		Name:    "ai-pricing-mcp-server",
		Version: serverVersion,
	})

	go registry.Sweep(ctx)

	router := handler.NewRouter(store, catalogClient, mcpHandler, cfg.CORS.AllowedOrigin)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Closing the session transports unblocks open SSE streams so graceful
	// shutdown does not wait out its timeout.
	srv.RegisterOnShutdown(registry.CloseAll)

	log.Info().Str("addr", cfg.Server.Addr).Msg("AI pricing backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}

	// Abandon in-flight notifications, then tear down every session transport.
	dispatcher.Shutdown()
	registry.CloseAll()
	log.Info().Msg("resources cleaned up")
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
