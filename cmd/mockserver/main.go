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

	"github.com/joho/godotenv"

	"github.com/zhouzirui/ai-code-helper/client/internal/config"
	"github.com/zhouzirui/ai-code-helper/client/internal/handler"
	"github.com/zhouzirui/ai-code-helper/client/internal/handler/stream"
	"github.com/zhouzirui/ai-code-helper/client/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		slog.Warn("falling back to info logging", "error", err)
	}
	logger := logging.New(os.Stderr, level, cfg.Log.NoColor)
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, continuing with system environment variables only", "error", envErr)
	}

	streamHandler := stream.New(
		stream.WithLogger(logger),
		stream.WithChunkDelay(cfg.Server.ChunkDelay),
	)
	router := handler.NewRouter(streamHandler)

	if err := startServer(ctx, logger, cfg.Server, router); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func startServer(ctx context.Context, logger *slog.Logger, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("mock chat backend listening", "addr", addr, "chunkDelay", serverCfg.ChunkDelay)
	return runServer(ctx, srv)
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
