package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angeloszaimis/ollama-proxy/config"
	"github.com/angeloszaimis/ollama-proxy/internal/auth"
	"github.com/angeloszaimis/ollama-proxy/internal/forward"
	"github.com/angeloszaimis/ollama-proxy/internal/handler"
	"github.com/angeloszaimis/ollama-proxy/internal/httpserver"
	"github.com/angeloszaimis/ollama-proxy/internal/metrics"
	"github.com/angeloszaimis/ollama-proxy/internal/registry"
	"github.com/angeloszaimis/ollama-proxy/pkg/logger"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := buildRegistry(cfg, log)

	if !cfg.AuthEnabled() {
		log.Warn("API_TOKEN not set! Authentication is disabled.")
	}

	authenticator := auth.New(cfg.APIToken, log)
	engine := forward.NewEngine(log)

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	proxyHandler := handler.NewProxyHandler(log, reg, authenticator, engine, collector)

	srv, err := httpserver.New(cfg.Addr(), setupRouter(proxyHandler, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Starting Ollama proxy server",
		slog.String("addr", cfg.Addr()),
		slog.Bool("debug", cfg.Debug))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting proxy server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildRegistry(cfg *config.Config, log *slog.Logger) *registry.Registry {
	entries, skipped := registry.Parse(cfg.Instances)

	for _, token := range skipped {
		log.Warn("Skipping malformed instance entry", slog.String("entry", token))
	}

	reg := registry.New(entries)

	log.Info("Configured backends", slog.Any("instances", reg.Names()))
	log.Info("Default backend", slog.String("url", reg.Default()))

	return reg
}
