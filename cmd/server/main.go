// Package main runs the CreatorHub development backend: an in-memory
// implementation of the API the client talks to, served over HTTP or HTTPS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/creatorhub/internal/config"
	"github.com/atinyakov/creatorhub/internal/logger"
	"github.com/atinyakov/creatorhub/internal/repository"
	"github.com/atinyakov/creatorhub/internal/server/handler/http"
	"github.com/atinyakov/creatorhub/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "creatorhub-server:", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Repositories are in memory; data lives as long as the process.
	authRepo := repository.NewMemoryAuthRepository()
	catalogRepo := repository.NewMemoryCatalogRepository()

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, options.JWTSecret, options.TokenTTL)
	catalogService := service.NewCatalogService(catalogRepo, authRepo)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService, Log: zapLogger}
	creatorHandler := &http.CreatorHandler{Catalog: catalogService, Log: zapLogger}
	serviceHandler := &http.ServiceHandler{Catalog: catalogService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authService, authHandler, creatorHandler, serviceHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if options.TLSCert != "" {
			// Load server TLS certificate and key.
			cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
			if err != nil {
				errCh <- fmt.Errorf("load server TLS cert/key: %w", err)
				return
			}
			server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Addr))
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
