// Package main runs the CreatorHub terminal client.
package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atinyakov/creatorhub/internal/client/api"
	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/client/shell"
	"github.com/atinyakov/creatorhub/internal/client/storage"
	"github.com/atinyakov/creatorhub/internal/config"
	"github.com/atinyakov/creatorhub/internal/db"
	"github.com/atinyakov/creatorhub/internal/logger"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// sessionSweepInterval is how often expired sessions are purged from SQLite.
const sessionSweepInterval = time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "creatorhub:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := config.ParseClient(os.Args[1:])
	if err != nil {
		return err
	}
	if opts.ShowVersion {
		fmt.Printf("CreatorHub Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return nil
	}

	log := logger.New()
	if err := log.Init(opts.LogLevel, opts.LogFile); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, closeTokens, err := openTokenStore(ctx, opts, log.Log)
	if err != nil {
		return err
	}
	defer closeTokens()

	httpClient, err := api.NewHTTPClient(opts.CAFile, opts.RequestTimeout)
	if err != nil {
		return err
	}

	var store *session.Store
	client := api.New(opts.APIURL,
		api.WithHTTPClient(httpClient),
		api.WithTokenSource(api.TokenFunc(func() string { return store.Token() })),
		api.WithLogger(log.Log),
	)
	store = session.New(client, tokens, session.WithLogger(log.Log))

	app, err := shell.New(store, client, shell.WithLogger(log.Log))
	if err != nil {
		return err
	}
	if opts.HealthInterval > 0 {
		go app.WatchHealth(ctx, opts.HealthInterval)
	}

	log.Log.Info("client started", zap.String("api_url", opts.APIURL), zap.String("token_store", opts.TokenStore))
	return app.Run(ctx)
}

// openTokenStore returns the configured token store and a function that
// releases it.
func openTokenStore(ctx context.Context, opts *config.ClientOptions, log *zap.Logger) (storage.TokenStore, func(), error) {
	if opts.TokenStore != "sqlite" {
		return storage.NewFileTokenStore(opts.TokenPath), func() {}, nil
	}

	sqlDB, err := db.InitSQLite(ctx, opts.TokenPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session database: %w", err)
	}
	db.StartExpiredSessionCleaner(ctx, sqlDB, sessionSweepInterval, log)
	return storage.NewSQLiteTokenStore(sqlDB), func() { closeDB(sqlDB, log) }, nil
}

func closeDB(sqlDB *sql.DB, log *zap.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Warn("close session database", zap.Error(err))
	}
}
