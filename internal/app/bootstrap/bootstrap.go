package bootstrap

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"htmlgo/app/internal/auth"
	"htmlgo/app/internal/config"
	"htmlgo/app/internal/db"
	applog "htmlgo/app/internal/log"
	"htmlgo/app/internal/pages"
)

// Dependencies are the pre-built inputs to Build.
type Dependencies struct {
	Config    *config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

// Result holds the composed application components. Cleanup releases the
// database and flushes pending error reports.
type Result struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Database *gorm.DB
	Store    *db.Store
	Pages    *pages.Repository
	Guard    *auth.Guard
	Cleanup  func() error
}

// Build composes the persistence and access-control layers from the provided
// dependencies.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	if deps.Config == nil {
		return Result{}, eris.New("config is required")
	}

	conn, err := db.Open(db.Options{
		Path:        deps.Config.DBPath,
		BusyTimeout: deps.Config.DBBusyTimeout,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "opening database")
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := db.Close(conn); closeErr != nil && deps.Logger != nil {
			deps.Logger.WithError(closeErr).Error("closing database after bootstrap failure")
		}
		return Result{}, wrapper
	}

	store, err := db.NewStore(conn, db.RetryPolicy{
		MaxAttempts:    deps.Config.DBMaxRetries,
		InitialBackoff: deps.Config.DBRetryBackoff,
	}, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating store"))
	}

	if err := pages.Migrate(ctx, store, deps.Logger); err != nil {
		return closeOnError(eris.Wrap(err, "running pages migrations"))
	}

	repository, err := pages.NewRepository(store, deps.Logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating pages repository"))
	}

	guard := auth.NewGuard(auth.Options{
		Enabled:   deps.Config.AuthEnabled,
		LoginPath: deps.Config.LoginPath,
		Logger:    deps.Logger,
	})

	cleanup := func() error {
		return db.Close(conn)
	}

	return Result{
		Config:   deps.Config,
		Logger:   deps.Logger,
		Database: conn,
		Store:    store,
		Pages:    repository,
		Guard:    guard,
		Cleanup:  cleanup,
	}, nil
}

// Start loads environment configuration (including a .env file when present),
// initialises logging and error reporting, and composes the application.
func Start(ctx context.Context) (Result, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return Result{}, eris.Wrap(err, "loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return Result{}, eris.Wrap(err, "initialising logger")
	}

	hub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "initialising sentry")
	}

	result, err := Build(ctx, Dependencies{Config: cfg, Logger: logger, SentryHub: hub})
	if err != nil {
		flush()
		return Result{}, err
	}

	closeDB := result.Cleanup
	result.Cleanup = func() error {
		defer flush()
		return closeDB()
	}

	return result, nil
}
