package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	"github.com/AlibekovAA/snapfeed/internal/common/config"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/db"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/media/boltstore"
	"github.com/AlibekovAA/snapfeed/internal/media/s3store"
	postrepo "github.com/AlibekovAA/snapfeed/internal/post/repository"
)

const serviceName = "snapfeed"

// App holds the process-wide dependencies shared by every handler. Bolt is
// set only with the bolt storage driver, which also serves /media.
type App struct {
	Log         *logger.Logger
	Config      config.AppConfig
	Pool        *pgxpool.Pool
	Accounts    accountrepo.Repository
	Posts       postrepo.Repository
	Store       media.Store
	Bolt        *boltstore.Store
	Clock       clock.Clock
	IDGenerator commoncrypto.IDGenerator
	Hasher      commoncrypto.PasswordHasher
}

func NewApp(ctx context.Context) (*App, error) {
	log, err := NewLogger(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := db.NewPool(ctx, log, cfg.DatabaseURL, serviceName)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := migrate(ctx, log, cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, err
		}
	}
	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)

	app := &App{
		Log:         log,
		Config:      cfg,
		Pool:        pool,
		Accounts:    accountrepo.NewPgRepository(pool),
		Posts:       postrepo.NewPgRepository(pool),
		Clock:       clock.NewRealClock(),
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Hasher:      commoncrypto.NewBcryptHasher(cfg.BcryptCost),
	}

	if err := app.initializeStorage(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.WithFields(ctx, logger.Fields{
		"storage": app.Store.Backend(),
		"action":  "bootstrap_complete",
	}).Info("application dependencies initialized")
	return app, nil
}

func (a *App) initializeStorage(ctx context.Context) error {
	switch a.Config.Storage.Driver {
	case config.StorageDriverS3:
		store, err := s3store.New(ctx, a.Config.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		a.Store = store
	case config.StorageDriverBolt:
		store, err := boltstore.New(a.Config.Storage.BoltPath, a.Config.Storage.PublicBaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize bolt storage: %w", err)
		}
		a.Store = store
		a.Bolt = store
	default:
		return fmt.Errorf("unknown storage driver %q", a.Config.Storage.Driver)
	}
	return nil
}

// Close releases storage and the database pool. The logger is closed last
// by the caller.
func (a *App) Close() {
	if a.Bolt != nil {
		if err := a.Bolt.Close(); err != nil {
			a.Log.Errorf("failed to close bolt storage: %v", err)
		}
	}
	a.Pool.Close()
}

func migrate(ctx context.Context, log *logger.Logger, databaseURL string) error {
	migrator, err := db.NewMigrator(databaseURL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func initializeLogger(name string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), name, os.Getenv("LOG_LEVEL"))
}

// NewLogger loads .env and then builds the logger from LOG_DIR and
// LOG_LEVEL, so both may be set in the file. A .env load failure is
// reported through the new logger.
func NewLogger(name string) (*logger.Logger, error) {
	dotEnvErr := config.LoadDotEnv()

	log, err := initializeLogger(name)
	if err != nil {
		return nil, err
	}
	if dotEnvErr != nil {
		log.Warnf("%v", dotEnvErr)
	}
	return log, nil
}
