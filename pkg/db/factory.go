package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectivityProbeTimeout = 5 * time.Second

// Factory is the single source of truth for reaching the relational store.
// It is constructed once at startup and handed to request-serving code; the
// pool and session producer are built lazily, exactly once, on first use.
type Factory struct {
	backend Backend
	logg    *logger.Logger

	engineOnce sync.Once
	engine     *gorm.DB
	engineErr  error

	sessionOnce sync.Once
	sessionFn   SessionFunc
	sessionErr  error
}

// SessionFunc produces a fresh scoped session bound to the shared pool.
type SessionFunc func(ctx context.Context) *gorm.DB

// NewFactory resolves the backend variant from configuration and returns a
// factory for it. No connections are opened yet.
func NewFactory(cfg config.DBConfig, logg *logger.Logger) (*Factory, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	return &Factory{backend: backend, logg: logg}, nil
}

// Backend returns the resolved backend variant.
func (f *Factory) Backend() Backend {
	return f.backend
}

// Provision runs the backend's create-database-if-missing step. Failures here
// are fatal to startup; the process must not serve traffic against a store it
// could not provision.
func (f *Factory) Provision(ctx context.Context) error {
	return f.backend.EnsureDatabase(ctx)
}

// Engine returns the shared GORM connection pool, building it on first call.
// Safe for concurrent first access; every caller observes the same pool.
func (f *Factory) Engine() (*gorm.DB, error) {
	f.engineOnce.Do(func() {
		f.engine, f.engineErr = f.openEngine()
	})
	return f.engine, f.engineErr
}

func (f *Factory) openEngine() (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(f.backend.Dialector(), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", f.backend.Name(), err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	applyPoolSettings(sqlDB, f.backend.PoolSettings())

	if f.logg != nil {
		ctx := f.logg.WithField(context.Background(), "driver", f.backend.Name())
		f.logg.Info(ctx, "database connection established")
	}
	return conn, nil
}

func applyPoolSettings(sqlDB *sql.DB, settings PoolSettings) {
	if settings.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(settings.ConnMaxLifetime)
	}
	if settings.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(settings.ConnMaxIdleTime)
	}
}

// SessionFactory returns the session producer bound to the engine, building
// it exactly once. Each produced session is independent and scoped to the
// caller's context.
func (f *Factory) SessionFactory() (SessionFunc, error) {
	f.sessionOnce.Do(func() {
		engine, err := f.Engine()
		if err != nil {
			f.sessionErr = err
			return
		}
		f.sessionFn = func(ctx context.Context) *gorm.DB {
			return engine.WithContext(ctx).Session(&gorm.Session{})
		}
	})
	return f.sessionFn, f.sessionErr
}

// WithSession checks one connection out of the pool, runs fn on it, and
// returns the connection on every exit path, including panics inside fn.
func (f *Factory) WithSession(ctx context.Context, fn func(session *gorm.DB) error) error {
	engine, err := f.Engine()
	if err != nil {
		return err
	}
	return engine.WithContext(ctx).Connection(fn)
}

// WithTx executes fn inside a transaction, rolling back on error or panic.
func (f *Factory) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	engine, err := f.Engine()
	if err != nil {
		return err
	}

	tx := engine.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// VerifyConnectivity executes a trivial round-trip query and reports the
// result as a boolean so startup logic decides whether to abort.
func (f *Factory) VerifyConnectivity(ctx context.Context) bool {
	engine, err := f.Engine()
	if err != nil {
		if f.logg != nil {
			f.logg.Error(ctx, "database connectivity check failed", err)
		}
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, connectivityProbeTimeout)
	defer cancel()

	var one int
	if err := engine.WithContext(probeCtx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		if f.logg != nil {
			f.logg.Error(ctx, "database connectivity check failed", err)
		}
		return false
	}
	return one == 1
}

// Migrate creates or updates the schema for the identity entities.
func (f *Factory) Migrate(ctx context.Context) error {
	engine, err := f.Engine()
	if err != nil {
		return err
	}
	if err := engine.WithContext(ctx).AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close shuts down the pooled connections. A factory whose engine was never
// built closes trivially.
func (f *Factory) Close() error {
	if f.engine == nil {
		return nil
	}
	sqlDB, err := f.engine.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
