package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PoolSettings describes how the shared connection pool is bounded.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Backend hides the differences between the embedded and client-server store
// variants behind one surface. The factory resolves exactly one Backend from
// configuration at construction time.
type Backend interface {
	// Name identifies the variant (config.DriverSQLite or config.DriverPostgres).
	Name() string
	// Dialector produces the GORM dialector for the target database.
	Dialector() gorm.Dialector
	// PoolSettings returns the pool bounds appropriate for the variant.
	PoolSettings() PoolSettings
	// EnsureDatabase provisions the target database when it does not exist
	// yet. Idempotent; a no-op when the database is already present.
	EnsureDatabase(ctx context.Context) error
}

// NewBackend resolves the backend variant selected by configuration.
func NewBackend(cfg config.DBConfig) (Backend, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverSQLite:
		return &sqliteBackend{cfg: cfg}, nil
	case config.DriverPostgres:
		return &postgresBackend{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
}

// sqliteBackend keeps the store in a local file. It runs on a single shared
// connection so the embedded engine never sees concurrent writers.
type sqliteBackend struct {
	cfg config.DBConfig
}

func (b *sqliteBackend) Name() string {
	return config.DriverSQLite
}

func (b *sqliteBackend) path() string {
	return filepath.Join(b.cfg.SQLiteDir, b.cfg.SQLiteFile)
}

func (b *sqliteBackend) Dialector() gorm.Dialector {
	return sqlite.Open(b.path() + "?_busy_timeout=5000&_foreign_keys=on")
}

func (b *sqliteBackend) PoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: b.cfg.ConnMaxLifetime,
		ConnMaxIdleTime: b.cfg.ConnMaxIdleTime,
	}
}

// EnsureDatabase creates the database directory; the file itself appears
// lazily on first write.
func (b *sqliteBackend) EnsureDatabase(_ context.Context) error {
	if err := os.MkdirAll(b.cfg.SQLiteDir, 0o755); err != nil {
		return fmt.Errorf("creating sqlite dir %s: %w", b.cfg.SQLiteDir, err)
	}
	return nil
}

// postgresBackend reaches a client-server store over a bounded pool.
type postgresBackend struct {
	cfg config.DBConfig
}

func (b *postgresBackend) Name() string {
	return config.DriverPostgres
}

func (b *postgresBackend) Dialector() gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  b.cfg.PostgresDSN(),
		PreferSimpleProtocol: true,
	})
}

func (b *postgresBackend) PoolSettings() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    b.cfg.PoolSize + b.cfg.MaxOverflow,
		MaxIdleConns:    b.cfg.PoolSize,
		ConnMaxLifetime: b.cfg.ConnMaxLifetime,
		ConnMaxIdleTime: b.cfg.ConnMaxIdleTime,
	}
}

// EnsureDatabase opens a side connection to the server's maintenance database,
// checks the system catalog for the target name, and issues CREATE DATABASE
// when absent.
func (b *postgresBackend) EnsureDatabase(ctx context.Context) error {
	if b.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.ConnectTimeout)
		defer cancel()
	}

	admin, err := sql.Open("postgres", b.cfg.PostgresAdminDSN())
	if err != nil {
		return fmt.Errorf("opening admin connection: %w", err)
	}
	defer admin.Close()

	var exists bool
	err = admin.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1)",
		b.cfg.Name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking for database %s: %w", b.cfg.Name, err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot be parameterized; quote the identifier instead.
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(b.cfg.Name)); err != nil {
		return fmt.Errorf("creating database %s: %w", b.cfg.Name, err)
	}
	return nil
}
