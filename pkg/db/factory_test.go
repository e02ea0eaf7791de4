package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/angelmondragon/authsys-backend/pkg/config"
	"github.com/angelmondragon/authsys-backend/pkg/db/models"
	"github.com/angelmondragon/authsys-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func testDBConfig(t *testing.T) config.DBConfig {
	t.Helper()
	return config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLiteDir:  t.TempDir(),
		SQLiteFile: "app.db",
	}
}

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	factory, err := NewFactory(testDBConfig(t), nil)
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	t.Cleanup(func() {
		if err := factory.Close(); err != nil {
			t.Errorf("close factory: %v", err)
		}
	})
	if err := factory.Provision(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := factory.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return factory
}

func TestNewBackendRejectsUnknownDriver(t *testing.T) {
	if _, err := NewBackend(config.DBConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected unknown driver to be rejected")
	}
}

func TestSQLiteProvisionCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "database")
	factory, err := NewFactory(config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLiteDir:  dir,
		SQLiteFile: "app.db",
	}, nil)
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}

	if err := factory.Provision(context.Background()); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected database dir to exist: %v", err)
	}

	// Provision is idempotent.
	if err := factory.Provision(context.Background()); err != nil {
		t.Fatalf("second provision: %v", err)
	}
}

func TestEngineBuiltExactlyOnceUnderConcurrency(t *testing.T) {
	factory := newTestFactory(t)

	const callers = 16
	engines := make([]*gorm.DB, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			engine, err := factory.Engine()
			if err != nil {
				t.Errorf("engine: %v", err)
				return
			}
			engines[slot] = engine
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if engines[i] != engines[0] {
			t.Fatalf("caller %d observed a different pool", i)
		}
	}
}

func TestSessionFactoryBuiltExactlyOnce(t *testing.T) {
	factory := newTestFactory(t)

	first, err := factory.SessionFactory()
	if err != nil {
		t.Fatalf("session factory: %v", err)
	}
	second, err := factory.SessionFactory()
	if err != nil {
		t.Fatalf("session factory: %v", err)
	}

	ctx := context.Background()
	var one int
	if err := first(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("first session unusable: %v", err)
	}
	if err := second(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("second session unusable: %v", err)
	}
}

func TestWithSessionReleasesOnError(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	boom := errors.New("boom")
	if err := factory.WithSession(ctx, func(session *gorm.DB) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// The pool must still hand out connections after the error path.
	if err := factory.WithSession(ctx, func(session *gorm.DB) error {
		var one int
		return session.Raw("SELECT 1").Scan(&one).Error
	}); err != nil {
		t.Fatalf("pool unusable after error release: %v", err)
	}
}

func TestVerifyConnectivity(t *testing.T) {
	factory := newTestFactory(t)
	if !factory.VerifyConnectivity(context.Background()) {
		t.Fatal("expected connectivity check to pass")
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	newUser := func(suffix string) *models.User {
		return &models.User{
			ID:       uuid.New(),
			Email:    "tx-" + suffix + "@x.com",
			Username: "tx-" + suffix,
			Role:     enums.UserRoleUser,
			Status:   enums.UserStatusActive,
			IsActive: true,
		}
	}

	if err := factory.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(newUser("committed")).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	err := factory.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(newUser("rolled")).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}

	engine, err := factory.Engine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	var count int64
	if err := engine.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestMigrateEnforcesUniqueEmail(t *testing.T) {
	factory := newTestFactory(t)
	engine, err := factory.Engine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    "dup@x.com",
		Username: "dup",
		Role:     enums.UserRoleUser,
		Status:   enums.UserStatusActive,
	}
	if err := engine.Create(user).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	clone := &models.User{
		ID:       uuid.New(),
		Email:    "dup@x.com",
		Username: "dup2",
		Role:     enums.UserRoleUser,
		Status:   enums.UserStatusActive,
	}
	if err := engine.Create(clone).Error; err == nil {
		t.Fatal("expected unique index on email to reject duplicate")
	}
}
