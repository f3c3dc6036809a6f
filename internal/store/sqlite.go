package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-trellis/trellis/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB

	migrateMu sync.Mutex
	migrated  bool
}

// New opens the database and runs the schema migration.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// A single connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY on concurrent writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.EnsureMigrated(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// EnsureMigrated creates or updates the schema. Only the first successful
// call does any work, so background tasks may call it before every run.
func (s *Store) EnsureMigrated(ctx context.Context) error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	if s.migrated {
		return nil
	}
	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.Merchant{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	s.migrated = true
	return nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isDuplicateKey reports unique-constraint violations. Drivers that do not
// translate their errors are matched on their message.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
