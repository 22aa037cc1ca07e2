// Package sqlite provides gorm + SQLite storage for accounts and positions.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bobmcallan/portfoliology/internal/common"
)

// Store wraps a gorm SQLite connection.
type Store struct {
	db     *gorm.DB
	logger *common.Logger
}

// NewStore opens (creating if needed) the SQLite database at path and
// migrates the schema.
func NewStore(log *common.Logger, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite store: database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&accountModel{}, &positionModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; a small pool is enough for concurrent reads.
	sqlDB.SetMaxOpenConns(4)

	log.Debug().Str("path", path).Msg("SQLite store opened")

	return &Store{db: db, logger: log}, nil
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
