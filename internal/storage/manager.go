// Package storage provides the top-level StorageManager over the SQLite store.
package storage

import (
	"fmt"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/storage/sqlite"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	store     *sqlite.Store
	accounts  interfaces.AccountStorage
	positions interfaces.PositionStorage
	logger    *common.Logger
}

// NewManager opens the database configured in config.Storage.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := sqlite.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite store: %w", err)
	}

	logger.Info().Str("path", config.Storage.Path).Msg("Storage manager initialized")

	return &Manager{
		store:     store,
		accounts:  sqlite.NewAccountStorage(store, logger),
		positions: sqlite.NewPositionStorage(store, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) AccountStorage() interfaces.AccountStorage {
	return m.accounts
}

func (m *Manager) PositionStorage() interfaces.PositionStorage {
	return m.positions
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.store.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)
