package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/models"
)

type positionStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPositionStorage creates a new PositionStorage backed by SQLite.
func NewPositionStorage(store *Store, logger *common.Logger) *positionStorage {
	return &positionStorage{store: store, logger: logger}
}

func (s *positionStorage) ListPositions(ctx context.Context) ([]models.Position, error) {
	var rows []positionModel
	if err := s.store.db.WithContext(ctx).Preload("Account").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	positions := make([]models.Position, len(rows))
	for i, r := range rows {
		positions[i] = toPosition(r)
	}
	return positions, nil
}

func (s *positionStorage) SavePosition(ctx context.Context, position *models.Position) error {
	position.Symbol = strings.ToUpper(strings.TrimSpace(position.Symbol))
	if err := position.Validate(); err != nil {
		return err
	}

	db := s.store.db.WithContext(ctx)

	var account accountModel
	if err := db.First(&account, position.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("account %d: %w", position.AccountID, ErrNotFound)
		}
		return fmt.Errorf("failed to load account %d: %w", position.AccountID, err)
	}

	row := fromPosition(position)
	if err := db.Omit("Account").Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	position.ID = row.ID
	position.Account = toAccount(account)

	s.logger.Debug().Uint("id", row.ID).Str("symbol", row.Symbol).Msg("Position saved")
	return nil
}

func (s *positionStorage) DeletePosition(ctx context.Context, id uint) error {
	res := s.store.db.WithContext(ctx).Delete(&positionModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete position %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("position %d: %w", id, ErrNotFound)
	}
	s.logger.Debug().Uint("id", id).Msg("Position deleted")
	return nil
}

var _ interfaces.PositionStorage = (*positionStorage)(nil)
