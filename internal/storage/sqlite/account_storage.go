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

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when another account already uses the name.
	ErrDuplicateName = errors.New("account name already in use")
)

type accountStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAccountStorage creates a new AccountStorage backed by SQLite.
func NewAccountStorage(store *Store, logger *common.Logger) *accountStorage {
	return &accountStorage{store: store, logger: logger}
}

func (s *accountStorage) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var rows []accountModel
	if err := s.store.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := make([]models.Account, len(rows))
	for i, r := range rows {
		accounts[i] = toAccount(r)
	}
	return accounts, nil
}

func (s *accountStorage) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var row accountModel
	err := s.store.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	a := toAccount(row)
	return &a, nil
}

func (s *accountStorage) SaveAccount(ctx context.Context, account *models.Account) error {
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("account name is required")
	}
	if len(account.Name) > models.MaxNameLength {
		return fmt.Errorf("account name exceeds %d characters", models.MaxNameLength)
	}
	if _, err := models.ParseAccountType(string(account.Type)); err != nil {
		return err
	}

	db := s.store.db.WithContext(ctx)

	// Cash balances are reported per account name.
	var clashes int64
	if err := db.Model(&accountModel{}).Where("name = ? AND id <> ?", account.Name, account.ID).Count(&clashes).Error; err != nil {
		return fmt.Errorf("failed to check account name: %w", err)
	}
	if clashes > 0 {
		return fmt.Errorf("account %q: %w", account.Name, ErrDuplicateName)
	}

	row := fromAccount(account)
	if err := db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	account.ID = row.ID
	s.logger.Debug().Uint("id", row.ID).Str("name", row.Name).Msg("Account saved")
	return nil
}

func (s *accountStorage) DeleteAccount(ctx context.Context, id uint) error {
	err := s.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", id).Delete(&positionModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&accountModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account %d: %w", id, err)
	}
	s.logger.Debug().Uint("id", id).Msg("Account deleted")
	return nil
}

var _ interfaces.AccountStorage = (*accountStorage)(nil)
