package interfaces

import (
	"context"

	"github.com/bobmcallan/portfoliology/internal/models"
)

// AccountStorage persists brokerage accounts
type AccountStorage interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	SaveAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id uint) error
}

// PositionStorage persists positions
type PositionStorage interface {
	// ListPositions returns every position with its account joined, ordered by ID.
	ListPositions(ctx context.Context) ([]models.Position, error)
	SavePosition(ctx context.Context, position *models.Position) error
	DeletePosition(ctx context.Context, id uint) error
}

// StorageManager groups the storage areas and owns their lifecycle
type StorageManager interface {
	AccountStorage() AccountStorage
	PositionStorage() PositionStorage
	Close() error
}
