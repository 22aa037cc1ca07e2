package sqlite

import (
	"time"

	"github.com/bobmcallan/portfoliology/internal/models"
)

type accountModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	AccountType string `gorm:"size:100;not null"`
	CashBalance float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (accountModel) TableName() string { return "accounts" }

type positionModel struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:100"`
	Symbol    string  `gorm:"size:10;not null;index"`
	Shares    float64 `gorm:"not null"`
	CostBasis float64
	AccountID uint         `gorm:"not null;index"`
	Account   accountModel `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (positionModel) TableName() string { return "positions" }

func toAccount(m accountModel) models.Account {
	return models.Account{
		ID:          m.ID,
		Name:        m.Name,
		Type:        models.AccountType(m.AccountType),
		CashBalance: m.CashBalance,
	}
}

func fromAccount(a *models.Account) accountModel {
	return accountModel{
		ID:          a.ID,
		Name:        a.Name,
		AccountType: string(a.Type),
		CashBalance: a.CashBalance,
	}
}

func toPosition(m positionModel) models.Position {
	return models.Position{
		ID:        m.ID,
		Name:      m.Name,
		Symbol:    m.Symbol,
		Shares:    m.Shares,
		CostBasis: m.CostBasis,
		AccountID: m.AccountID,
		Account:   toAccount(m.Account),
	}
}

func fromPosition(p *models.Position) positionModel {
	return positionModel{
		ID:        p.ID,
		Name:      p.Name,
		Symbol:    p.Symbol,
		Shares:    p.Shares,
		CostBasis: p.CostBasis,
		AccountID: p.AccountID,
	}
}
