package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bobmcallan/portfoliology/internal/common"
	"github.com/bobmcallan/portfoliology/internal/interfaces"
	"github.com/bobmcallan/portfoliology/internal/models"
)

type importHoldingsFile struct {
	Accounts []importAccount `json:"accounts"`
}

type importAccount struct {
	Name        string           `json:"name"`
	Type        string           `json:"account_type"`
	CashBalance float64          `json:"cash_balance"`
	Positions   []importPosition `json:"positions"`
}

type importPosition struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Shares    float64 `json:"shares"`
	CostBasis float64 `json:"cost_basis"`
}

// ImportHoldingsFromFile reads a holdings JSON file and seeds accounts and positions.
// Accounts are matched by name; an existing account keeps its cash balance and
// only receives positions whose symbol it does not already hold.
// Returns (imported positions, skipped positions, error).
func ImportHoldingsFromFile(ctx context.Context, store interfaces.StorageManager, logger *common.Logger, filePath string) (int, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read holdings file %s: %w", filePath, err)
	}

	var file importHoldingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse holdings file %s: %w", filePath, err)
	}

	accounts, err := store.AccountStorage().ListAccounts(ctx)
	if err != nil {
		return 0, 0, err
	}
	byName := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}

	positions, err := store.PositionStorage().ListPositions(ctx)
	if err != nil {
		return 0, 0, err
	}
	held := make(map[string]bool, len(positions))
	for _, p := range positions {
		held[holdingKey(p.AccountID, p.Symbol)] = true
	}

	imported, skipped := 0, 0
	for _, ia := range file.Accounts {
		account, ok := byName[ia.Name]
		if !ok {
			accountType, err := models.ParseAccountType(ia.Type)
			if err != nil {
				logger.Warn().Err(err).Str("account", ia.Name).Msg("Skipping account during import")
				skipped += len(ia.Positions)
				continue
			}
			account = models.Account{Name: ia.Name, Type: accountType, CashBalance: ia.CashBalance}
			if err := store.AccountStorage().SaveAccount(ctx, &account); err != nil {
				logger.Warn().Err(err).Str("account", ia.Name).Msg("Failed to save account during import")
				skipped += len(ia.Positions)
				continue
			}
			byName[account.Name] = account
			logger.Info().Str("account", account.Name).Str("type", string(account.Type)).Msg("Account imported")
		}

		for _, ip := range ia.Positions {
			key := holdingKey(account.ID, ip.Symbol)
			if held[key] {
				skipped++
				continue
			}
			pos := &models.Position{
				Name:      ip.Name,
				Symbol:    ip.Symbol,
				Shares:    ip.Shares,
				CostBasis: ip.CostBasis,
				AccountID: account.ID,
			}
			if err := store.PositionStorage().SavePosition(ctx, pos); err != nil {
				logger.Warn().Err(err).Str("symbol", ip.Symbol).Msg("Failed to save position during import")
				skipped++
				continue
			}
			held[key] = true
			imported++
		}
	}

	logger.Info().Int("imported", imported).Int("skipped", skipped).Msg("Holdings import complete")
	return imported, skipped, nil
}

func holdingKey(accountID uint, symbol string) string {
	return fmt.Sprintf("%d/%s", accountID, strings.ToUpper(strings.TrimSpace(symbol)))
}
