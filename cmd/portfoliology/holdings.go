package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/portfoliology/internal/app"
	"github.com/bobmcallan/portfoliology/internal/models"
	"github.com/bobmcallan/portfoliology/internal/services/report"
)

// accountsCmd lists accounts and the positions they hold.
type accountsCmd struct{}

func (*accountsCmd) Name() string             { return "accounts" }
func (*accountsCmd) Synopsis() string         { return "list accounts and their positions" }
func (*accountsCmd) Usage() string            { return "portfoliology accounts\n" }
func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	m, _, err := openStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	accounts, err := m.AccountStorage().ListAccounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	positions, err := m.PositionStorage().ListPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	byAccount := make(map[uint][]models.Position)
	for _, p := range positions {
		byAccount[p.AccountID] = append(byAccount[p.AccountID], p)
	}

	for _, a := range accounts {
		fmt.Fprintf(stdout, "%d  %s  [%s]  cash %s\n", a.ID, a.Name, a.Type.Label(), report.FormatMoney(a.CashBalance))
		for _, p := range byAccount[a.ID] {
			fmt.Fprintf(stdout, "    %-4d %-10s %12.4f shares  cost %s  %s\n",
				p.ID, p.Symbol, p.Shares, report.FormatMoney(p.CostBasis), p.Name)
		}
	}
	return subcommands.ExitSuccess
}

// addAccountCmd holds the flags for the 'add-account' subcommand.
type addAccountCmd struct {
	name        string
	accountType string
	cash        float64
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create a brokerage account" }
func (*addAccountCmd) Usage() string {
	return `portfoliology add-account -name <name> [-type TRADITIONAL|ROTH|STANDARD] [-cash <amount>]
`
}

func (c *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.accountType, "type", string(models.AccountTypeStandard), "account type")
	f.Float64Var(&c.cash, "cash", 0, "cash balance")
}

func (c *addAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.name) == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	accountType, err := models.ParseAccountType(c.accountType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	m, _, err := openStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	account := &models.Account{Name: c.name, Type: accountType, CashBalance: c.cash}
	if err := m.AccountStorage().SaveAccount(ctx, account); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving account: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "created account %d (%s)\n", account.ID, account.Name)
	return subcommands.ExitSuccess
}

// addPositionCmd holds the flags for the 'add-position' subcommand.
type addPositionCmd struct {
	accountID uint
	symbol    string
	name      string
	shares    float64
	costBasis float64
}

func (*addPositionCmd) Name() string     { return "add-position" }
func (*addPositionCmd) Synopsis() string { return "add an equity position to an account" }
func (*addPositionCmd) Usage() string {
	return `portfoliology add-position -account <id> -symbol <ticker> -shares <n> -cost <total> [-name <name>]

  -cost is the total amount paid for the position, not the per-share price.
`
}

func (c *addPositionCmd) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.accountID, "account", 0, "account ID")
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol")
	f.StringVar(&c.name, "name", "", "display name")
	f.Float64Var(&c.shares, "shares", 0, "number of shares")
	f.Float64Var(&c.costBasis, "cost", 0, "total cost basis")
}

func (c *addPositionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.accountID == 0 || strings.TrimSpace(c.symbol) == "" {
		fmt.Fprintln(os.Stderr, "Error: -account and -symbol are required")
		return subcommands.ExitUsageError
	}

	m, _, err := openStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	position := &models.Position{
		Name:      c.name,
		Symbol:    c.symbol,
		Shares:    c.shares,
		CostBasis: c.costBasis,
		AccountID: c.accountID,
	}
	if err := m.PositionStorage().SavePosition(ctx, position); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving position: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "added %s to %s (position %d)\n", position.Symbol, position.Account.Name, position.ID)
	return subcommands.ExitSuccess
}

// importCmd seeds accounts and positions from a JSON file.
type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import accounts and positions from a JSON file" }
func (*importCmd) Usage() string {
	return `portfoliology import <holdings.json>

  The file holds {"accounts": [{"name", "account_type", "cash_balance",
  "positions": [{"name", "symbol", "shares", "cost_basis"}]}]}. Existing
  accounts are matched by name and symbols already held are skipped.
`
}
func (*importCmd) SetFlags(f *flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected one holdings file")
		return subcommands.ExitUsageError
	}

	m, logger, err := openStorage()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer m.Close()

	imported, skipped, err := app.ImportHoldingsFromFile(ctx, m, logger, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "imported %d positions, skipped %d\n", imported, skipped)
	return subcommands.ExitSuccess
}
