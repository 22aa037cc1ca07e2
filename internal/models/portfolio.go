// Package models defines data structures for Portfoliology
package models

import (
	"fmt"
	"strings"
)

// AccountType classifies a brokerage account for tax treatment.
type AccountType string

const (
	AccountTypeTraditional AccountType = "TRADITIONAL" // tax-deferred
	AccountTypeRoth        AccountType = "ROTH"        // tax-free
	AccountTypeStandard    AccountType = "STANDARD"    // taxable
)

// AccountTypes lists every supported account type in display order.
var AccountTypes = []AccountType{AccountTypeTraditional, AccountTypeRoth, AccountTypeStandard}

// Label returns the human readable account type.
func (t AccountType) Label() string {
	switch t {
	case AccountTypeTraditional:
		return "Traditional IRA or 401(k)"
	case AccountTypeRoth:
		return "Roth IRA or 401(k)"
	case AccountTypeStandard:
		return "Standard Brokerage"
	default:
		return string(t)
	}
}

// ParseAccountType accepts the enum value in any case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AccountTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Account is a brokerage account holding positions and cash.
type Account struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"account_type"`
	CashBalance float64     `json:"cash_balance"`
}

// Position is an equity holding inside an account.
type Position struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Shares    float64 `json:"shares"`
	CostBasis float64 `json:"cost_basis"`
	AccountID uint    `json:"account_id"`
	Account   Account `json:"account"`
}

const (
	MaxNameLength   = 100
	MaxSymbolLength = 10
)

// Validate checks the field constraints of a position.
func (p *Position) Validate() error {
	switch {
	case strings.TrimSpace(p.Symbol) == "":
		return fmt.Errorf("position symbol is required")
	case len(p.Symbol) > MaxSymbolLength:
		return fmt.Errorf("position symbol %q exceeds %d characters", p.Symbol, MaxSymbolLength)
	case len(p.Name) > MaxNameLength:
		return fmt.Errorf("position name exceeds %d characters", MaxNameLength)
	case p.Shares < 0:
		return fmt.Errorf("position %s has negative shares %.4f", p.Symbol, p.Shares)
	}
	return nil
}

// Quote is the latest market data for one symbol.
type Quote struct {
	Symbol        string   `json:"symbol"`
	LatestPrice   float64  `json:"latest_price"`
	Change        float64  `json:"change"`
	ChangePercent Optional `json:"change_percent"` // fraction, e.g. 0.0123; absent when the provider sends null
}

// PositionRecord joins a position with its quote at refresh time.
// One record is produced per position per refresh and never modified.
type PositionRecord struct {
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	CostBasis    float64 `json:"cost_basis"`
	LastPrice    float64 `json:"last_price"`
	DayChange    float64 `json:"day_change"`
	DayChangePct float64 `json:"day_change_pct"`
	Account      string  `json:"account"`
}

// NewPositionRecord builds the record for pos from q. The provider reports
// changePercent as a fraction; the record holds a percentage with an
// absent value read as zero.
func NewPositionRecord(pos Position, q Quote) PositionRecord {
	return PositionRecord{
		Name:         pos.Name,
		Symbol:       pos.Symbol,
		Shares:       pos.Shares,
		CostBasis:    pos.CostBasis,
		LastPrice:    q.LatestPrice,
		DayChange:    q.Change,
		DayChangePct: 100 * q.ChangePercent.Or(0),
		Account:      pos.Account.Name,
	}
}
