package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashShareReportRow joins one cash movement to its linked fund share
// movement (if any), denormalized with the owning user and account. Rows are
// ordered by effective date ascending, ties broken by cash movement id.
type CashShareReportRow struct {
	UserID           int64
	UserFullName     string
	AccountID        int64
	AccountNumber    string
	CashMovementID   int64
	CashMovementType CashMovementType
	EffectiveDate    time.Time
	Amount           decimal.Decimal

	// Linked fund share movement fields; unset when the cash movement has
	// no linked share movement.
	FundShareMovementID *int64
	SharesChange        decimal.NullDecimal
	SharePrice          decimal.NullDecimal
}

// ReportRange optionally bounds a report by effective date (inclusive).
type ReportRange struct {
	From *time.Time
	To   *time.Time
}

// FundPositionSummary is one fund position inside an account summary, valued
// at the fund's latest recorded NAV.
type FundPositionSummary struct {
	FundID           int64
	FundName         string
	Currency         string
	ShareBalance     decimal.Decimal
	CostBasis        decimal.Decimal
	LatestShareValue decimal.NullDecimal
	MarketValue      decimal.NullDecimal
}

// AccountSummary aggregates an account's cash totals and current positions.
type AccountSummary struct {
	AccountID        int64
	AccountNumber    string
	UserFullName     string
	UserEmail        string
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TotalFees        decimal.Decimal
	NetInvested      decimal.Decimal
	Positions        []FundPositionSummary
}

// FundPerformance is a fund's NAV series in chronological order with its
// latest share value.
type FundPerformance struct {
	FundID           int64
	FundName         string
	Currency         string
	LatestShareValue decimal.NullDecimal
	Navs             []*FundNav
}
