package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DeltaPrecision is the decimal precision of relative NAV deltas.
const DeltaPrecision int32 = 6

// FundNav is one point of a fund's net-asset-value history. Rows are
// append-only and unique per (fund, as_of_date).
type FundNav struct {
	ID               int64
	FundID           int64
	AsOfDate         time.Time
	FundAccumulated  decimal.Decimal // total fund value
	SharesAmount     decimal.Decimal // shares outstanding
	ShareValue       decimal.Decimal // FundAccumulated / SharesAmount, 6 dp
	DeltaPrevious    decimal.NullDecimal
	DeltaSinceOrigin decimal.NullDecimal
	CreatedAt        time.Time
}

// ComputeShareValue derives the per-share value of a NAV point. Fails with
// ErrInvalidNav when shares outstanding are not positive.
func ComputeShareValue(fundAccumulated, sharesAmount decimal.Decimal) (decimal.Decimal, error) {
	if sharesAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("shares amount %s: %w", sharesAmount, ErrInvalidNav)
	}
	return fundAccumulated.Div(sharesAmount).RoundBank(SharePrecision), nil
}

// RelativeDelta computes (value - base) / base.
func RelativeDelta(value, base decimal.Decimal) decimal.Decimal {
	return value.Sub(base).Div(base).RoundBank(DeltaPrecision)
}

// ComputeNavDeltas fills DeltaPrevious and DeltaSinceOrigin of nav from its
// chronological neighbours within the same fund:
//
//   - previous is the row with the greatest as_of_date strictly before
//     nav.AsOfDate, or nil when nav is the fund's first point in time;
//   - origin is the fund's earliest row, or nil when nav itself is (or will
//     become) the origin.
//
// A delta is left unset when its reference row is absent.
func ComputeNavDeltas(nav *FundNav, previous, origin *FundNav) {
	nav.DeltaPrevious = decimal.NullDecimal{}
	nav.DeltaSinceOrigin = decimal.NullDecimal{}

	if previous != nil {
		nav.DeltaPrevious = decimal.NullDecimal{
			Decimal: RelativeDelta(nav.ShareValue, previous.ShareValue),
			Valid:   true,
		}
	}
	if origin != nil && origin.AsOfDate.Before(nav.AsOfDate) {
		nav.DeltaSinceOrigin = decimal.NullDecimal{
			Decimal: RelativeDelta(nav.ShareValue, origin.ShareValue),
			Valid:   true,
		}
	}
}
