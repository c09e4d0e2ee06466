package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CashMovementType represents the type of cash movement
type CashMovementType string

const (
	CashMovementDeposit    CashMovementType = "deposit"
	CashMovementWithdrawal CashMovementType = "withdrawal"
	CashMovementFee        CashMovementType = "fee"
)

// FundShareMovementType represents the type of fund share movement
type FundShareMovementType string

const (
	FundShareSubscription FundShareMovementType = "subscription"
	FundShareRedemption   FundShareMovementType = "redemption"
)

// LinkTolerance is the rounding tolerance when comparing a fund share
// movement's total amount against its linked cash movement's amount.
var LinkTolerance = decimal.NewFromFloat(0.01)

// LinkRef is an optional reference to the cash movement that funded (or
// received the proceeds of) a fund share movement. The zero value means
// "no link", distinguishing it from a broken or dangling id.
type LinkRef struct {
	id  int64
	set bool
}

// LinkTo returns a LinkRef pointing at the given cash movement id
func LinkTo(cashMovementID int64) LinkRef {
	return LinkRef{id: cashMovementID, set: true}
}

// NoLink returns the empty LinkRef
func NoLink() LinkRef {
	return LinkRef{}
}

// Set reports whether the reference points at a cash movement
func (l LinkRef) Set() bool { return l.set }

// ID returns the referenced cash movement id. Only meaningful when Set.
func (l LinkRef) ID() int64 { return l.id }

// MarshalJSON encodes the reference as the cash movement id, or null when
// there is no link.
func (l LinkRef) MarshalJSON() ([]byte, error) {
	if !l.set {
		return []byte("null"), nil
	}
	return json.Marshal(l.id)
}

// UnmarshalJSON decodes either null or a cash movement id
func (l *LinkRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = LinkRef{}
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	*l = LinkTo(id)
	return nil
}

// CashMovement is an account-level cash event. Append-only.
type CashMovement struct {
	ID            int64
	AccountID     int64
	Type          CashMovementType
	Amount        decimal.Decimal // positive, 2-decimal precision
	Currency      string
	EffectiveDate time.Time
	CreatedAt     time.Time
}

// Validate ensures the cash movement adheres to domain rules
func (m *CashMovement) Validate() error {
	switch m.Type {
	case CashMovementDeposit, CashMovementWithdrawal, CashMovementFee:
	default:
		return fmt.Errorf("cash movement type must be deposit, withdrawal or fee: %w", ErrValidation)
	}
	if m.AccountID == 0 {
		return fmt.Errorf("cash movement must belong to an account: %w", ErrValidation)
	}
	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("cash movement amount must be positive: %w", ErrValidation)
	}
	if len(m.Currency) != 3 {
		return fmt.Errorf("cash movement currency must be a 3-letter code: %w", ErrValidation)
	}
	if m.EffectiveDate.IsZero() {
		return fmt.Errorf("cash movement effective date is required: %w", ErrValidation)
	}
	return nil
}

// FundShareMovement is an account/fund-level share event. SharesChange is
// stored signed: positive for subscriptions, negative for redemptions, so
// that a position's share balance is always the plain running sum of its
// movements. TotalAmount is always positive. Append-only.
type FundShareMovement struct {
	ID            int64
	AccountID     int64
	FundID        int64
	Type          FundShareMovementType
	SharesChange  decimal.Decimal // signed, 6-decimal precision
	SharePrice    decimal.Decimal // positive, 6-decimal precision
	TotalAmount   decimal.Decimal // positive, 2-decimal precision
	EffectiveDate time.Time
	Link          LinkRef
	CreatedAt     time.Time
}

// NewFundShareMovement builds a movement from boundary inputs, where shares
// are given as a positive magnitude regardless of direction. The sign and the
// total amount are derived here so every caller shares one convention.
func NewFundShareMovement(
	accountID, fundID int64,
	movementType FundShareMovementType,
	shares, sharePrice decimal.Decimal,
	effectiveDate time.Time,
	link LinkRef,
) (*FundShareMovement, error) {
	if shares.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("shares change must be a positive magnitude: %w", ErrValidation)
	}
	if sharePrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("share price must be positive: %w", ErrValidation)
	}

	sharesChange := shares.RoundBank(SharePrecision)
	if movementType == FundShareRedemption {
		sharesChange = sharesChange.Neg()
	}

	m := &FundShareMovement{
		AccountID:     accountID,
		FundID:        fundID,
		Type:          movementType,
		SharesChange:  sharesChange,
		SharePrice:    sharePrice.RoundBank(SharePrecision),
		TotalAmount:   shares.Mul(sharePrice).RoundBank(MoneyPrecision),
		EffectiveDate: effectiveDate,
		Link:          link,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate ensures the fund share movement adheres to domain rules
func (m *FundShareMovement) Validate() error {
	if m.AccountID == 0 {
		return fmt.Errorf("fund share movement must belong to an account: %w", ErrValidation)
	}
	if m.FundID == 0 {
		return fmt.Errorf("fund share movement must reference a fund: %w", ErrValidation)
	}
	switch m.Type {
	case FundShareSubscription:
		if m.SharesChange.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("subscription shares change must be positive: %w", ErrValidation)
		}
	case FundShareRedemption:
		if m.SharesChange.GreaterThanOrEqual(decimal.Zero) {
			return fmt.Errorf("redemption shares change must be negative: %w", ErrValidation)
		}
	default:
		return fmt.Errorf("fund share movement type must be subscription or redemption: %w", ErrValidation)
	}
	if m.SharePrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("share price must be positive: %w", ErrValidation)
	}
	if m.EffectiveDate.IsZero() {
		return fmt.Errorf("fund share movement effective date is required: %w", ErrValidation)
	}

	expected := m.SharesChange.Abs().Mul(m.SharePrice)
	if m.TotalAmount.Sub(expected).Abs().GreaterThan(LinkTolerance) {
		return fmt.Errorf("total amount %s does not equal shares x price %s: %w",
			m.TotalAmount, expected, ErrValidation)
	}
	return nil
}

// CheckLink validates the movement against the cash movement it references
// and the currency of its fund. Returns ErrLinkMismatch or
// ErrCurrencyMismatch; nil when the movement carries no link.
func (m *FundShareMovement) CheckLink(cash *CashMovement, fundCurrency string) error {
	if !m.Link.Set() {
		return nil
	}
	if cash == nil {
		return fmt.Errorf("cash movement %d: %w", m.Link.ID(), ErrNotFound)
	}
	if cash.Currency != fundCurrency {
		return fmt.Errorf("cash movement currency %s vs fund currency %s: %w",
			cash.Currency, fundCurrency, ErrCurrencyMismatch)
	}
	if m.TotalAmount.Sub(cash.Amount).Abs().GreaterThan(LinkTolerance) {
		return fmt.Errorf("total amount %s vs linked cash amount %s: %w",
			m.TotalAmount, cash.Amount, ErrLinkMismatch)
	}
	return nil
}
