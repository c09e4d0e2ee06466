package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Decimal precision of the two quantity families. Rounding is banker's
// (round-half-to-even) and is applied once per field per operation.
const (
	SharePrecision int32 = 6
	MoneyPrecision int32 = 2
)

// AccountFundPosition holds the current share balance and cost basis of one
// (account, fund) pair. ShareBalance is always the running sum of the signed
// share changes of the pair's movements; CostBasis is the acquisition cost
// currently attributed to the held shares. Rows are created lazily on the
// first movement and mutated only through Apply.
type AccountFundPosition struct {
	ID           int64
	AccountID    int64
	FundID       int64
	ShareBalance decimal.Decimal // non-negative, 6-decimal precision
	CostBasis    decimal.Decimal // non-negative, 2-decimal precision
	UpdatedAt    time.Time
}

// EmptyPosition is the sentinel returned when no movements exist yet for the
// pair: zero balance, zero cost, zero row id.
func EmptyPosition(accountID, fundID int64) *AccountFundPosition {
	return &AccountFundPosition{
		AccountID:    accountID,
		FundID:       fundID,
		ShareBalance: decimal.Zero,
		CostBasis:    decimal.Zero,
	}
}

// Empty reports whether the position is the lazy-creation sentinel, i.e. it
// has never been persisted.
func (p *AccountFundPosition) Empty() bool {
	return p.ID == 0
}

// Apply folds a fund share movement into the position.
//
// Subscriptions add the share change to the balance and the movement's total
// amount to the cost basis. Redemptions release cost using the weighted
// average method: the fraction of the balance being redeemed releases the
// same fraction of the cost basis, independent of the redemption price.
func (p *AccountFundPosition) Apply(m *FundShareMovement) error {
	if m.AccountID != p.AccountID || m.FundID != p.FundID {
		return fmt.Errorf("movement for account %d fund %d applied to position of account %d fund %d",
			m.AccountID, m.FundID, p.AccountID, p.FundID)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	switch m.Type {
	case FundShareSubscription:
		p.ShareBalance = p.ShareBalance.Add(m.SharesChange).RoundBank(SharePrecision)
		p.CostBasis = p.CostBasis.Add(m.TotalAmount).RoundBank(MoneyPrecision)

	case FundShareRedemption:
		redeemed := m.SharesChange.Abs()
		if redeemed.GreaterThan(p.ShareBalance) {
			return fmt.Errorf("redeem %s of %s held: %w",
				redeemed, p.ShareBalance, ErrInsufficientShares)
		}
		released := p.CostBasis.Mul(redeemed).Div(p.ShareBalance)
		p.CostBasis = p.CostBasis.Sub(released).RoundBank(MoneyPrecision)
		p.ShareBalance = p.ShareBalance.Sub(redeemed).RoundBank(SharePrecision)
	}

	if p.CostBasis.IsNegative() {
		// Guard for the invariant; unreachable with valid movements.
		p.CostBasis = decimal.Zero
	}
	return nil
}
