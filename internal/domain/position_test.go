package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMovement(t *testing.T, accountID, fundID int64, movementType FundShareMovementType, shares, price string) *FundShareMovement {
	t.Helper()
	m, err := NewFundShareMovement(
		accountID, fundID,
		movementType,
		decimal.RequireFromString(shares),
		decimal.RequireFromString(price),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		NoLink(),
	)
	require.NoError(t, err)
	return m
}

func TestApply_SubscriptionAccumulatesBalanceAndCost(t *testing.T) {
	pos := EmptyPosition(1, 2)

	err := pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "100", "10.00"))
	require.NoError(t, err)

	assert.True(t, pos.ShareBalance.Equal(decimal.RequireFromString("100")))
	assert.True(t, pos.CostBasis.Equal(decimal.RequireFromString("1000.00")))

	err = pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "50", "12.00"))
	require.NoError(t, err)

	assert.True(t, pos.ShareBalance.Equal(decimal.RequireFromString("150")))
	assert.True(t, pos.CostBasis.Equal(decimal.RequireFromString("1600.00")))
}

func TestApply_RedemptionReleasesWeightedAverageCost(t *testing.T) {
	pos := EmptyPosition(1, 2)
	require.NoError(t, pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "100", "10.00")))

	// Redeeming half the shares releases half the cost basis, regardless of
	// the redemption price.
	err := pos.Apply(mustMovement(t, 1, 2, FundShareRedemption, "50", "12.00"))
	require.NoError(t, err)

	assert.True(t, pos.ShareBalance.Equal(decimal.RequireFromString("50")),
		"share balance: %s", pos.ShareBalance)
	assert.True(t, pos.CostBasis.Equal(decimal.RequireFromString("500.00")),
		"cost basis: %s", pos.CostBasis)
}

func TestApply_FullRedemptionZeroesThePosition(t *testing.T) {
	pos := EmptyPosition(1, 2)
	require.NoError(t, pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "33.333333", "3.00")))

	err := pos.Apply(mustMovement(t, 1, 2, FundShareRedemption, "33.333333", "4.50"))
	require.NoError(t, err)

	assert.True(t, pos.ShareBalance.IsZero(), "share balance: %s", pos.ShareBalance)
	assert.True(t, pos.CostBasis.IsZero(), "cost basis: %s", pos.CostBasis)
}

func TestApply_InsufficientSharesLeavesPositionUnchanged(t *testing.T) {
	pos := EmptyPosition(1, 2)
	require.NoError(t, pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "10", "10.00")))

	err := pos.Apply(mustMovement(t, 1, 2, FundShareRedemption, "10.000001", "10.00"))
	assert.ErrorIs(t, err, ErrInsufficientShares)

	assert.True(t, pos.ShareBalance.Equal(decimal.RequireFromString("10")))
	assert.True(t, pos.CostBasis.Equal(decimal.RequireFromString("100.00")))
}

func TestApply_RejectsMovementForAnotherPair(t *testing.T) {
	pos := EmptyPosition(1, 2)

	err := pos.Apply(mustMovement(t, 1, 3, FundShareSubscription, "10", "10.00"))
	assert.Error(t, err)
	assert.True(t, pos.ShareBalance.IsZero())
}

func TestApply_CostBasisRoundsHalfToEven(t *testing.T) {
	pos := EmptyPosition(1, 2)
	require.NoError(t, pos.Apply(mustMovement(t, 1, 2, FundShareSubscription, "3", "10.00")))

	// Releasing a third of 30.00 leaves 20.00 exactly; releasing a third of
	// an odd cent amount exercises the banker's rounding path.
	require.NoError(t, pos.Apply(mustMovement(t, 1, 2, FundShareRedemption, "1", "10.00")))
	assert.True(t, pos.CostBasis.Equal(decimal.RequireFromString("20.00")),
		"cost basis: %s", pos.CostBasis)

	pos2 := EmptyPosition(1, 2)
	require.NoError(t, pos2.Apply(mustMovement(t, 1, 2, FundShareSubscription, "4", "0.0050")))
	// Cost basis 0.02 total; redeeming one of four shares releases 0.005,
	// leaving 0.015 which rounds half-to-even to 0.02.
	require.NoError(t, pos2.Apply(mustMovement(t, 1, 2, FundShareRedemption, "1", "0.0050")))
	assert.True(t, pos2.CostBasis.Equal(decimal.RequireFromString("0.02")),
		"cost basis: %s", pos2.CostBasis)
}

func TestEmptyPosition_IsSentinel(t *testing.T) {
	pos := EmptyPosition(7, 8)
	assert.True(t, pos.Empty())
	assert.True(t, pos.ShareBalance.IsZero())
	assert.True(t, pos.CostBasis.IsZero())

	pos.ID = 42
	assert.False(t, pos.Empty())
}
