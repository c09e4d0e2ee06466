package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// positionRepository implements domain.PositionRepository
type positionRepository struct {
	db *DB
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, accountID, fundID int64) (*domain.AccountFundPosition, error) {
	query := `
		SELECT id, account_id, fund_id, share_balance, cost_basis, updated_at
		FROM account_fund_positions
		WHERE account_id = $1 AND fund_id = $2
	`
	var (
		p               domain.AccountFundPosition
		balStr, costStr string
	)
	err := r.db.QueryRowContext(ctx, query, accountID, fundID).
		Scan(&p.ID, &p.AccountID, &p.FundID, &balStr, &costStr, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("position account %d fund %d: %w", accountID, fundID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	if p.ShareBalance, err = decimal.NewFromString(balStr); err != nil {
		return nil, fmt.Errorf("failed to parse share_balance: %w", err)
	}
	if p.CostBasis, err = decimal.NewFromString(costStr); err != nil {
		return nil, fmt.Errorf("failed to parse cost_basis: %w", err)
	}
	return &p, nil
}

func (r *positionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.AccountFundPosition, error) {
	query := `
		SELECT id, account_id, fund_id, share_balance, cost_basis, updated_at
		FROM account_fund_positions
		WHERE account_id = $1
		ORDER BY fund_id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*domain.AccountFundPosition, 0)
	for rows.Next() {
		var (
			p               domain.AccountFundPosition
			balStr, costStr string
		)
		if err := rows.Scan(&p.ID, &p.AccountID, &p.FundID, &balStr, &costStr, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if p.ShareBalance, err = decimal.NewFromString(balStr); err != nil {
			return nil, fmt.Errorf("failed to parse share_balance: %w", err)
		}
		if p.CostBasis, err = decimal.NewFromString(costStr); err != nil {
			return nil, fmt.Errorf("failed to parse cost_basis: %w", err)
		}
		positions = append(positions, &p)
	}
	return positions, rows.Err()
}
