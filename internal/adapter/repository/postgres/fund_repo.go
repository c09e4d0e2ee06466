package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// fundRepository implements domain.FundRepository
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundRepository {
	return &fundRepository{db: db}
}

func (r *fundRepository) FindByID(ctx context.Context, id int64) (*domain.Fund, error) {
	query := `
		SELECT id, name, currency, created_at
		FROM funds
		WHERE id = $1
	`
	var f domain.Fund
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.Currency, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fund %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return &f, nil
}

func (r *fundRepository) FindAll(ctx context.Context) ([]*domain.Fund, error) {
	query := `
		SELECT id, name, currency, created_at
		FROM funds
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	funds := make([]*domain.Fund, 0)
	for rows.Next() {
		var f domain.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.Currency, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, &f)
	}
	return funds, rows.Err()
}

func (r *fundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO funds (name, currency)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, fund.Name, fund.Currency).
		Scan(&fund.ID, &fund.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert fund: %w", mapError(err))
	}
	return nil
}
