package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// movementRepository implements domain.MovementRepository
type movementRepository struct {
	db *DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *DB) domain.MovementRepository {
	return &movementRepository{db: db}
}

// CreateCashMovement appends a cash movement and its audit entry in one
// database transaction.
func (r *movementRepository) CreateCashMovement(ctx context.Context, m *domain.CashMovement, actorUserID *int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO cash_movements (account_id, type, amount, currency, effective_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery,
		m.AccountID,
		string(m.Type),
		m.Amount.String(),
		m.Currency,
		m.EffectiveDate,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cash movement: %w", mapError(err))
	}

	entry := &domain.AuditLogEntry{
		ActorUserID: actorUserID,
		Action:      domain.AuditActionCreate,
		EntityType:  domain.EntityCashMovement,
		EntityID:    &m.ID,
		After:       domain.CashSnapshot(*m),
	}
	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return nil
}

// CreateFundShareMovement appends a fund share movement and folds it into
// the (account, fund) position inside one transaction. The position row is
// locked with FOR UPDATE NOWAIT so two movements racing on the same balance
// surface domain.ErrLockContention instead of silently queueing; the caller
// owns the retry policy. The audit entry snapshots the position before and
// after the movement was applied.
func (r *movementRepository) CreateFundShareMovement(ctx context.Context, m *domain.FundShareMovement, actorUserID *int64) (*domain.AccountFundPosition, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pos, created, err := lockPositionTx(ctx, tx, m.AccountID, m.FundID)
	if err != nil {
		return nil, err
	}

	var before *domain.Snapshot
	if !created {
		before = domain.PositionSnapshot(*pos)
	}

	if err := pos.Apply(m); err != nil {
		return nil, err
	}

	var link any
	if m.Link.Set() {
		link = m.Link.ID()
	}
	insertQuery := `
		INSERT INTO fund_share_movements
			(account_id, fund_id, cash_movement_id, type, shares_change, share_price, total_amount, effective_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery,
		m.AccountID,
		m.FundID,
		link,
		string(m.Type),
		m.SharesChange.String(),
		m.SharePrice.String(),
		m.TotalAmount.String(),
		m.EffectiveDate,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fund share movement: %w", mapError(err))
	}

	updateQuery := `
		UPDATE account_fund_positions
		SET share_balance = $1, cost_basis = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`
	err = tx.QueryRowContext(ctx, updateQuery,
		pos.ShareBalance.String(),
		pos.CostBasis.String(),
		pos.ID,
	).Scan(&pos.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", mapError(err))
	}

	entry := &domain.AuditLogEntry{
		ActorUserID: actorUserID,
		Action:      domain.AuditActionCreate,
		EntityType:  domain.EntityFundShareMovement,
		EntityID:    &m.ID,
		Before:      before,
		After:       domain.PositionSnapshot(*pos),
	}
	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return pos, nil
}

// lockPositionTx acquires an exclusive lock on the position row of the pair,
// creating the row with zero balances on the pair's first movement. The
// returned created flag reports lazy creation; a freshly inserted row is
// already locked by the surrounding transaction.
func lockPositionTx(ctx context.Context, tx *sql.Tx, accountID, fundID int64) (*domain.AccountFundPosition, bool, error) {
	selectQuery := `
		SELECT id, account_id, fund_id, share_balance, cost_basis, updated_at
		FROM account_fund_positions
		WHERE account_id = $1 AND fund_id = $2
		FOR UPDATE NOWAIT
	`
	pos, err := scanPosition(tx.QueryRowContext(ctx, selectQuery, accountID, fundID))
	if err == nil {
		return pos, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	insertQuery := `
		INSERT INTO account_fund_positions (account_id, fund_id, share_balance, cost_basis)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (account_id, fund_id) DO NOTHING
		RETURNING id, account_id, fund_id, share_balance, cost_basis, updated_at
	`
	pos, err = scanPosition(tx.QueryRowContext(ctx, insertQuery, accountID, fundID))
	if err == nil {
		return pos, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	// A concurrent transaction created the row between our select and
	// insert; it holds the lock until it commits.
	return nil, false, fmt.Errorf("position account %d fund %d: %w", accountID, fundID, domain.ErrLockContention)
}

func scanPosition(row *sql.Row) (*domain.AccountFundPosition, error) {
	var (
		p                     domain.AccountFundPosition
		shareBalance, costStr string
	)
	err := row.Scan(&p.ID, &p.AccountID, &p.FundID, &shareBalance, &costStr, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("position: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get position: %w", mapError(err))
	}
	if p.ShareBalance, err = decimal.NewFromString(shareBalance); err != nil {
		return nil, fmt.Errorf("failed to parse share_balance: %w", err)
	}
	if p.CostBasis, err = decimal.NewFromString(costStr); err != nil {
		return nil, fmt.Errorf("failed to parse cost_basis: %w", err)
	}
	return &p, nil
}

func (r *movementRepository) FindCashMovementByID(ctx context.Context, id int64) (*domain.CashMovement, error) {
	query := `
		SELECT id, account_id, type, amount, currency, effective_date, created_at
		FROM cash_movements
		WHERE id = $1
	`
	m, err := scanCashMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("cash movement %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return m, nil
}

func (r *movementRepository) FindFundShareMovementByID(ctx context.Context, id int64) (*domain.FundShareMovement, error) {
	query := `
		SELECT id, account_id, fund_id, cash_movement_id, type, shares_change, share_price, total_amount, effective_date, created_at
		FROM fund_share_movements
		WHERE id = $1
	`
	m, err := scanFundShareMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("fund share movement %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return m, nil
}

func (r *movementRepository) ListCashMovementsByAccount(ctx context.Context, accountID int64) ([]*domain.CashMovement, error) {
	query := `
		SELECT id, account_id, type, amount, currency, effective_date, created_at
		FROM cash_movements
		WHERE account_id = $1
		ORDER BY effective_date DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}
	defer rows.Close()

	movements := make([]*domain.CashMovement, 0)
	for rows.Next() {
		m, err := scanCashMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *movementRepository) ListFundShareMovementsByAccount(ctx context.Context, accountID int64) ([]*domain.FundShareMovement, error) {
	query := `
		SELECT id, account_id, fund_id, cash_movement_id, type, shares_change, share_price, total_amount, effective_date, created_at
		FROM fund_share_movements
		WHERE account_id = $1
		ORDER BY effective_date DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund share movements: %w", err)
	}
	defer rows.Close()

	movements := make([]*domain.FundShareMovement, 0)
	for rows.Next() {
		m, err := scanFundShareMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanCashMovement(row scanner) (*domain.CashMovement, error) {
	var (
		m         domain.CashMovement
		amountStr string
	)
	err := row.Scan(&m.ID, &m.AccountID, &m.Type, &amountStr, &m.Currency, &m.EffectiveDate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan cash movement: %w", err)
	}
	if m.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	return &m, nil
}

func scanFundShareMovement(row scanner) (*domain.FundShareMovement, error) {
	var (
		m                             domain.FundShareMovement
		cashMovementID                sql.NullInt64
		sharesStr, priceStr, totalStr string
	)
	err := row.Scan(&m.ID, &m.AccountID, &m.FundID, &cashMovementID, &m.Type,
		&sharesStr, &priceStr, &totalStr, &m.EffectiveDate, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan fund share movement: %w", err)
	}
	if cashMovementID.Valid {
		m.Link = domain.LinkTo(cashMovementID.Int64)
	}
	if m.SharesChange, err = decimal.NewFromString(sharesStr); err != nil {
		return nil, fmt.Errorf("failed to parse shares_change: %w", err)
	}
	if m.SharePrice, err = decimal.NewFromString(priceStr); err != nil {
		return nil, fmt.Errorf("failed to parse share_price: %w", err)
	}
	if m.TotalAmount, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_amount: %w", err)
	}
	return &m, nil
}
