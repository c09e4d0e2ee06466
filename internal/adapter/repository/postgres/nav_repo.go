package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// navRepository implements domain.NavRepository
type navRepository struct {
	db *DB
}

// NewNavRepository creates a new NAV repository
func NewNavRepository(db *DB) domain.NavRepository {
	return &navRepository{db: db}
}

// Append inserts a NAV row together with its audit entry. Appends for the
// same fund serialize on the fund row lock; the unique (fund_id, as_of_date)
// constraint remains the correctness backstop should the lock be bypassed.
func (r *navRepository) Append(ctx context.Context, nav *domain.FundNav, actorUserID *int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Serialize same-fund appends so the previous/origin lookups and the
	// insert see a stable history.
	var fundID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM funds WHERE id = $1 FOR UPDATE`, nav.FundID).Scan(&fundID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("fund %d: %w", nav.FundID, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to lock fund: %w", mapError(err))
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM fund_navs WHERE fund_id = $1 AND as_of_date = $2)`,
		nav.FundID, nav.AsOfDate,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check nav date: %w", err)
	}
	if exists {
		return fmt.Errorf("fund %d nav at %s: %w",
			nav.FundID, nav.AsOfDate.Format("2006-01-02"), domain.ErrDuplicateNavDate)
	}

	previous, err := r.findPreviousTx(ctx, tx, nav.FundID, nav.AsOfDate)
	if err != nil {
		return err
	}
	origin, err := r.findOriginTx(ctx, tx, nav.FundID)
	if err != nil {
		return err
	}
	domain.ComputeNavDeltas(nav, previous, origin)

	insertQuery := `
		INSERT INTO fund_navs
			(fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, insertQuery,
		nav.FundID,
		nav.AsOfDate,
		nav.FundAccumulated.String(),
		nav.SharesAmount.String(),
		nav.ShareValue.String(),
		nullDecimalParam(nav.DeltaPrevious),
		nullDecimalParam(nav.DeltaSinceOrigin),
	).Scan(&nav.ID, &nav.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert nav: %w", mapNavError(err))
	}

	entry := &domain.AuditLogEntry{
		ActorUserID: actorUserID,
		Action:      domain.AuditActionCreate,
		EntityType:  domain.EntityFundNav,
		EntityID:    &nav.ID,
		After:       domain.NavSnapshot(*nav),
	}
	if err := insertAuditTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapNavError(err))
	}
	return nil
}

// RecomputeDeltas rewrites every delta of the fund's history in date order.
// This is the explicit maintenance pass run after backfilled inserts; each
// changed row gets its own audit entry with before/after snapshots.
func (r *navRepository) RecomputeDeltas(ctx context.Context, fundID int64, actorUserID *int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM funds WHERE id = $1 FOR UPDATE`, fundID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("fund %d: %w", fundID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to lock fund: %w", mapError(err))
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at
		FROM fund_navs
		WHERE fund_id = $1
		ORDER BY as_of_date ASC
	`, fundID)
	if err != nil {
		return 0, fmt.Errorf("failed to list navs: %w", err)
	}
	navs, err := scanNavRows(rows)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i, nav := range navs {
		before := *nav

		var previous, origin *domain.FundNav
		if i > 0 {
			previous = navs[i-1]
			origin = navs[0]
		}
		domain.ComputeNavDeltas(nav, previous, origin)

		if nullDecimalEqual(before.DeltaPrevious, nav.DeltaPrevious) &&
			nullDecimalEqual(before.DeltaSinceOrigin, nav.DeltaSinceOrigin) {
			continue
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE fund_navs SET delta_previous = $1, delta_since_origin = $2 WHERE id = $3`,
			nullDecimalParam(nav.DeltaPrevious),
			nullDecimalParam(nav.DeltaSinceOrigin),
			nav.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update nav deltas: %w", mapError(err))
		}

		entry := &domain.AuditLogEntry{
			ActorUserID: actorUserID,
			Action:      domain.AuditActionRecompute,
			EntityType:  domain.EntityFundNav,
			EntityID:    &nav.ID,
			Before:      domain.NavSnapshot(before),
			After:       domain.NavSnapshot(*nav),
		}
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return 0, err
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", mapError(err))
	}
	return updated, nil
}

func (r *navRepository) ListByFund(ctx context.Context, fundID int64, limit int) ([]*domain.FundNav, error) {
	query := `
		SELECT id, fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at
		FROM fund_navs
		WHERE fund_id = $1
		ORDER BY as_of_date DESC
	`
	args := []any{fundID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list navs: %w", err)
	}
	navs, err := scanNavRows(rows)
	if err != nil {
		return nil, err
	}

	// Most-recent-first for the limit, chronological for the caller.
	for i, j := 0, len(navs)-1; i < j; i, j = i+1, j-1 {
		navs[i], navs[j] = navs[j], navs[i]
	}
	return navs, nil
}

func (r *navRepository) LatestPerFund(ctx context.Context) (map[int64]*domain.FundNav, error) {
	query := `
		SELECT DISTINCT ON (fund_id)
			id, fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at
		FROM fund_navs
		ORDER BY fund_id, as_of_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest navs: %w", err)
	}
	navs, err := scanNavRows(rows)
	if err != nil {
		return nil, err
	}
	latest := make(map[int64]*domain.FundNav, len(navs))
	for _, nav := range navs {
		latest[nav.FundID] = nav
	}
	return latest, nil
}

// findPreviousTx returns the row with the greatest as_of_date strictly
// before the given date, or nil when the date has no predecessor.
func (r *navRepository) findPreviousTx(ctx context.Context, tx *sql.Tx, fundID int64, before time.Time) (*domain.FundNav, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at
		FROM fund_navs
		WHERE fund_id = $1 AND as_of_date < $2
		ORDER BY as_of_date DESC
		LIMIT 1
	`, fundID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous nav: %w", err)
	}
	navs, err := scanNavRows(rows)
	if err != nil {
		return nil, err
	}
	if len(navs) == 0 {
		return nil, nil
	}
	return navs[0], nil
}

// findOriginTx returns the fund's earliest row, or nil for an empty history.
func (r *navRepository) findOriginTx(ctx context.Context, tx *sql.Tx, fundID int64) (*domain.FundNav, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at
		FROM fund_navs
		WHERE fund_id = $1
		ORDER BY as_of_date ASC
		LIMIT 1
	`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get origin nav: %w", err)
	}
	navs, err := scanNavRows(rows)
	if err != nil {
		return nil, err
	}
	if len(navs) == 0 {
		return nil, nil
	}
	return navs[0], nil
}

func scanNavRows(rows *sql.Rows) ([]*domain.FundNav, error) {
	defer rows.Close()

	navs := make([]*domain.FundNav, 0)
	for rows.Next() {
		var (
			nav                           domain.FundNav
			accumStr, sharesStr, valueStr string
			deltaPrev, deltaOrig          sql.NullString
		)
		err := rows.Scan(&nav.ID, &nav.FundID, &nav.AsOfDate, &accumStr, &sharesStr,
			&valueStr, &deltaPrev, &deltaOrig, &nav.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nav: %w", err)
		}
		if nav.FundAccumulated, err = decimal.NewFromString(accumStr); err != nil {
			return nil, fmt.Errorf("failed to parse fund_accumulated: %w", err)
		}
		if nav.SharesAmount, err = decimal.NewFromString(sharesStr); err != nil {
			return nil, fmt.Errorf("failed to parse shares_amount: %w", err)
		}
		if nav.ShareValue, err = decimal.NewFromString(valueStr); err != nil {
			return nil, fmt.Errorf("failed to parse share_value: %w", err)
		}
		if nav.DeltaPrevious, err = parseNullDecimal(deltaPrev); err != nil {
			return nil, fmt.Errorf("failed to parse delta_previous: %w", err)
		}
		if nav.DeltaSinceOrigin, err = parseNullDecimal(deltaOrig); err != nil {
			return nil, fmt.Errorf("failed to parse delta_since_origin: %w", err)
		}
		navs = append(navs, &nav)
	}
	return navs, rows.Err()
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func nullDecimalParam(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}

// mapNavError narrows a unique violation on the (fund, date) constraint to
// ErrDuplicateNavDate before falling back to the generic mapping.
func mapNavError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation &&
		strings.Contains(pqErr.Constraint, "fund_id_as_of_date") {
		return fmt.Errorf("%s: %w", pqErr.Message, domain.ErrDuplicateNavDate)
	}
	return mapError(err)
}
