package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// reportRepository implements domain.ReportRepository
type reportRepository struct {
	db *DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *DB) domain.ReportRepository {
	return &reportRepository{db: db}
}

// readTxOptions gives report queries a consistent snapshot across the joined
// tables without blocking writers.
var readTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// CashShareReport left-joins every cash movement to the fund share movement
// it funded (at most one), denormalized with the owning user and account.
func (r *reportRepository) CashShareReport(ctx context.Context, dateRange domain.ReportRange) ([]*domain.CashShareReportRow, error) {
	tx, err := r.db.BeginTx(ctx, readTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin report transaction: %w", err)
	}
	defer tx.Rollback()

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if dateRange.From != nil {
		args = append(args, *dateRange.From)
		conditions = append(conditions, fmt.Sprintf("cm.effective_date >= $%d", len(args)))
	}
	if dateRange.To != nil {
		args = append(args, *dateRange.To)
		conditions = append(conditions, fmt.Sprintf("cm.effective_date <= $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			au.id AS user_id,
			au.full_name AS user_full_name,
			a.id AS account_id,
			a.account_number,
			cm.id AS cash_movement_id,
			cm.type AS cash_movement_type,
			cm.effective_date,
			cm.amount,
			fsm.id AS fund_share_movement_id,
			fsm.shares_change,
			fsm.share_price
		FROM app_users au
		JOIN accounts a ON au.id = a.user_id
		JOIN cash_movements cm ON a.id = cm.account_id
		LEFT JOIN fund_share_movements fsm
			ON a.id = fsm.account_id
			AND cm.id = fsm.cash_movement_id
		%s
		ORDER BY cm.effective_date ASC, cm.id ASC
	`, whereClause)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	defer rows.Close()

	report := make([]*domain.CashShareReportRow, 0)
	for rows.Next() {
		var (
			row                    domain.CashShareReportRow
			amountStr              string
			fundShareMovementID    sql.NullInt64
			sharesChange, sharePrc sql.NullString
		)
		err := rows.Scan(
			&row.UserID, &row.UserFullName,
			&row.AccountID, &row.AccountNumber,
			&row.CashMovementID, &row.CashMovementType, &row.EffectiveDate, &amountStr,
			&fundShareMovementID, &sharesChange, &sharePrc,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		if row.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		if fundShareMovementID.Valid {
			id := fundShareMovementID.Int64
			row.FundShareMovementID = &id
		}
		if row.SharesChange, err = parseNullDecimal(sharesChange); err != nil {
			return nil, fmt.Errorf("failed to parse shares_change: %w", err)
		}
		if row.SharePrice, err = parseNullDecimal(sharePrc); err != nil {
			return nil, fmt.Errorf("failed to parse share_price: %w", err)
		}
		report = append(report, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report transaction: %w", err)
	}
	return report, nil
}

// AccountSummaries aggregates each account's cash totals and its current
// positions valued at the latest NAV of each fund.
func (r *reportRepository) AccountSummaries(ctx context.Context, userID *int64) ([]*domain.AccountSummary, error) {
	tx, err := r.db.BeginTx(ctx, readTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin report transaction: %w", err)
	}
	defer tx.Rollback()

	whereClause := ""
	args := []any{}
	if userID != nil {
		whereClause = "WHERE a.user_id = $1"
		args = append(args, *userID)
	}

	totalsQuery := fmt.Sprintf(`
		SELECT
			a.id AS account_id,
			a.account_number,
			u.full_name,
			u.email,
			COALESCE(SUM(CASE WHEN cm.type = 'deposit' THEN cm.amount ELSE 0 END), 0) AS total_deposits,
			COALESCE(SUM(CASE WHEN cm.type = 'withdrawal' THEN cm.amount ELSE 0 END), 0) AS total_withdrawals,
			COALESCE(SUM(CASE WHEN cm.type = 'fee' THEN cm.amount ELSE 0 END), 0) AS total_fees
		FROM accounts a
		JOIN app_users u ON a.user_id = u.id
		LEFT JOIN cash_movements cm ON cm.account_id = a.id
		%s
		GROUP BY a.id, a.account_number, u.full_name, u.email
		ORDER BY u.full_name, a.account_number
	`, whereClause)

	rows, err := tx.QueryContext(ctx, totalsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query account totals: %w", err)
	}
	summaries, byAccount, err := scanAccountTotals(rows)
	if err != nil {
		return nil, err
	}

	positionsQuery := fmt.Sprintf(`
		SELECT
			p.account_id,
			f.id AS fund_id,
			f.name AS fund_name,
			f.currency,
			p.share_balance,
			p.cost_basis,
			nav.share_value
		FROM account_fund_positions p
		JOIN accounts a ON a.id = p.account_id
		JOIN funds f ON f.id = p.fund_id
		LEFT JOIN LATERAL (
			SELECT share_value
			FROM fund_navs
			WHERE fund_id = p.fund_id
			ORDER BY as_of_date DESC
			LIMIT 1
		) nav ON TRUE
		%s
		ORDER BY p.account_id, f.name
	`, whereClause)

	posRows, err := tx.QueryContext(ctx, positionsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	if err := scanPositionSummaries(posRows, byAccount); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit report transaction: %w", err)
	}
	return summaries, nil
}

func scanAccountTotals(rows *sql.Rows) ([]*domain.AccountSummary, map[int64]*domain.AccountSummary, error) {
	defer rows.Close()

	summaries := make([]*domain.AccountSummary, 0)
	byAccount := make(map[int64]*domain.AccountSummary)
	for rows.Next() {
		var (
			s                                    domain.AccountSummary
			depositsStr, withdrawalsStr, feesStr string
		)
		err := rows.Scan(&s.AccountID, &s.AccountNumber, &s.UserFullName, &s.UserEmail,
			&depositsStr, &withdrawalsStr, &feesStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account totals: %w", err)
		}
		if s.TotalDeposits, err = decimal.NewFromString(depositsStr); err != nil {
			return nil, nil, fmt.Errorf("failed to parse total_deposits: %w", err)
		}
		if s.TotalWithdrawals, err = decimal.NewFromString(withdrawalsStr); err != nil {
			return nil, nil, fmt.Errorf("failed to parse total_withdrawals: %w", err)
		}
		if s.TotalFees, err = decimal.NewFromString(feesStr); err != nil {
			return nil, nil, fmt.Errorf("failed to parse total_fees: %w", err)
		}
		s.NetInvested = s.TotalDeposits.Sub(s.TotalWithdrawals).Sub(s.TotalFees)
		s.Positions = make([]domain.FundPositionSummary, 0)
		summaries = append(summaries, &s)
		byAccount[s.AccountID] = &s
	}
	return summaries, byAccount, rows.Err()
}

func scanPositionSummaries(rows *sql.Rows, byAccount map[int64]*domain.AccountSummary) error {
	defer rows.Close()

	for rows.Next() {
		var (
			accountID        int64
			pos              domain.FundPositionSummary
			balStr, costStr  string
			latestShareValue sql.NullString
		)
		err := rows.Scan(&accountID, &pos.FundID, &pos.FundName, &pos.Currency,
			&balStr, &costStr, &latestShareValue)
		if err != nil {
			return fmt.Errorf("failed to scan position summary: %w", err)
		}
		if pos.ShareBalance, err = decimal.NewFromString(balStr); err != nil {
			return fmt.Errorf("failed to parse share_balance: %w", err)
		}
		if pos.CostBasis, err = decimal.NewFromString(costStr); err != nil {
			return fmt.Errorf("failed to parse cost_basis: %w", err)
		}
		if pos.LatestShareValue, err = parseNullDecimal(latestShareValue); err != nil {
			return fmt.Errorf("failed to parse latest share value: %w", err)
		}
		if pos.LatestShareValue.Valid {
			pos.MarketValue = decimal.NullDecimal{
				Decimal: pos.ShareBalance.Mul(pos.LatestShareValue.Decimal).RoundBank(domain.MoneyPrecision),
				Valid:   true,
			}
		}
		if s, ok := byAccount[accountID]; ok {
			s.Positions = append(s.Positions, pos)
		}
	}
	return rows.Err()
}
