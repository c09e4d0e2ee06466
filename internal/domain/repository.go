package domain

import (
	"context"
	"time"
)

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// FindByID retrieves a user by its ID
	FindByID(ctx context.Context, id int64) (*AppUser, error)

	// FindBySubjectUID retrieves a user by its identity-provider subject
	FindBySubjectUID(ctx context.Context, subjectUID string) (*AppUser, error)

	// FindAll retrieves all users, newest first
	FindAll(ctx context.Context) ([]*AppUser, error)

	// Create creates a new user and fills its ID and CreatedAt
	Create(ctx context.Context, user *AppUser) error
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	// FindByID retrieves an account by its ID
	FindByID(ctx context.Context, id int64) (*Account, error)

	// FindByUserID retrieves all accounts of a user, newest first
	FindByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// Create creates a new account and fills its ID and CreatedAt
	Create(ctx context.Context, account *Account) error
}

// FundRepository defines the interface for fund persistence operations
type FundRepository interface {
	// FindByID retrieves a fund by its ID
	FindByID(ctx context.Context, id int64) (*Fund, error)

	// FindAll retrieves all funds ordered by name
	FindAll(ctx context.Context) ([]*Fund, error)

	// Create creates a new fund and fills its ID and CreatedAt
	Create(ctx context.Context, fund *Fund) error
}

// MovementRepository defines the interface for the append-only movement
// ledger. Both create operations are transactional: the movement insert, the
// position read-modify-write (for fund share movements) and the audit entry
// commit atomically or not at all.
type MovementRepository interface {
	// CreateCashMovement appends a cash movement and its audit entry in one
	// transaction, filling the movement's ID and CreatedAt.
	CreateCashMovement(ctx context.Context, m *CashMovement, actorUserID *int64) error

	// CreateFundShareMovement appends a fund share movement, applies it to
	// the (account, fund) position under an exclusive row lock, and writes
	// the audit entries, all in one transaction. Returns the updated
	// position. Fails with ErrLockContention when the position row is held
	// by a concurrent transaction; callers retry with backoff.
	CreateFundShareMovement(ctx context.Context, m *FundShareMovement, actorUserID *int64) (*AccountFundPosition, error)

	// FindCashMovementByID retrieves a cash movement by its ID
	FindCashMovementByID(ctx context.Context, id int64) (*CashMovement, error)

	// FindFundShareMovementByID retrieves a fund share movement by its ID
	FindFundShareMovementByID(ctx context.Context, id int64) (*FundShareMovement, error)

	// ListCashMovementsByAccount retrieves an account's cash movements,
	// newest effective date first.
	ListCashMovementsByAccount(ctx context.Context, accountID int64) ([]*CashMovement, error)

	// ListFundShareMovementsByAccount retrieves an account's fund share
	// movements, newest effective date first.
	ListFundShareMovementsByAccount(ctx context.Context, accountID int64) ([]*FundShareMovement, error)
}

// PositionRepository defines the read interface over derived positions.
// Writes happen only inside MovementRepository transactions.
type PositionRepository interface {
	// Get retrieves the position of an (account, fund) pair. Returns
	// ErrNotFound when no movement has ever created the row; callers map
	// that to the empty position sentinel.
	Get(ctx context.Context, accountID, fundID int64) (*AccountFundPosition, error)

	// ListByAccount retrieves all positions of an account
	ListByAccount(ctx context.Context, accountID int64) ([]*AccountFundPosition, error)
}

// NavRepository defines the interface for per-fund NAV history
type NavRepository interface {
	// Append inserts a NAV row with its deltas computed against the fund's
	// existing history, plus the audit entry, in one transaction serialized
	// per fund. Fails with ErrDuplicateNavDate when the (fund, date) pair
	// exists. Fills the row's ID, deltas and CreatedAt.
	Append(ctx context.Context, nav *FundNav, actorUserID *int64) error

	// ListByFund retrieves a fund's NAV rows in chronological order,
	// limited to the most recent `limit` rows when limit > 0.
	ListByFund(ctx context.Context, fundID int64, limit int) ([]*FundNav, error)

	// RecomputeDeltas recomputes delta_previous and delta_since_origin for
	// every row of the fund in date order. This is the explicit maintenance
	// operation run after backfilling: inserting an out-of-order row never
	// triggers it implicitly. Returns the number of rows updated.
	RecomputeDeltas(ctx context.Context, fundID int64, actorUserID *int64) (int, error)

	// LatestPerFund retrieves each fund's most recent NAV row
	LatestPerFund(ctx context.Context) (map[int64]*FundNav, error)
}

// AuditRepository defines the read interface over the audit log. Writes
// happen only inside the transactions of the mutation they describe.
type AuditRepository interface {
	// ListByEntity retrieves entries for one entity, oldest first
	ListByEntity(ctx context.Context, entityType EntityKind, entityID int64) ([]*AuditLogEntry, error)

	// ListByActor retrieves entries recorded by one actor within the given
	// time range, oldest first.
	ListByActor(ctx context.Context, actorUserID int64, from, to time.Time) ([]*AuditLogEntry, error)
}

// ReportRepository defines read-only reporting queries. Implementations must
// observe a transactionally consistent snapshot across the joined tables.
type ReportRepository interface {
	// CashShareReport left-joins cash movements to their linked fund share
	// movements, ordered by effective date then cash movement id.
	CashShareReport(ctx context.Context, dateRange ReportRange) ([]*CashShareReportRow, error)

	// AccountSummaries aggregates cash totals and positions per account.
	// When userID is non-nil only that user's accounts are returned.
	AccountSummaries(ctx context.Context, userID *int64) ([]*AccountSummary, error)
}
