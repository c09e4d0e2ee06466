package domain

import "errors"

// Sentinel errors for the ledger core. Services and repositories wrap these
// with context via fmt.Errorf("...: %w", err); callers match with errors.Is.
var (
	// ErrNotFound indicates a referenced account, fund, user or movement
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates an input that fails structural domain rules
	// before touching storage.
	ErrValidation = errors.New("validation failed")

	// ErrCurrencyMismatch indicates a movement's currency disagrees with the
	// currency of the fund it is linked to.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrLinkMismatch indicates a fund share movement references a cash
	// movement whose amount or currency disagrees with it.
	ErrLinkMismatch = errors.New("linked cash movement mismatch")

	// ErrInsufficientShares indicates a redemption exceeds the current share
	// balance of the position.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInvalidNav indicates a NAV row with non-positive shares outstanding.
	ErrInvalidNav = errors.New("invalid nav")

	// ErrDuplicateNavDate indicates a NAV row already exists for the
	// (fund, as_of_date) pair.
	ErrDuplicateNavDate = errors.New("duplicate nav date")

	// ErrConstraintViolation indicates a uniqueness or foreign-key failure
	// surfaced from storage at commit time.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrLockContention indicates a position (or fund) row was locked by a
	// concurrent transaction. Services retry a bounded number of times before
	// surfacing ErrLockTimeout.
	ErrLockContention = errors.New("lock contention")

	// ErrLockTimeout indicates the bounded retry budget for a contended
	// position was exhausted. The caller may retry.
	ErrLockTimeout = errors.New("lock timeout")
)
