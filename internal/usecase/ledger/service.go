package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// Retry policy for movements racing on the same position. Attempts beyond
// the first wait retryBackoff, doubling each time.
const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 25 * time.Millisecond
)

// RecordCashMovementInput represents the input for recording a cash movement
type RecordCashMovementInput struct {
	AccountID     int64
	Type          domain.CashMovementType
	Amount        decimal.Decimal
	Currency      string
	EffectiveDate time.Time
	ActorUserID   *int64
}

// RecordFundShareMovementInput represents the input for recording a fund
// share movement. Shares is a positive magnitude for both directions.
type RecordFundShareMovementInput struct {
	AccountID     int64
	FundID        int64
	Type          domain.FundShareMovementType
	Shares        decimal.Decimal
	SharePrice    decimal.Decimal
	EffectiveDate time.Time
	Link          domain.LinkRef
	ActorUserID   *int64
}

// Service handles the movement ledger: it validates and appends cash and
// fund share movements, and keeps each (account, fund) position consistent
// with its movement stream.
type Service struct {
	AccountRepo  domain.AccountRepository
	FundRepo     domain.FundRepository
	MovementRepo domain.MovementRepository
	PositionRepo domain.PositionRepository

	MaxAttempts  int
	RetryBackoff time.Duration

	logger zerolog.Logger
}

// NewService creates a new ledger Service instance
func NewService(
	accountRepo domain.AccountRepository,
	fundRepo domain.FundRepository,
	movementRepo domain.MovementRepository,
	positionRepo domain.PositionRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		AccountRepo:  accountRepo,
		FundRepo:     fundRepo,
		MovementRepo: movementRepo,
		PositionRepo: positionRepo,
		MaxAttempts:  defaultMaxAttempts,
		RetryBackoff: defaultRetryBackoff,
		logger:       logger.With().Str("component", "ledger").Logger(),
	}
}

// RecordCashMovement validates and appends a cash movement
func (s *Service) RecordCashMovement(ctx context.Context, input RecordCashMovementInput) (*domain.CashMovement, error) {
	if _, err := s.AccountRepo.FindByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	m := &domain.CashMovement{
		AccountID:     input.AccountID,
		Type:          input.Type,
		Amount:        input.Amount.RoundBank(domain.MoneyPrecision),
		Currency:      strings.ToUpper(input.Currency),
		EffectiveDate: input.EffectiveDate,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.MovementRepo.CreateCashMovement(ctx, m, input.ActorUserID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("cash_movement_id", m.ID).
		Int64("account_id", m.AccountID).
		Str("type", string(m.Type)).
		Str("amount", m.Amount.String()).
		Msg("cash movement recorded")
	return m, nil
}

// RecordFundShareMovement validates and appends a fund share movement,
// updating the (account, fund) position in the same transaction. Contended
// positions are retried with backoff; an exhausted budget surfaces
// domain.ErrLockTimeout.
func (s *Service) RecordFundShareMovement(ctx context.Context, input RecordFundShareMovementInput) (*domain.FundShareMovement, *domain.AccountFundPosition, error) {
	if _, err := s.AccountRepo.FindByID(ctx, input.AccountID); err != nil {
		return nil, nil, err
	}
	fund, err := s.FundRepo.FindByID(ctx, input.FundID)
	if err != nil {
		return nil, nil, err
	}

	m, err := domain.NewFundShareMovement(
		input.AccountID, input.FundID,
		input.Type,
		input.Shares, input.SharePrice,
		input.EffectiveDate,
		input.Link,
	)
	if err != nil {
		return nil, nil, err
	}

	if m.Link.Set() {
		cash, err := s.MovementRepo.FindCashMovementByID(ctx, m.Link.ID())
		if err != nil {
			return nil, nil, err
		}
		if err := m.CheckLink(cash, fund.Currency); err != nil {
			return nil, nil, err
		}
	}

	if m.Type == domain.FundShareRedemption {
		if err := s.checkBalance(ctx, m); err != nil {
			return nil, nil, err
		}
	}

	pos, err := s.createWithRetry(ctx, m, input.ActorUserID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Int64("fund_share_movement_id", m.ID).
		Int64("account_id", m.AccountID).
		Int64("fund_id", m.FundID).
		Str("type", string(m.Type)).
		Str("shares_change", m.SharesChange.String()).
		Str("share_balance", pos.ShareBalance.String()).
		Msg("fund share movement recorded")
	return m, pos, nil
}

// checkBalance rejects redemptions exceeding the current balance before any
// write happens. The transactional apply re-checks under the row lock; this
// pre-check only keeps obviously invalid calls from opening a transaction.
func (s *Service) checkBalance(ctx context.Context, m *domain.FundShareMovement) error {
	pos, err := s.GetPosition(ctx, m.AccountID, m.FundID)
	if err != nil {
		return err
	}
	if m.SharesChange.Abs().GreaterThan(pos.ShareBalance) {
		return fmt.Errorf("redeem %s of %s held: %w",
			m.SharesChange.Abs(), pos.ShareBalance, domain.ErrInsufficientShares)
	}
	return nil
}

func (s *Service) createWithRetry(ctx context.Context, m *domain.FundShareMovement, actorUserID *int64) (*domain.AccountFundPosition, error) {
	backoff := s.RetryBackoff
	for attempt := 1; ; attempt++ {
		pos, err := s.MovementRepo.CreateFundShareMovement(ctx, m, actorUserID)
		if err == nil {
			return pos, nil
		}
		if !errors.Is(err, domain.ErrLockContention) {
			return nil, err
		}
		if attempt >= s.MaxAttempts {
			return nil, fmt.Errorf("position account %d fund %d contended after %d attempts: %w",
				m.AccountID, m.FundID, attempt, domain.ErrLockTimeout)
		}

		s.logger.Warn().
			Int64("account_id", m.AccountID).
			Int64("fund_id", m.FundID).
			Int("attempt", attempt).
			Msg("position contended, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// GetCashMovement returns one cash movement by id
func (s *Service) GetCashMovement(ctx context.Context, id int64) (*domain.CashMovement, error) {
	return s.MovementRepo.FindCashMovementByID(ctx, id)
}

// GetFundShareMovement returns one fund share movement by id
func (s *Service) GetFundShareMovement(ctx context.Context, id int64) (*domain.FundShareMovement, error) {
	return s.MovementRepo.FindFundShareMovementByID(ctx, id)
}

// GetPosition returns the current position of an (account, fund) pair, or
// the empty position sentinel when no movement has ever touched the pair.
func (s *Service) GetPosition(ctx context.Context, accountID, fundID int64) (*domain.AccountFundPosition, error) {
	pos, err := s.PositionRepo.Get(ctx, accountID, fundID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.EmptyPosition(accountID, fundID), nil
		}
		return nil, err
	}
	return pos, nil
}

// ListAccountPositions returns all positions of an account
func (s *Service) ListAccountPositions(ctx context.Context, accountID int64) ([]*domain.AccountFundPosition, error) {
	if _, err := s.AccountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.PositionRepo.ListByAccount(ctx, accountID)
}

// ListCashMovements returns an account's cash movements, newest first
func (s *Service) ListCashMovements(ctx context.Context, accountID int64) ([]*domain.CashMovement, error) {
	if _, err := s.AccountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.MovementRepo.ListCashMovementsByAccount(ctx, accountID)
}

// ListFundShareMovements returns an account's fund share movements, newest first
func (s *Service) ListFundShareMovements(ctx context.Context, accountID int64) ([]*domain.FundShareMovement, error) {
	if _, err := s.AccountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.MovementRepo.ListFundShareMovementsByAccount(ctx, accountID)
}
