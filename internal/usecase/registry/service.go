package registry

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// CreateUserInput represents the input for registering a user
type CreateUserInput struct {
	SubjectUID string
	Email      string
	FullName   string
	IsAdmin    bool
	Status     domain.UserStatus
}

// CreateAccountInput represents the input for opening an account
type CreateAccountInput struct {
	UserID        int64
	AccountNumber string
}

// CreateFundInput represents the input for registering a fund
type CreateFundInput struct {
	Name     string
	Currency string
}

// Service manages the reference entities movements hang off: users, their
// accounts and the funds. All three are immutable once created.
type Service struct {
	UserRepo    domain.UserRepository
	AccountRepo domain.AccountRepository
	FundRepo    domain.FundRepository

	logger zerolog.Logger
}

// NewService creates a new registry Service instance
func NewService(
	userRepo domain.UserRepository,
	accountRepo domain.AccountRepository,
	fundRepo domain.FundRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		UserRepo:    userRepo,
		AccountRepo: accountRepo,
		FundRepo:    fundRepo,
		logger:      logger.With().Str("component", "registry").Logger(),
	}
}

// CreateUser registers an application user. Status defaults to invited.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.AppUser, error) {
	status := input.Status
	if status == "" {
		status = domain.UserStatusInvited
	}

	user := &domain.AppUser{
		SubjectUID: input.SubjectUID,
		Email:      strings.ToLower(input.Email),
		FullName:   input.FullName,
		IsAdmin:    input.IsAdmin,
		Status:     status,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user created")
	return user, nil
}

// ListUsers returns all users, newest first
func (s *Service) ListUsers(ctx context.Context) ([]*domain.AppUser, error) {
	return s.UserRepo.FindAll(ctx)
}

// GetUser returns one user by id
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.AppUser, error) {
	return s.UserRepo.FindByID(ctx, id)
}

// CreateAccount opens an account for an existing user
func (s *Service) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if _, err := s.UserRepo.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	account := &domain.Account{
		UserID:        input.UserID,
		AccountNumber: input.AccountNumber,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Int64("user_id", account.UserID).
		Str("account_number", account.AccountNumber).
		Msg("account created")
	return account, nil
}

// GetAccount returns one account by id
func (s *Service) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.AccountRepo.FindByID(ctx, id)
}

// ListAccountsForUser returns a user's accounts, newest first
func (s *Service) ListAccountsForUser(ctx context.Context, userID int64) ([]*domain.Account, error) {
	if _, err := s.UserRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.AccountRepo.FindByUserID(ctx, userID)
}

// CreateFund registers a fund
func (s *Service) CreateFund(ctx context.Context, input CreateFundInput) (*domain.Fund, error) {
	fund := &domain.Fund{
		Name:     strings.TrimSpace(input.Name),
		Currency: strings.ToUpper(input.Currency),
	}
	if err := fund.Validate(); err != nil {
		return nil, err
	}
	if err := s.FundRepo.Create(ctx, fund); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("fund_id", fund.ID).
		Str("name", fund.Name).
		Str("currency", fund.Currency).
		Msg("fund created")
	return fund, nil
}

// ListFunds returns all funds ordered by name
func (s *Service) ListFunds(ctx context.Context) ([]*domain.Fund, error) {
	return s.FundRepo.FindAll(ctx)
}
