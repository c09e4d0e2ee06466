package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockFundRepository is a mock implementation of FundRepository for testing
type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) FindByID(ctx context.Context, id int64) (*domain.Fund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}

func (m *MockFundRepository) FindAll(ctx context.Context) ([]*domain.Fund, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Fund), args.Error(1)
}

func (m *MockFundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository for testing
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) CreateCashMovement(ctx context.Context, movement *domain.CashMovement, actorUserID *int64) error {
	args := m.Called(ctx, movement, actorUserID)
	return args.Error(0)
}

func (m *MockMovementRepository) CreateFundShareMovement(ctx context.Context, movement *domain.FundShareMovement, actorUserID *int64) (*domain.AccountFundPosition, error) {
	args := m.Called(ctx, movement, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountFundPosition), args.Error(1)
}

func (m *MockMovementRepository) FindCashMovementByID(ctx context.Context, id int64) (*domain.CashMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashMovement), args.Error(1)
}

func (m *MockMovementRepository) FindFundShareMovementByID(ctx context.Context, id int64) (*domain.FundShareMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundShareMovement), args.Error(1)
}

func (m *MockMovementRepository) ListCashMovementsByAccount(ctx context.Context, accountID int64) ([]*domain.CashMovement, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CashMovement), args.Error(1)
}

func (m *MockMovementRepository) ListFundShareMovementsByAccount(ctx context.Context, accountID int64) ([]*domain.FundShareMovement, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FundShareMovement), args.Error(1)
}

// MockPositionRepository is a mock implementation of PositionRepository for testing
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) Get(ctx context.Context, accountID, fundID int64) (*domain.AccountFundPosition, error) {
	args := m.Called(ctx, accountID, fundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountFundPosition), args.Error(1)
}

func (m *MockPositionRepository) ListByAccount(ctx context.Context, accountID int64) ([]*domain.AccountFundPosition, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountFundPosition), args.Error(1)
}

func newTestService() (*Service, *MockAccountRepository, *MockFundRepository, *MockMovementRepository, *MockPositionRepository) {
	accountRepo := new(MockAccountRepository)
	fundRepo := new(MockFundRepository)
	movementRepo := new(MockMovementRepository)
	positionRepo := new(MockPositionRepository)
	svc := NewService(accountRepo, fundRepo, movementRepo, positionRepo, zerolog.Nop())
	svc.RetryBackoff = time.Millisecond
	return svc, accountRepo, fundRepo, movementRepo, positionRepo
}

var (
	testAccount = &domain.Account{ID: 1, UserID: 10, AccountNumber: "ACC-001"}
	testFund    = &domain.Fund{ID: 2, Name: "Global Equity", Currency: "EUR"}
	testDate    = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func TestRecordCashMovement_Success(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	movementRepo.On("CreateCashMovement", ctx, mock.AnythingOfType("*domain.CashMovement"), (*int64)(nil)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.CashMovement).ID = 99
		}).Return(nil)

	m, err := svc.RecordCashMovement(ctx, RecordCashMovementInput{
		AccountID:     1,
		Type:          domain.CashMovementDeposit,
		Amount:        decimal.RequireFromString("1000.005"),
		Currency:      "eur",
		EffectiveDate: testDate,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(99), m.ID)
	assert.Equal(t, "EUR", m.Currency, "currency is upper-cased")
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("1000.00")), "amount rounds half to even: %s", m.Amount)
	movementRepo.AssertExpectations(t)
}

func TestRecordCashMovement_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(404)).Return(nil, domain.ErrNotFound)

	_, err := svc.RecordCashMovement(ctx, RecordCashMovementInput{
		AccountID:     404,
		Type:          domain.CashMovementDeposit,
		Amount:        decimal.RequireFromString("100"),
		Currency:      "EUR",
		EffectiveDate: testDate,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	movementRepo.AssertNotCalled(t, "CreateCashMovement", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordCashMovement_InvalidType(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)

	_, err := svc.RecordCashMovement(ctx, RecordCashMovementInput{
		AccountID:     1,
		Type:          "transfer",
		Amount:        decimal.RequireFromString("100"),
		Currency:      "EUR",
		EffectiveDate: testDate,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	movementRepo.AssertNotCalled(t, "CreateCashMovement", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordFundShareMovement_SubscriptionSuccess(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)

	updated := &domain.AccountFundPosition{
		ID: 7, AccountID: 1, FundID: 2,
		ShareBalance: decimal.RequireFromString("100"),
		CostBasis:    decimal.RequireFromString("1000.00"),
	}
	movementRepo.On("CreateFundShareMovement", ctx, mock.AnythingOfType("*domain.FundShareMovement"), (*int64)(nil)).
		Return(updated, nil)

	m, pos, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.NoLink(),
	})
	require.NoError(t, err)

	assert.True(t, m.SharesChange.Equal(decimal.RequireFromString("100")))
	assert.True(t, m.TotalAmount.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, pos.ShareBalance.Equal(decimal.RequireFromString("100")))
	movementRepo.AssertExpectations(t)
}

func TestRecordFundShareMovement_LinkedToCashMovement(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	movementRepo.On("FindCashMovementByID", ctx, int64(55)).Return(&domain.CashMovement{
		ID: 55, AccountID: 1, Type: domain.CashMovementDeposit,
		Amount: decimal.RequireFromString("1000.00"), Currency: "EUR",
		EffectiveDate: testDate,
	}, nil)
	movementRepo.On("CreateFundShareMovement", ctx, mock.AnythingOfType("*domain.FundShareMovement"), (*int64)(nil)).
		Return(&domain.AccountFundPosition{ID: 7, AccountID: 1, FundID: 2}, nil)

	m, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.LinkTo(55),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), m.Link.ID())
}

func TestRecordFundShareMovement_LinkAmountMismatch(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	movementRepo.On("FindCashMovementByID", ctx, int64(55)).Return(&domain.CashMovement{
		ID: 55, AccountID: 1, Type: domain.CashMovementDeposit,
		Amount: decimal.RequireFromString("500.00"), Currency: "EUR",
		EffectiveDate: testDate,
	}, nil)

	_, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.LinkTo(55),
	})
	assert.ErrorIs(t, err, domain.ErrLinkMismatch)
	movementRepo.AssertNotCalled(t, "CreateFundShareMovement", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordFundShareMovement_LinkCurrencyMismatch(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	movementRepo.On("FindCashMovementByID", ctx, int64(55)).Return(&domain.CashMovement{
		ID: 55, AccountID: 1, Type: domain.CashMovementDeposit,
		Amount: decimal.RequireFromString("1000.00"), Currency: "USD",
		EffectiveDate: testDate,
	}, nil)

	_, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.LinkTo(55),
	})
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestRecordFundShareMovement_RedemptionExceedingBalance(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, positionRepo := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	positionRepo.On("Get", ctx, int64(1), int64(2)).Return(&domain.AccountFundPosition{
		ID: 7, AccountID: 1, FundID: 2,
		ShareBalance: decimal.RequireFromString("50"),
		CostBasis:    decimal.RequireFromString("500.00"),
	}, nil)

	_, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareRedemption,
		Shares:        decimal.RequireFromString("60"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.NoLink(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
	movementRepo.AssertNotCalled(t, "CreateFundShareMovement", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordFundShareMovement_RedemptionFromEmptyPosition(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, _, positionRepo := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	positionRepo.On("Get", ctx, int64(1), int64(2)).Return(nil, domain.ErrNotFound)

	_, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareRedemption,
		Shares:        decimal.RequireFromString("1"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.NoLink(),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)
}

func TestRecordFundShareMovement_RetriesContendedPosition(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)

	updated := &domain.AccountFundPosition{ID: 7, AccountID: 1, FundID: 2,
		ShareBalance: decimal.RequireFromString("100")}
	movementRepo.On("CreateFundShareMovement", ctx, mock.AnythingOfType("*domain.FundShareMovement"), (*int64)(nil)).
		Return(nil, domain.ErrLockContention).Twice()
	movementRepo.On("CreateFundShareMovement", ctx, mock.AnythingOfType("*domain.FundShareMovement"), (*int64)(nil)).
		Return(updated, nil).Once()

	_, pos, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.NoLink(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos.ID)
	movementRepo.AssertNumberOfCalls(t, "CreateFundShareMovement", 3)
}

func TestRecordFundShareMovement_ContentionBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, fundRepo, movementRepo, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(1)).Return(testAccount, nil)
	fundRepo.On("FindByID", ctx, int64(2)).Return(testFund, nil)
	movementRepo.On("CreateFundShareMovement", ctx, mock.AnythingOfType("*domain.FundShareMovement"), (*int64)(nil)).
		Return(nil, domain.ErrLockContention)

	_, _, err := svc.RecordFundShareMovement(ctx, RecordFundShareMovementInput{
		AccountID:     1,
		FundID:        2,
		Type:          domain.FundShareSubscription,
		Shares:        decimal.RequireFromString("100"),
		SharePrice:    decimal.RequireFromString("10.00"),
		EffectiveDate: testDate,
		Link:          domain.NoLink(),
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
	movementRepo.AssertNumberOfCalls(t, "CreateFundShareMovement", svc.MaxAttempts)
}

func TestGetPosition_MapsMissingRowToEmptySentinel(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, positionRepo := newTestService()

	positionRepo.On("Get", ctx, int64(1), int64(2)).Return(nil, domain.ErrNotFound)

	pos, err := svc.GetPosition(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, pos.Empty())
	assert.True(t, pos.ShareBalance.IsZero())
	assert.True(t, pos.CostBasis.IsZero())
}

func TestListCashMovements_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	svc, accountRepo, _, _, _ := newTestService()

	accountRepo.On("FindByID", ctx, int64(404)).Return(nil, domain.ErrNotFound)

	_, err := svc.ListCashMovements(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
