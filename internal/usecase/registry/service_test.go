package registry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*domain.AppUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppUser), args.Error(1)
}

func (m *MockUserRepository) FindBySubjectUID(ctx context.Context, subjectUID string) (*domain.AppUser, error) {
	args := m.Called(ctx, subjectUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppUser), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]*domain.AppUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AppUser), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.AppUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

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

func newTestService() (*Service, *MockUserRepository, *MockAccountRepository, *MockFundRepository) {
	userRepo := new(MockUserRepository)
	accountRepo := new(MockAccountRepository)
	fundRepo := new(MockFundRepository)
	return NewService(userRepo, accountRepo, fundRepo, zerolog.Nop()), userRepo, accountRepo, fundRepo
}

func TestCreateUser_DefaultsToInvitedAndLowercasesEmail(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, _ := newTestService()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.AppUser")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.AppUser).ID = 10
		}).Return(nil)

	user, err := svc.CreateUser(ctx, CreateUserInput{
		SubjectUID: "sub-abc",
		Email:      "Jordan@Example.COM",
		FullName:   "Jordan Li",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), user.ID)
	assert.Equal(t, "jordan@example.com", user.Email)
	assert.Equal(t, domain.UserStatusInvited, user.Status)
}

func TestCreateUser_RejectsMissingSubject(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, _ := newTestService()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.co"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAccount_RequiresExistingUser(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, accountRepo, _ := newTestService()

	userRepo.On("FindByID", ctx, int64(404)).Return(nil, domain.ErrNotFound)

	_, err := svc.CreateAccount(ctx, CreateAccountInput{UserID: 404, AccountNumber: "ACC-001"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAccount_Success(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, accountRepo, _ := newTestService()

	userRepo.On("FindByID", ctx, int64(10)).Return(&domain.AppUser{ID: 10}, nil)
	accountRepo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Account).ID = 1
		}).Return(nil)

	account, err := svc.CreateAccount(ctx, CreateAccountInput{UserID: 10, AccountNumber: "ACC-001"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
}

func TestCreateFund_NormalizesCurrency(t *testing.T) {
	ctx := context.Background()
	svc, _, _, fundRepo := newTestService()

	fundRepo.On("Create", ctx, mock.AnythingOfType("*domain.Fund")).Return(nil)

	fund, err := svc.CreateFund(ctx, CreateFundInput{Name: "  Global Equity ", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "Global Equity", fund.Name)
	assert.Equal(t, "EUR", fund.Currency)
}

func TestCreateFund_RejectsBadCurrency(t *testing.T) {
	ctx := context.Background()
	svc, _, _, fundRepo := newTestService()

	_, err := svc.CreateFund(ctx, CreateFundInput{Name: "Global Equity", Currency: "EURO"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	fundRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
