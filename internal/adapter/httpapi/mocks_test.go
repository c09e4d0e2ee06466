package httpapi

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

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

// MockNavRepository is a mock implementation of NavRepository for testing
type MockNavRepository struct {
	mock.Mock
}

func (m *MockNavRepository) Append(ctx context.Context, nav *domain.FundNav, actorUserID *int64) error {
	args := m.Called(ctx, nav, actorUserID)
	return args.Error(0)
}

func (m *MockNavRepository) ListByFund(ctx context.Context, fundID int64, limit int) ([]*domain.FundNav, error) {
	args := m.Called(ctx, fundID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FundNav), args.Error(1)
}

func (m *MockNavRepository) RecomputeDeltas(ctx context.Context, fundID int64, actorUserID *int64) (int, error) {
	args := m.Called(ctx, fundID, actorUserID)
	return args.Int(0), args.Error(1)
}

func (m *MockNavRepository) LatestPerFund(ctx context.Context) (map[int64]*domain.FundNav, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.FundNav), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository for testing
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType domain.EntityKind, entityID int64) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditLogEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorUserID int64, from, to time.Time) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, actorUserID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditLogEntry), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository for testing
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CashShareReport(ctx context.Context, dateRange domain.ReportRange) ([]*domain.CashShareReportRow, error) {
	args := m.Called(ctx, dateRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CashShareReportRow), args.Error(1)
}

func (m *MockReportRepository) AccountSummaries(ctx context.Context, userID *int64) ([]*domain.AccountSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountSummary), args.Error(1)
}
