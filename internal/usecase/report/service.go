package report

import (
	"context"
	"fmt"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// Service serves read-only reconciled reports over committed ledger state
type Service struct {
	ReportRepo domain.ReportRepository
}

// NewService creates a new report Service instance
func NewService(reportRepo domain.ReportRepository) *Service {
	return &Service{ReportRepo: reportRepo}
}

// CashShareReport joins cash movements to the fund share movements they
// funded, ordered by effective date then cash movement id. The optional
// range bounds effective dates inclusively.
func (s *Service) CashShareReport(ctx context.Context, dateRange domain.ReportRange) ([]*domain.CashShareReportRow, error) {
	if dateRange.From != nil && dateRange.To != nil && dateRange.To.Before(*dateRange.From) {
		return nil, fmt.Errorf("report range end precedes start: %w", domain.ErrValidation)
	}
	return s.ReportRepo.CashShareReport(ctx, dateRange)
}

// AccountSummariesForUser returns the summaries of one user's accounts
func (s *Service) AccountSummariesForUser(ctx context.Context, userID int64) ([]*domain.AccountSummary, error) {
	return s.ReportRepo.AccountSummaries(ctx, &userID)
}

// AccountSummariesForAdmin returns the summaries of every account
func (s *Service) AccountSummariesForAdmin(ctx context.Context) ([]*domain.AccountSummary, error) {
	return s.ReportRepo.AccountSummaries(ctx, nil)
}
