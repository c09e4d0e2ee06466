package nav

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// AppendNavInput represents the input for appending a NAV point
type AppendNavInput struct {
	FundID          int64
	AsOfDate        time.Time
	FundAccumulated decimal.Decimal
	SharesAmount    decimal.Decimal
	ActorUserID     *int64
}

// Service maintains per-fund NAV history and serves performance reads
type Service struct {
	FundRepo domain.FundRepository
	NavRepo  domain.NavRepository

	logger zerolog.Logger
}

// NewService creates a new NAV Service instance
func NewService(fundRepo domain.FundRepository, navRepo domain.NavRepository, logger zerolog.Logger) *Service {
	return &Service{
		FundRepo: fundRepo,
		NavRepo:  navRepo,
		logger:   logger.With().Str("component", "nav").Logger(),
	}
}

// AppendNav validates and appends one NAV point for a fund. The share value
// and the period deltas are derived here and in the repository against the
// fund's existing history; inserting a backfilled date never recomputes the
// deltas of later rows (see RecomputeDeltas).
func (s *Service) AppendNav(ctx context.Context, input AppendNavInput) (*domain.FundNav, error) {
	if _, err := s.FundRepo.FindByID(ctx, input.FundID); err != nil {
		return nil, err
	}

	shareValue, err := domain.ComputeShareValue(input.FundAccumulated, input.SharesAmount)
	if err != nil {
		return nil, err
	}

	nav := &domain.FundNav{
		FundID:          input.FundID,
		AsOfDate:        input.AsOfDate,
		FundAccumulated: input.FundAccumulated.RoundBank(domain.MoneyPrecision),
		SharesAmount:    input.SharesAmount.RoundBank(domain.SharePrecision),
		ShareValue:      shareValue,
	}
	if err := s.NavRepo.Append(ctx, nav, input.ActorUserID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("fund_id", nav.FundID).
		Str("as_of_date", nav.AsOfDate.Format("2006-01-02")).
		Str("share_value", nav.ShareValue.String()).
		Msg("nav appended")
	return nav, nil
}

// RecomputeDeltas recomputes every delta of the fund's history in date
// order. Run after backfilled inserts to bring dependent rows up to date.
func (s *Service) RecomputeDeltas(ctx context.Context, fundID int64, actorUserID *int64) (int, error) {
	if _, err := s.FundRepo.FindByID(ctx, fundID); err != nil {
		return 0, err
	}
	updated, err := s.NavRepo.RecomputeDeltas(ctx, fundID, actorUserID)
	if err != nil {
		return 0, err
	}
	s.logger.Info().
		Int64("fund_id", fundID).
		Int("rows_updated", updated).
		Msg("nav deltas recomputed")
	return updated, nil
}

// LatestNavs returns each fund's most recent NAV point, keyed by fund id
func (s *Service) LatestNavs(ctx context.Context) (map[int64]*domain.FundNav, error) {
	return s.NavRepo.LatestPerFund(ctx)
}

// FundPerformance returns a fund's NAV series in chronological order,
// limited to the most recent limit points when limit > 0.
func (s *Service) FundPerformance(ctx context.Context, fundID int64, limit int) (*domain.FundPerformance, error) {
	fund, err := s.FundRepo.FindByID(ctx, fundID)
	if err != nil {
		return nil, err
	}
	navs, err := s.NavRepo.ListByFund(ctx, fundID, limit)
	if err != nil {
		return nil, err
	}
	return buildPerformance(fund, navs), nil
}

// AllFundPerformance returns the NAV series of every fund
func (s *Service) AllFundPerformance(ctx context.Context, limit int) ([]*domain.FundPerformance, error) {
	funds, err := s.FundRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	performances := make([]*domain.FundPerformance, 0, len(funds))
	for _, fund := range funds {
		navs, err := s.NavRepo.ListByFund(ctx, fund.ID, limit)
		if err != nil {
			return nil, err
		}
		performances = append(performances, buildPerformance(fund, navs))
	}
	return performances, nil
}

func buildPerformance(fund *domain.Fund, navs []*domain.FundNav) *domain.FundPerformance {
	perf := &domain.FundPerformance{
		FundID:   fund.ID,
		FundName: fund.Name,
		Currency: fund.Currency,
		Navs:     navs,
	}
	if len(navs) > 0 {
		perf.LatestShareValue = decimal.NullDecimal{
			Decimal: navs[len(navs)-1].ShareValue,
			Valid:   true,
		}
	}
	return perf
}
