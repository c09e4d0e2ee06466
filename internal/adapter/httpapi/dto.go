package httpapi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

// dateLayout is the wire format of effective and as-of dates
const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, domain.ErrValidation)
	}
	return t, nil
}

type createUserRequest struct {
	SubjectUID string `json:"subject_uid"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	IsAdmin    bool   `json:"is_admin"`
	Status     string `json:"status"`
}

type userResponse struct {
	ID         int64     `json:"id"`
	SubjectUID string    `json:"subject_uid"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	IsAdmin    bool      `json:"is_admin"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserResponse(u *domain.AppUser) userResponse {
	return userResponse{
		ID:         u.ID,
		SubjectUID: u.SubjectUID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsAdmin:    u.IsAdmin,
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt,
	}
}

type createAccountRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
}

type accountResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		AccountNumber: a.AccountNumber,
		CreatedAt:     a.CreatedAt,
	}
}

type createFundRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type fundResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func toFundResponse(f *domain.Fund) fundResponse {
	return fundResponse{
		ID:        f.ID,
		Name:      f.Name,
		Currency:  f.Currency,
		CreatedAt: f.CreatedAt,
	}
}

type createCashMovementRequest struct {
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EffectiveDate string          `json:"effective_date"`
}

type cashMovementResponse struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	EffectiveDate string          `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toCashMovementResponse(m *domain.CashMovement) cashMovementResponse {
	return cashMovementResponse{
		ID:            m.ID,
		AccountID:     m.AccountID,
		Type:          string(m.Type),
		Amount:        m.Amount,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate.Format(dateLayout),
		CreatedAt:     m.CreatedAt,
	}
}

type createFundShareMovementRequest struct {
	FundID         int64           `json:"fund_id"`
	Type           string          `json:"type"`
	Shares         decimal.Decimal `json:"shares"`
	SharePrice     decimal.Decimal `json:"share_price"`
	EffectiveDate  string          `json:"effective_date"`
	CashMovementID *int64          `json:"cash_movement_id"`
}

type fundShareMovementResponse struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	FundID         int64           `json:"fund_id"`
	Type           string          `json:"type"`
	SharesChange   decimal.Decimal `json:"shares_change"`
	SharePrice     decimal.Decimal `json:"share_price"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	EffectiveDate  string          `json:"effective_date"`
	CashMovementID domain.LinkRef  `json:"cash_movement_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toFundShareMovementResponse(m *domain.FundShareMovement) fundShareMovementResponse {
	return fundShareMovementResponse{
		ID:             m.ID,
		AccountID:      m.AccountID,
		FundID:         m.FundID,
		Type:           string(m.Type),
		SharesChange:   m.SharesChange,
		SharePrice:     m.SharePrice,
		TotalAmount:    m.TotalAmount,
		EffectiveDate:  m.EffectiveDate.Format(dateLayout),
		CashMovementID: m.Link,
		CreatedAt:      m.CreatedAt,
	}
}

type positionResponse struct {
	AccountID    int64           `json:"account_id"`
	FundID       int64           `json:"fund_id"`
	ShareBalance decimal.Decimal `json:"share_balance"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	UpdatedAt    *time.Time      `json:"updated_at"`
}

func toPositionResponse(p *domain.AccountFundPosition) positionResponse {
	resp := positionResponse{
		AccountID:    p.AccountID,
		FundID:       p.FundID,
		ShareBalance: p.ShareBalance,
		CostBasis:    p.CostBasis,
	}
	if !p.Empty() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

type appendNavRequest struct {
	AsOfDate        string          `json:"as_of_date"`
	FundAccumulated decimal.Decimal `json:"fund_accumulated"`
	SharesAmount    decimal.Decimal `json:"shares_amount"`
}

type navResponse struct {
	ID               int64               `json:"id"`
	FundID           int64               `json:"fund_id"`
	AsOfDate         string              `json:"as_of_date"`
	FundAccumulated  decimal.Decimal     `json:"fund_accumulated"`
	SharesAmount     decimal.Decimal     `json:"shares_amount"`
	ShareValue       decimal.Decimal     `json:"share_value"`
	DeltaPrevious    decimal.NullDecimal `json:"delta_previous"`
	DeltaSinceOrigin decimal.NullDecimal `json:"delta_since_origin"`
	CreatedAt        time.Time           `json:"created_at"`
}

func toNavResponse(n *domain.FundNav) navResponse {
	return navResponse{
		ID:               n.ID,
		FundID:           n.FundID,
		AsOfDate:         n.AsOfDate.Format(dateLayout),
		FundAccumulated:  n.FundAccumulated,
		SharesAmount:     n.SharesAmount,
		ShareValue:       n.ShareValue,
		DeltaPrevious:    n.DeltaPrevious,
		DeltaSinceOrigin: n.DeltaSinceOrigin,
		CreatedAt:        n.CreatedAt,
	}
}

func toNavResponses(navs []*domain.FundNav) []navResponse {
	out := make([]navResponse, 0, len(navs))
	for _, n := range navs {
		out = append(out, toNavResponse(n))
	}
	return out
}

type fundPerformanceResponse struct {
	FundID           int64               `json:"fund_id"`
	FundName         string              `json:"fund_name"`
	Currency         string              `json:"currency"`
	LatestShareValue decimal.NullDecimal `json:"latest_share_value"`
	Navs             []navResponse       `json:"navs"`
}

func toFundPerformanceResponse(p *domain.FundPerformance) fundPerformanceResponse {
	return fundPerformanceResponse{
		FundID:           p.FundID,
		FundName:         p.FundName,
		Currency:         p.Currency,
		LatestShareValue: p.LatestShareValue,
		Navs:             toNavResponses(p.Navs),
	}
}

type reportRowResponse struct {
	UserID           int64               `json:"user_id"`
	UserFullName     string              `json:"user_full_name"`
	AccountID        int64               `json:"account_id"`
	AccountNumber    string              `json:"account_number"`
	CashMovementID   int64               `json:"cash_movement_id"`
	CashMovementType string              `json:"cash_movement_type"`
	EffectiveDate    string              `json:"effective_date"`
	Amount           decimal.Decimal     `json:"amount"`
	ShareMovementID  *int64              `json:"fund_share_movement_id"`
	SharesChange     decimal.NullDecimal `json:"shares_change"`
	SharePrice       decimal.NullDecimal `json:"share_price"`
}

func toReportRowResponse(row *domain.CashShareReportRow) reportRowResponse {
	return reportRowResponse{
		UserID:           row.UserID,
		UserFullName:     row.UserFullName,
		AccountID:        row.AccountID,
		AccountNumber:    row.AccountNumber,
		CashMovementID:   row.CashMovementID,
		CashMovementType: string(row.CashMovementType),
		EffectiveDate:    row.EffectiveDate.Format(dateLayout),
		Amount:           row.Amount,
		ShareMovementID:  row.FundShareMovementID,
		SharesChange:     row.SharesChange,
		SharePrice:       row.SharePrice,
	}
}

type positionSummaryResponse struct {
	FundID           int64               `json:"fund_id"`
	FundName         string              `json:"fund_name"`
	Currency         string              `json:"currency"`
	ShareBalance     decimal.Decimal     `json:"share_balance"`
	CostBasis        decimal.Decimal     `json:"cost_basis"`
	LatestShareValue decimal.NullDecimal `json:"latest_share_value"`
	MarketValue      decimal.NullDecimal `json:"market_value"`
}

type accountSummaryResponse struct {
	AccountID        int64                     `json:"account_id"`
	AccountNumber    string                    `json:"account_number"`
	UserFullName     string                    `json:"user_full_name"`
	UserEmail        string                    `json:"user_email"`
	TotalDeposits    decimal.Decimal           `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal           `json:"total_withdrawals"`
	TotalFees        decimal.Decimal           `json:"total_fees"`
	NetInvested      decimal.Decimal           `json:"net_invested"`
	Positions        []positionSummaryResponse `json:"positions"`
}

func toAccountSummaryResponse(s *domain.AccountSummary) accountSummaryResponse {
	positions := make([]positionSummaryResponse, 0, len(s.Positions))
	for _, p := range s.Positions {
		positions = append(positions, positionSummaryResponse{
			FundID:           p.FundID,
			FundName:         p.FundName,
			Currency:         p.Currency,
			ShareBalance:     p.ShareBalance,
			CostBasis:        p.CostBasis,
			LatestShareValue: p.LatestShareValue,
			MarketValue:      p.MarketValue,
		})
	}
	return accountSummaryResponse{
		AccountID:        s.AccountID,
		AccountNumber:    s.AccountNumber,
		UserFullName:     s.UserFullName,
		UserEmail:        s.UserEmail,
		TotalDeposits:    s.TotalDeposits,
		TotalWithdrawals: s.TotalWithdrawals,
		TotalFees:        s.TotalFees,
		NetInvested:      s.NetInvested,
		Positions:        positions,
	}
}

type auditEntryResponse struct {
	ID          string           `json:"id"`
	ActorUserID *int64           `json:"actor_user_id"`
	Action      string           `json:"action"`
	EntityType  string           `json:"entity_type"`
	EntityID    *int64           `json:"entity_id"`
	Before      *domain.Snapshot `json:"before"`
	After       *domain.Snapshot `json:"after"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toAuditEntryResponse(e *domain.AuditLogEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:          e.ID.String(),
		ActorUserID: e.ActorUserID,
		Action:      string(e.Action),
		EntityType:  string(e.EntityType),
		EntityID:    e.EntityID,
		Before:      e.Before,
		After:       e.After,
		CreatedAt:   e.CreatedAt,
	}
}
