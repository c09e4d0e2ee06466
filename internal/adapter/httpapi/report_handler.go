package httpapi

import (
	"net/http"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

func (h *handler) cashShareReport(w http.ResponseWriter, r *http.Request) {
	var dateRange domain.ReportRange
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		dateRange.From = &from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		dateRange.To = &to
	}

	rows, err := h.svc.Report.CashShareReport(r.Context(), dateRange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]reportRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReportRowResponse(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) accountSummaries(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var (
		summaries []*domain.AccountSummary
		err       error
	)
	if user.IsAdmin {
		summaries, err = h.svc.Report.AccountSummariesForAdmin(r.Context())
	} else {
		summaries, err = h.svc.Report.AccountSummariesForUser(r.Context(), user.ID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toAccountSummaryResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}
