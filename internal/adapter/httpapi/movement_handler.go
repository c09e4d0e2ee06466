package httpapi

import (
	"net/http"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/ledger"
)

func (h *handler) createCashMovement(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createCashMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.svc.Ledger.RecordCashMovement(r.Context(), ledger.RecordCashMovementInput{
		AccountID:     accountID,
		Type:          domain.CashMovementType(req.Type),
		Amount:        req.Amount,
		Currency:      req.Currency,
		EffectiveDate: effectiveDate,
		ActorUserID:   actorID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCashMovementResponse(m))
}

func (h *handler) getCashMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Ledger.GetCashMovement(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCashMovementResponse(m))
}

func (h *handler) listCashMovements(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorizeAccount(r, accountID); err != nil {
		writeError(w, r, err)
		return
	}
	movements, err := h.svc.Ledger.ListCashMovements(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]cashMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toCashMovementResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// fundShareMovementCreatedResponse pairs the recorded movement with the
// position it produced.
type fundShareMovementCreatedResponse struct {
	Movement fundShareMovementResponse `json:"movement"`
	Position positionResponse          `json:"position"`
}

func (h *handler) createFundShareMovement(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createFundShareMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	link := domain.NoLink()
	if req.CashMovementID != nil {
		link = domain.LinkTo(*req.CashMovementID)
	}

	m, pos, err := h.svc.Ledger.RecordFundShareMovement(r.Context(), ledger.RecordFundShareMovementInput{
		AccountID:     accountID,
		FundID:        req.FundID,
		Type:          domain.FundShareMovementType(req.Type),
		Shares:        req.Shares,
		SharePrice:    req.SharePrice,
		EffectiveDate: effectiveDate,
		Link:          link,
		ActorUserID:   actorID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fundShareMovementCreatedResponse{
		Movement: toFundShareMovementResponse(m),
		Position: toPositionResponse(pos),
	})
}

func (h *handler) getFundShareMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.Ledger.GetFundShareMovement(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFundShareMovementResponse(m))
}

func (h *handler) listFundShareMovements(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorizeAccount(r, accountID); err != nil {
		writeError(w, r, err)
		return
	}
	movements, err := h.svc.Ledger.ListFundShareMovements(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]fundShareMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toFundShareMovementResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getPosition(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	fundID, err := pathID(r, "fundID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorizeAccount(r, accountID); err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.svc.Ledger.GetPosition(r.Context(), accountID, fundID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPositionResponse(pos))
}

func (h *handler) listPositions(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.authorizeAccount(r, accountID); err != nil {
		writeError(w, r, err)
		return
	}
	positions, err := h.svc.Ledger.ListAccountPositions(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
