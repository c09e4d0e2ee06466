package httpapi

import (
	"fmt"
	"net/http"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
	"github.com/mrcapitals/fundledger-backend/internal/usecase/registry"
)

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.svc.Registry.CreateUser(r.Context(), registry.CreateUserInput{
		SubjectUID: req.SubjectUID,
		Email:      req.Email,
		FullName:   req.FullName,
		IsAdmin:    req.IsAdmin,
		Status:     domain.UserStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Registry.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := h.svc.Registry.CreateAccount(r.Context(), registry.CreateAccountInput{
		UserID:        req.UserID,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *handler) listUserAccounts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller, ok := UserFromContext(r.Context())
	if !ok || (!caller.IsAdmin && caller.ID != userID) {
		writeError(w, r, fmt.Errorf("user %d: %w", userID, errForbidden))
		return
	}
	accounts, err := h.svc.Registry.ListAccountsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createFund(w http.ResponseWriter, r *http.Request) {
	var req createFundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fund, err := h.svc.Registry.CreateFund(r.Context(), registry.CreateFundInput{
		Name:     req.Name,
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFundResponse(fund))
}

func (h *handler) listFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.svc.Registry.ListFunds(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]fundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, toFundResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}
