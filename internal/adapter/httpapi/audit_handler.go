package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mrcapitals/fundledger-backend/internal/domain"
)

func (h *handler) entityTrail(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityKind(chi.URLParam(r, "entityType"))
	entityID, err := pathID(r, "entityID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.svc.Audit.EntityTrail(r.Context(), entityType, entityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
}

func (h *handler) actorTrail(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := parseTimestamp(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid from timestamp: %w", domain.ErrValidation))
		return
	}
	to, err := parseTimestamp(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid to timestamp: %w", domain.ErrValidation))
		return
	}
	entries, err := h.svc.Audit.ActorTrail(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
}

func toAuditEntryResponses(entries []*domain.AuditLogEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntryResponse(e))
	}
	return out
}
