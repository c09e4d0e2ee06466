package httpapi

import (
	"net/http"

	"github.com/mrcapitals/fundledger-backend/internal/usecase/nav"
)

func (h *handler) appendNav(w http.ResponseWriter, r *http.Request) {
	fundID, err := pathID(r, "fundID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req appendNavRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	asOfDate, err := parseDate(req.AsOfDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.svc.Nav.AppendNav(r.Context(), nav.AppendNavInput{
		FundID:          fundID,
		AsOfDate:        asOfDate,
		FundAccumulated: req.FundAccumulated,
		SharesAmount:    req.SharesAmount,
		ActorUserID:     actorID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNavResponse(n))
}

func (h *handler) recomputeNavDeltas(w http.ResponseWriter, r *http.Request) {
	fundID, err := pathID(r, "fundID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Nav.RecomputeDeltas(r.Context(), fundID, actorID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows_updated": updated})
}

func (h *handler) listNavs(w http.ResponseWriter, r *http.Request) {
	fundID, err := pathID(r, "fundID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perf, err := h.svc.Nav.FundPerformance(r.Context(), fundID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNavResponses(perf.Navs))
}

func (h *handler) fundPerformance(w http.ResponseWriter, r *http.Request) {
	fundID, err := pathID(r, "fundID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	perf, err := h.svc.Nav.FundPerformance(r.Context(), fundID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFundPerformanceResponse(perf))
}

func (h *handler) latestNavs(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.Nav.LatestNavs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make(map[int64]navResponse, len(latest))
	for fundID, n := range latest {
		out[fundID] = toNavResponse(n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) allFundPerformance(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	performances, err := h.svc.Nav.AllFundPerformance(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]fundPerformanceResponse, 0, len(performances))
	for _, p := range performances {
		out = append(out, toFundPerformanceResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
