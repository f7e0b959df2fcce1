package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"jobmate/trust-service/internal/auth"
	"jobmate/trust-service/internal/scam"
	"jobmate/trust-service/internal/scoring"
)

// caller returns the principal stored by the auth middleware. Routes are
// only reachable through that middleware, so absence is a wiring bug.
func caller(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

// ─── Reports & matching ──────────────────────────────────────────────────────

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	var in scam.ReportInput
	if !decode(w, r, &in) {
		return
	}
	rep, err := h.svc.CreateReport(r.Context(), caller(r).ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusCreated, rep)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var c scam.Candidate
	if !decode(w, r, &c) {
		return
	}
	res, err := h.svc.Check(r.Context(), caller(r).ID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, res)
}

func (h *Handler) analyzeJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JobData *scam.JobData `json:"jobData"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.JobData == nil {
		jsonError(w, http.StatusBadRequest, "jobData is required")
		return
	}
	res, err := h.svc.AnalyzeJob(r.Context(), caller(r).ID, *body.JobData)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, res)
}

func (h *Handler) checkBanned(w http.ResponseWriter, r *http.Request) {
	var q scam.BanQuery
	if !decode(w, r, &q) {
		return
	}
	res, err := h.svc.CheckBanned(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, res)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	reports, p, err := h.svc.ListReports(r.Context(), scam.ReportFilter{
		Status:   scam.Status(q.Get("status")),
		Severity: scoring.Severity(q.Get("severity")),
		ScamType: q.Get("scamType"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, reports, p)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, st)
}

// ─── Warnings ────────────────────────────────────────────────────────────────

func (h *Handler) myWarnings(w http.ResponseWriter, r *http.Request) {
	ws, err := h.svc.MyWarnings(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, ws)
}

func (h *Handler) dismissWarning(w http.ResponseWriter, r *http.Request) {
	scamID := chi.URLParam(r, "scamId")
	if err := h.svc.DismissWarning(r.Context(), caller(r).ID, scamID); err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, map[string]any{"scamId": scamID, "dismissed": true})
}

// ─── Admin ───────────────────────────────────────────────────────────────────

func (h *Handler) bannedStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.BannedStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, st)
}

func (h *Handler) listFlaggedJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	f := scam.FlaggedFilter{Page: page, Limit: limit}
	if s := r.URL.Query().Get("reviewed"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "reviewed must be true or false")
			return
		}
		f.Reviewed = &v
	}
	jobs, p, err := h.svc.ListFlaggedJobs(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonPage(w, jobs, p)
}

func (h *Handler) reviewFlaggedJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
	}
	if !decode(w, r, &body) {
		return
	}
	j, err := h.svc.ReviewFlaggedJob(r.Context(), caller(r).ID, chi.URLParam(r, "id"), body.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, j)
}

func (h *Handler) startReview(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.StartReview(r.Context(), caller(r).ID, chi.URLParam(r, "scamId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, rep)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Verify(r.Context(), caller(r).ID, chi.URLParam(r, "scamId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, http.StatusOK, rep)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// pageParams parses optional page and limit query parameters. Range
// clamping is left to the service.
func pageParams(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &page}, {"limit", &limit}} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, p.name+" must be an integer")
			return 0, 0, false
		}
		*p.dst = v
	}
	return page, limit, true
}
