package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/trust-service/internal/auth"
	"jobmate/trust-service/internal/httpapi"
	"jobmate/trust-service/internal/scam"
	"jobmate/trust-service/internal/store/memory"
)

const longDescription = `We are looking for a backend software engineer to join our platform group in Austin.
You will design, build and operate services written in Go and deployed on Kubernetes. Day to day you will
work with product managers and designers to scope features, write design documents, review pull requests
and take part in a shared on-call rotation. We value clear written communication, thoughtful testing and
pragmatic engineering decisions.`

type env struct {
	t     *testing.T
	srv   *httptest.Server
	store *memory.Store
	user  string
	admin string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	verifier := auth.NewVerifier("test-secret")
	h := httpapi.NewHandler(scam.NewService(store, nil), verifier)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	user, err := verifier.Sign(auth.Principal{ID: "user-1", Role: "USER"}, time.Hour)
	require.NoError(t, err)
	admin, err := verifier.Sign(auth.Principal{ID: "admin-1", Role: auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	return &env{t: t, srv: srv, store: store, user: user, admin: admin}
}

type response struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *scam.Pagination
}

func (e *env) do(method, path, token string, body any) (int, response) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	defer res.Body.Close()

	var out response
	require.NoError(e.t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func decodeData[T any](t *testing.T, r response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(r.Data, &v))
	return v
}

var scamJob = map[string]any{
	"jobData": map[string]any{
		"title":       "Data Entry - No Experience!",
		"description": "Earn $5000 per week working from home! Wire transfer fee required to start, send your social security number to hr@gmail.com",
		"company":     "Quick Cash LLC",
		"url":         "https://quick-cash.example/jobs/1",
	},
}

// ─── Authentication ──────────────────────────────────────────────────────────

func TestRoutes_RequireBearerToken(t *testing.T) {
	e := newEnv(t)
	code, res := e.do(http.MethodGet, "/scams/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, res.Success)

	code, _ = e.do(http.MethodGet, "/scams/stats", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminRoutes_ForbiddenForUsers(t *testing.T) {
	e := newEnv(t)
	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/scams/banned-entities/stats"},
		{http.MethodGet, "/scams/flagged-jobs"},
		{http.MethodPut, "/scams/flagged-jobs/x/review"},
		{http.MethodPut, "/scams/x/review"},
		{http.MethodPut, "/scams/x/verify"},
	} {
		code, _ := e.do(c.method, c.path, e.user, map[string]string{"action": "ban"})
		assert.Equal(t, http.StatusForbidden, code, "%s %s", c.method, c.path)
	}
}

// ─── AI analysis ─────────────────────────────────────────────────────────────

func TestAnalyzeJob_ObviousScamIsBannedAndVerified(t *testing.T) {
	e := newEnv(t)

	code, res := e.do(http.MethodPost, "/scams/analyze-job", e.user, scamJob)
	require.Equal(t, http.StatusOK, code, res.Error)
	a := decodeData[scam.Analysis](t, res)
	assert.True(t, a.IsScam)
	assert.Equal(t, 1.0, a.Analysis.Confidence)
	assert.Equal(t, "banned", string(a.Action))

	code, res = e.do(http.MethodPost, "/scams/check-banned", e.user, map[string]string{
		"company": "  QUICK CASH LLC ",
		"url":     "https://quick-cash.example/jobs/1/",
	})
	require.Equal(t, http.StatusOK, code)
	bc := decodeData[scam.BanCheck](t, res)
	assert.True(t, bc.IsBanned)
	assert.Len(t, bc.Reasons, 2)
	require.NotNil(t, bc.BannedCompany)
	require.NotNil(t, bc.BannedURL)
	assert.Nil(t, bc.BannedEmail)

	code, res = e.do(http.MethodGet, "/scams?status=VERIFIED", e.user, nil)
	require.Equal(t, http.StatusOK, code)
	reports := decodeData[[]scam.Report](t, res)
	require.Len(t, reports, 1)
	assert.Equal(t, scam.SourceAI, reports[0].Source)
	require.NotNil(t, res.Pagination)
	assert.Equal(t, 1, res.Pagination.Total)
}

func TestAnalyzeJob_MissingJobData(t *testing.T) {
	e := newEnv(t)
	code, res := e.do(http.MethodPost, "/scams/analyze-job", e.user, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "jobData is required", res.Error)
}

func TestCheckBanned_RequiresAKey(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(http.MethodPost, "/scams/check-banned", e.user, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─── Manual reports ──────────────────────────────────────────────────────────

func TestCreateReport_ValidationAndDuplicate(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{"title": "Mystery Shopper", "companyName": "Shop Co", "scamType": "payment_scam"}

	code, res := e.do(http.MethodPost, "/scams/report", e.user, map[string]any{"title": "x", "companyName": "y"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "scamType is required", res.Error)

	code, res = e.do(http.MethodPost, "/scams/report", e.user, body)
	require.Equal(t, http.StatusCreated, code, res.Error)
	created := decodeData[scam.Report](t, res)
	assert.Equal(t, scam.StatusReported, created.Status)
	assert.Equal(t, "user-1", created.ReportedBy)

	body["title"] = "  mystery SHOPPER "
	code, res = e.do(http.MethodPost, "/scams/report", e.user, body)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	dup := decodeData[map[string]string](t, res)
	assert.Equal(t, created.ID, dup["existingScamId"])
}

func TestVerifyLifecycle(t *testing.T) {
	e := newEnv(t)
	_, res := e.do(http.MethodPost, "/scams/report", e.user,
		map[string]any{"title": "Reshipper", "companyName": "Parcel Co", "scamType": "other"})
	id := decodeData[scam.Report](t, res).ID

	code, res := e.do(http.MethodPut, "/scams/"+id+"/review", e.admin, nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	assert.Equal(t, scam.StatusUnderReview, decodeData[scam.Report](t, res).Status)

	code, res = e.do(http.MethodPut, "/scams/"+id+"/verify", e.admin, nil)
	require.Equal(t, http.StatusOK, code, res.Error)
	v := decodeData[scam.Report](t, res)
	assert.Equal(t, scam.StatusVerified, v.Status)
	require.NotNil(t, v.VerifiedBy)
	assert.Equal(t, "admin-1", *v.VerifiedBy)

	code, _ = e.do(http.MethodPut, "/scams/"+id+"/verify", e.admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(http.MethodPut, "/scams/does-not-exist/verify", e.admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListReports_BadQuery(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(http.MethodGet, "/scams?limit=ten", e.user, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(http.MethodGet, "/scams?status=DELETED", e.user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─── Matching & warnings ─────────────────────────────────────────────────────

func TestCheck_VerifiedMatchWarnsEveryCheck(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(http.MethodPost, "/scams/analyze-job", e.admin, scamJob)
	require.Equal(t, http.StatusOK, code)

	candidate := map[string]string{"title": "data entry", "companyName": "quick cash"}
	for i := 0; i < 2; i++ {
		code, res := e.do(http.MethodPost, "/scams/check", e.user, candidate)
		require.Equal(t, http.StatusOK, code, res.Error)
		cr := decodeData[scam.CheckResult](t, res)
		assert.Equal(t, scam.RiskHigh, cr.RiskLevel)
		require.Len(t, cr.MatchingScams, 1)
		assert.NotEmpty(t, cr.Warnings)
	}

	code, res := e.do(http.MethodGet, "/scams/my-warnings", e.user, nil)
	require.Equal(t, http.StatusOK, code)
	ws := decodeData[[]scam.WarningView](t, res)
	require.Len(t, ws, 1, "one warning row per (user, scam)")

	code, res = e.do(http.MethodGet, "/scams/stats", e.user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decodeData[scam.ReportStats](t, res).TotalWarnings, "every check counts")

	code, _ = e.do(http.MethodPut, "/scams/my-warnings/"+ws[0].ScamID+"/dismiss", e.user, nil)
	require.Equal(t, http.StatusOK, code)
	_, res = e.do(http.MethodGet, "/scams/my-warnings", e.user, nil)
	assert.Empty(t, decodeData[[]scam.WarningView](t, res))

	code, _ = e.do(http.MethodPut, "/scams/my-warnings/"+ws[0].ScamID+"/dismiss", e.admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// ─── Review queue ────────────────────────────────────────────────────────────

func TestFlaggedJobReview(t *testing.T) {
	e := newEnv(t)
	// urgency + vague duties + low requirements = 0.7
	code, res := e.do(http.MethodPost, "/scams/analyze-job", e.user, map[string]any{
		"jobData": map[string]any{
			"title":       "Urgent data entry clerk, no experience",
			"description": longDescription,
			"company":     "Acme",
			"location":    "Austin, TX",
		},
	})
	require.Equal(t, http.StatusOK, code, res.Error)
	assert.Equal(t, "flagged_for_review", string(decodeData[scam.Analysis](t, res).Action))

	code, res = e.do(http.MethodGet, "/scams/flagged-jobs?reviewed=false", e.admin, nil)
	require.Equal(t, http.StatusOK, code)
	jobs := decodeData[[]scam.FlaggedJob](t, res)
	require.Len(t, jobs, 1)

	code, _ = e.do(http.MethodPut, "/scams/flagged-jobs/"+jobs[0].ID+"/review", e.admin, map[string]string{"action": "delete"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, res = e.do(http.MethodPut, "/scams/flagged-jobs/"+jobs[0].ID+"/review", e.admin, map[string]string{"action": "ban"})
	require.Equal(t, http.StatusOK, code, res.Error)
	assert.True(t, decodeData[scam.FlaggedJob](t, res).Reviewed)
	assert.Equal(t, 1, e.store.BanCount(scam.BanCompany))

	code, res = e.do(http.MethodPut, "/scams/flagged-jobs/"+jobs[0].ID+"/review", e.admin, map[string]string{"action": "approve"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already reviewed", res.Error)

	code, res = e.do(http.MethodGet, "/scams/banned-entities/stats", e.admin, nil)
	require.Equal(t, http.StatusOK, code)
	st := decodeData[scam.BanStats](t, res)
	assert.Equal(t, 1, st.Total[scam.BanCompany])
	assert.Equal(t, 1, st.Recent[scam.BanCompany])
}
