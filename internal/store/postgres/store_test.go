package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/trust-service/internal/scam"
)

func TestFindReportQuery_URLOnlyWhenPresent(t *testing.T) {
	sql, args, err := findReportQuery(scam.DuplicateKey{Title: "  Data Entry ", CompanyName: "ACME"}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "url")
	assert.Equal(t, []any{"data entry", "acme"}, args)

	sql, args, err = findReportQuery(scam.DuplicateKey{Title: "x", CompanyName: "y", URL: "HTTPS://Jobs.Example/1"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "lower(btrim(url)) = $3")
	assert.Equal(t, []any{"x", "y", "https://jobs.example/1"}, args)
}

func TestMatchQuery_EscapesAndFilters(t *testing.T) {
	sql, args, err := matchQuery(scam.MatchQuery{
		Title:       "100% remote_job",
		CompanyName: "Acme",
		Statuses:    scam.ActiveStatuses,
		Limit:       50,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "status IN ($1,$2,$3)")
	assert.Contains(t, sql, "title ILIKE $4")
	assert.Contains(t, sql, "company_name ILIKE $5")
	assert.NotContains(t, sql, "email ILIKE")
	assert.True(t, strings.HasSuffix(sql, "LIMIT 50"), sql)
	assert.Contains(t, sql, "ORDER BY (status = 'VERIFIED') DESC, CASE severity WHEN 'CRITICAL' THEN 3")
	assert.Less(t, strings.Index(sql, "warning_count DESC"), strings.Index(sql, "LIMIT"))
	assert.Equal(t, `%100\% remote\_job%`, args[3])
	assert.Equal(t, "%Acme%", args[4])
}

func TestUpsertBanQuery(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for kind, want := range map[scam.BanKind]string{
		scam.BanCompany: "INSERT INTO banned_companies (company_name,",
		scam.BanURL:     "INSERT INTO banned_urls (url,",
		scam.BanEmail:   "INSERT INTO banned_emails (email,",
	} {
		sql, args, err := upsertBanQuery(kind, scam.Ban{Key: "k", Reason: "r", BannedAt: at, BannedBy: "admin"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(sql, want), sql)
		assert.Contains(t, sql, "DO UPDATE SET reason = EXCLUDED.reason")
		assert.Equal(t, []any{"k", "r", at, "admin"}, args)
	}

	_, _, err := upsertBanQuery("phone", scam.Ban{Key: "k"})
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("9b2e3c1a-4f5d-4e6b-8a7c-1d2e3f4a5b6c"))
	assert.False(t, validID("42"))
	assert.False(t, validID(""))
}
