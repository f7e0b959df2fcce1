// Package postgres implements scam.Store on PostgreSQL.
//
// Queries are built with squirrel and scanned with scany. Ban registries
// live in three tables whose key column is aliased to "key" on read so the
// three kinds share one scan target.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/trust-service/internal/scam"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is the PostgreSQL scam.Store.
type Store struct {
	db DBTX
}

var _ scam.Store = (*Store)(nil)

// New returns a Store backed by db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

var reportColumns = []string{
	"id", "reported_by", "title", "company_name", "location", "description",
	"url", "email", "phone", "salary", "employment_type", "scam_type",
	"severity", "status", "source", "ai_confidence", "evidence_urls", "notes",
	"warning_count", "verified_by", "verified_at", "created_at",
}

var flaggedColumns = []string{
	"id", "title", "company_name", "description", "url", "contact_email",
	"flagged_reason", "ai_confidence", "flagged_by", "reviewed", "reviewed_at",
	"reviewed_by", "review_action", "created_at",
}

// banTables maps each registry to its table and natural-key column.
var banTables = map[scam.BanKind]struct{ table, key string }{
	scam.BanCompany: {"banned_companies", "company_name"},
	scam.BanURL:     {"banned_urls", "url"},
	scam.BanEmail:   {"banned_emails", "email"},
}

// ─── Reports ─────────────────────────────────────────────────────────────────

func (s *Store) InsertReport(ctx context.Context, r *scam.Report) error {
	sql, args, err := psql.Insert("scam_reports").
		Columns(reportColumns...).
		Values(
			r.ID, r.ReportedBy, r.Title, r.CompanyName, r.Location, r.Description,
			r.URL, r.Email, r.Phone, r.Salary, r.EmploymentType, r.ScamType,
			string(r.Severity), string(r.Status), string(r.Source), r.AIConfidence,
			r.EvidenceURLs, r.Notes, r.WarningCount, r.VerifiedBy, r.VerifiedAt, r.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert report: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*scam.Report, error) {
	if !validID(id) {
		return nil, scam.ErrNotFound
	}
	sql, args, err := psql.Select(reportColumns...).
		From("scam_reports").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get report: %w", err)
	}
	var r scam.Report
	if err := pgxscan.Get(ctx, s.db, &r, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, scam.ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &r, nil
}

func (s *Store) FindReport(ctx context.Context, key scam.DuplicateKey) (*scam.Report, error) {
	sql, args, err := findReportQuery(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find report: %w", err)
	}
	var r scam.Report
	if err := pgxscan.Get(ctx, s.db, &r, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &r, nil
}

func findReportQuery(key scam.DuplicateKey) sq.SelectBuilder {
	q := psql.Select(reportColumns...).
		From("scam_reports").
		Where(sq.Expr("lower(btrim(title)) = ?", fold(key.Title))).
		Where(sq.Expr("lower(btrim(company_name)) = ?", fold(key.CompanyName)))
	if url := fold(key.URL); url != "" {
		q = q.Where(sq.Expr("lower(btrim(url)) = ?", url))
	}
	return q.OrderBy("created_at ASC").Limit(1)
}

func (s *Store) ListReports(ctx context.Context, f scam.ReportFilter) ([]scam.Report, int, error) {
	where := sq.Eq{}
	if f.Status != "" {
		where["status"] = string(f.Status)
	}
	if f.Severity != "" {
		where["severity"] = string(f.Severity)
	}
	if f.ScamType != "" {
		where["scam_type"] = f.ScamType
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("scam_reports").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count reports: %w", err)
	}
	var total int
	if err := pgxscan.Get(ctx, s.db, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	q := psql.Select(reportColumns...).
		From("scam_reports").
		Where(where).
		OrderBy("created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64((max(f.Page, 1) - 1) * f.Limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reports: %w", err)
	}
	reports := []scam.Report{}
	if err := pgxscan.Select(ctx, s.db, &reports, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func (s *Store) MatchReports(ctx context.Context, q scam.MatchQuery) ([]scam.Report, error) {
	sql, args, err := matchQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build match reports: %w", err)
	}
	reports := []scam.Report{}
	if err := pgxscan.Select(ctx, s.db, &reports, sql, args...); err != nil {
		return nil, fmt.Errorf("match reports: %w", err)
	}
	return reports, nil
}

// matchOrder ranks matches before LIMIT applies, so a VERIFIED report is
// never cut off by newer unverified ones.
var matchOrder = []string{
	"(status = 'VERIFIED') DESC",
	"CASE severity WHEN 'CRITICAL' THEN 3 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END DESC",
	"warning_count DESC",
	"created_at DESC",
}

func matchQuery(q scam.MatchQuery) sq.SelectBuilder {
	fields := sq.Or{}
	for _, f := range []struct{ col, v string }{
		{"title", q.Title},
		{"company_name", q.CompanyName},
		{"url", q.URL},
		{"email", q.Email},
	} {
		if v := strings.TrimSpace(f.v); v != "" {
			fields = append(fields, sq.ILike{f.col: "%" + escapeLike(v) + "%"})
		}
	}

	statuses := make([]string, 0, len(q.Statuses))
	for _, st := range q.Statuses {
		statuses = append(statuses, string(st))
	}

	b := psql.Select(reportColumns...).
		From("scam_reports").
		Where(sq.Eq{"status": statuses}).
		Where(fields).
		OrderBy(matchOrder...)
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}

func (s *Store) SetReportStatus(ctx context.Context, id string, st scam.Status, verifiedBy *string, verifiedAt *time.Time) (*scam.Report, error) {
	if !validID(id) {
		return nil, scam.ErrNotFound
	}
	q := psql.Update("scam_reports").
		Set("status", string(st)).
		Where(sq.Eq{"id": id})
	if verifiedBy != nil {
		q = q.Set("verified_by", *verifiedBy).Set("verified_at", verifiedAt)
	}
	sql, args, err := q.Suffix("RETURNING " + strings.Join(reportColumns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set report status: %w", err)
	}
	var r scam.Report
	if err := pgxscan.Get(ctx, s.db, &r, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, scam.ErrNotFound
		}
		return nil, fmt.Errorf("set report status: %w", err)
	}
	return &r, nil
}

func (s *Store) IncrementWarningCount(ctx context.Context, id string) error {
	if !validID(id) {
		return scam.ErrNotFound
	}
	sql, args, err := psql.Update("scam_reports").
		Set("warning_count", sq.Expr("warning_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment warning count: %w", err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("increment warning count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return scam.ErrNotFound
	}
	return nil
}

type bucket struct {
	Key string `db:"key"`
	N   int    `db:"n"`
}

func (s *Store) ReportStats(ctx context.Context) (*scam.ReportStats, error) {
	st := &scam.ReportStats{}

	var totals struct {
		Total    int `db:"total"`
		Warnings int `db:"warnings"`
	}
	if err := pgxscan.Get(ctx, s.db, &totals,
		`SELECT count(*) AS total, COALESCE(sum(warning_count), 0) AS warnings FROM scam_reports`); err != nil {
		return nil, fmt.Errorf("report totals: %w", err)
	}
	st.Total, st.TotalWarnings = totals.Total, totals.Warnings

	for col, dst := range map[string]*map[string]int{
		"status":    &st.ByStatus,
		"severity":  &st.BySeverity,
		"scam_type": &st.ByScamType,
	} {
		sql, args, err := psql.Select(col+" AS key", "count(*) AS n").
			From("scam_reports").
			GroupBy(col).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build report stats by %s: %w", col, err)
		}
		var rows []bucket
		if err := pgxscan.Select(ctx, s.db, &rows, sql, args...); err != nil {
			return nil, fmt.Errorf("report stats by %s: %w", col, err)
		}
		m := make(map[string]int, len(rows))
		for _, b := range rows {
			m[b.Key] = b.N
		}
		*dst = m
	}
	return st, nil
}

// ─── Bans ────────────────────────────────────────────────────────────────────

func (s *Store) UpsertBan(ctx context.Context, kind scam.BanKind, b scam.Ban) error {
	sql, args, err := upsertBanQuery(kind, b)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert %s ban: %w", kind, err)
	}
	return nil
}

func upsertBanQuery(kind scam.BanKind, b scam.Ban) (string, []any, error) {
	t, ok := banTables[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown ban kind %q", kind)
	}
	return psql.Insert(t.table).
		Columns(t.key, "reason", "banned_at", "banned_by").
		Values(b.Key, b.Reason, b.BannedAt, b.BannedBy).
		Suffix("ON CONFLICT (" + t.key + ") DO UPDATE SET " +
			"reason = EXCLUDED.reason, banned_at = EXCLUDED.banned_at, banned_by = EXCLUDED.banned_by").
		ToSql()
}

func (s *Store) GetBan(ctx context.Context, kind scam.BanKind, key string) (*scam.Ban, error) {
	t, ok := banTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown ban kind %q", kind)
	}
	sql, args, err := psql.Select(t.key+" AS key", "reason", "banned_at", "banned_by").
		From(t.table).
		Where(sq.Eq{t.key: key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get %s ban: %w", kind, err)
	}
	var b scam.Ban
	if err := pgxscan.Get(ctx, s.db, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s ban: %w", kind, err)
	}
	return &b, nil
}

func (s *Store) BanStats(ctx context.Context, since time.Time) (*scam.BanStats, error) {
	st := &scam.BanStats{Total: map[scam.BanKind]int{}, Recent: map[scam.BanKind]int{}}
	for _, kind := range scam.BanKinds {
		sql, args, err := psql.Select("count(*) AS total").
			Column(sq.Expr("count(*) FILTER (WHERE banned_at >= ?) AS recent", since)).
			From(banTables[kind].table).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build %s ban stats: %w", kind, err)
		}
		var row struct {
			Total  int `db:"total"`
			Recent int `db:"recent"`
		}
		if err := pgxscan.Get(ctx, s.db, &row, sql, args...); err != nil {
			return nil, fmt.Errorf("%s ban stats: %w", kind, err)
		}
		st.Total[kind], st.Recent[kind] = row.Total, row.Recent
	}
	return st, nil
}

// ─── Review queue ────────────────────────────────────────────────────────────

func (s *Store) InsertFlaggedJob(ctx context.Context, j *scam.FlaggedJob) error {
	sql, args, err := psql.Insert("flagged_jobs").
		Columns("id", "title", "company_name", "description", "url", "contact_email",
			"flagged_reason", "ai_confidence", "flagged_by", "created_at").
		Values(j.ID, j.Title, j.CompanyName, j.Description, j.URL, j.ContactEmail,
			j.FlaggedReason, j.AIConfidence, j.FlaggedBy, j.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert flagged job: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert flagged job: %w", err)
	}
	return nil
}

func (s *Store) ListFlaggedJobs(ctx context.Context, f scam.FlaggedFilter) ([]scam.FlaggedJob, int, error) {
	where := sq.Eq{}
	if f.Reviewed != nil {
		where["reviewed"] = *f.Reviewed
	}

	countSQL, countArgs, err := psql.Select("count(*)").From("flagged_jobs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count flagged jobs: %w", err)
	}
	var total int
	if err := pgxscan.Get(ctx, s.db, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count flagged jobs: %w", err)
	}

	q := psql.Select(flaggedColumns...).
		From("flagged_jobs").
		Where(where).
		OrderBy("created_at ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64((max(f.Page, 1) - 1) * f.Limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list flagged jobs: %w", err)
	}
	jobs := []scam.FlaggedJob{}
	if err := pgxscan.Select(ctx, s.db, &jobs, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list flagged jobs: %w", err)
	}
	return jobs, total, nil
}

// ReviewFlaggedJob updates only unreviewed rows, so two concurrent reviews
// cannot both succeed.
func (s *Store) ReviewFlaggedJob(ctx context.Context, id string, action scam.ReviewAction, by string, at time.Time) (*scam.FlaggedJob, error) {
	if !validID(id) {
		return nil, scam.ErrNotFound
	}
	sql, args, err := psql.Update("flagged_jobs").
		Set("reviewed", true).
		Set("reviewed_at", at).
		Set("reviewed_by", by).
		Set("review_action", string(action)).
		Where(sq.Eq{"id": id, "reviewed": false}).
		Suffix("RETURNING " + strings.Join(flaggedColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review flagged job: %w", err)
	}

	var j scam.FlaggedJob
	err = pgxscan.Get(ctx, s.db, &j, sql, args...)
	if err == nil {
		return &j, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("review flagged job: %w", err)
	}

	var exists bool
	if err := pgxscan.Get(ctx, s.db, &exists,
		`SELECT exists(SELECT 1 FROM flagged_jobs WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("review flagged job lookup: %w", err)
	}
	if exists {
		return nil, scam.ErrAlreadyReviewed
	}
	return nil, scam.ErrNotFound
}

func (s *Store) CountPendingFlaggedJobs(ctx context.Context) (int, error) {
	var n int
	if err := pgxscan.Get(ctx, s.db, &n,
		`SELECT count(*) FROM flagged_jobs WHERE NOT reviewed`); err != nil {
		return 0, fmt.Errorf("count pending flagged jobs: %w", err)
	}
	return n, nil
}

// ─── Warnings ────────────────────────────────────────────────────────────────

// UpsertWarning relies on xmax being zero only for freshly inserted rows.
func (s *Store) UpsertWarning(ctx context.Context, userID, scamID string, at time.Time) (bool, error) {
	sql, args, err := psql.Insert("user_scam_warnings").
		Columns("user_id", "scam_id", "warned_at").
		Values(userID, scamID, at).
		Suffix("ON CONFLICT (user_id, scam_id) DO UPDATE SET warned_at = EXCLUDED.warned_at " +
			"RETURNING (xmax = 0) AS created").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert warning: %w", err)
	}
	var created bool
	if err := pgxscan.Get(ctx, s.db, &created, sql, args...); err != nil {
		return false, fmt.Errorf("upsert warning: %w", err)
	}
	return created, nil
}

func (s *Store) ListWarnings(ctx context.Context, userID string) ([]scam.WarningView, error) {
	sql, args, err := psql.Select(
		"w.user_id", "w.scam_id", "w.warned_at", "w.dismissed",
		"r.title", "r.company_name", "r.scam_type", "r.severity", "r.status",
	).
		From("user_scam_warnings w").
		Join("scam_reports r ON r.id = w.scam_id").
		Where(sq.Eq{"w.user_id": userID, "w.dismissed": false}).
		OrderBy("w.warned_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list warnings: %w", err)
	}
	ws := []scam.WarningView{}
	if err := pgxscan.Select(ctx, s.db, &ws, sql, args...); err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	return ws, nil
}

func (s *Store) DismissWarning(ctx context.Context, userID, scamID string) error {
	if !validID(scamID) {
		return scam.ErrNotFound
	}
	sql, args, err := psql.Update("user_scam_warnings").
		Set("dismissed", true).
		Where(sq.Eq{"user_id": userID, "scam_id": scamID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build dismiss warning: %w", err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("dismiss warning: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return scam.ErrNotFound
	}
	return nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// validID rejects ids that would make Postgres fail the uuid cast; those
// can never exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
