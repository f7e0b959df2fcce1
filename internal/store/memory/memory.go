// Package memory implements scam.Store in process memory. It is the storage
// double for service and transport tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jobmate/trust-service/internal/scam"
)

type warningKey struct{ userID, scamID string }

// Store is a mutex-guarded in-memory scam.Store.
type Store struct {
	mu       sync.RWMutex
	reports  []*scam.Report
	bans     map[scam.BanKind]map[string]scam.Ban
	flagged  []*scam.FlaggedJob
	warnings map[warningKey]*scam.Warning
}

var _ scam.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	bans := make(map[scam.BanKind]map[string]scam.Ban, len(scam.BanKinds))
	for _, k := range scam.BanKinds {
		bans[k] = map[string]scam.Ban{}
	}
	return &Store{
		bans:     bans,
		warnings: map[warningKey]*scam.Warning{},
	}
}

// ─── Reports ─────────────────────────────────────────────────────────────────

func (s *Store) InsertReport(_ context.Context, r *scam.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reports = append(s.reports, &cp)
	return nil
}

func (s *Store) GetReport(_ context.Context, id string) (*scam.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.report(id)
	if r == nil {
		return nil, scam.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Store) FindReport(_ context.Context, key scam.DuplicateKey) (*scam.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	title, company, url := fold(key.Title), fold(key.CompanyName), fold(key.URL)
	for _, r := range s.reports {
		if fold(r.Title) != title || fold(r.CompanyName) != company {
			continue
		}
		if url != "" && fold(deref(r.URL)) != url {
			continue
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ListReports(_ context.Context, f scam.ReportFilter) ([]scam.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []scam.Report
	for i := len(s.reports) - 1; i >= 0; i-- {
		r := s.reports[i]
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Severity != "" && r.Severity != f.Severity {
			continue
		}
		if f.ScamType != "" && r.ScamType != f.ScamType {
			continue
		}
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Page, f.Limit), len(out), nil
}

func (s *Store) MatchReports(_ context.Context, q scam.MatchQuery) ([]scam.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := map[scam.Status]bool{}
	for _, st := range q.Statuses {
		allowed[st] = true
	}
	var out []scam.Report
	for _, r := range s.reports {
		if !allowed[r.Status] {
			continue
		}
		if contains(r.Title, q.Title) || contains(r.CompanyName, q.CompanyName) ||
			contains(deref(r.URL), q.URL) || contains(deref(r.Email), q.Email) {
			out = append(out, *r)
		}
	}
	scam.SortMatches(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) SetReportStatus(_ context.Context, id string, st scam.Status, verifiedBy *string, verifiedAt *time.Time) (*scam.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report(id)
	if r == nil {
		return nil, scam.ErrNotFound
	}
	r.Status = st
	if verifiedBy != nil {
		r.VerifiedBy = verifiedBy
		r.VerifiedAt = verifiedAt
	}
	cp := *r
	return &cp, nil
}

func (s *Store) IncrementWarningCount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report(id)
	if r == nil {
		return scam.ErrNotFound
	}
	r.WarningCount++
	return nil
}

func (s *Store) ReportStats(_ context.Context) (*scam.ReportStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &scam.ReportStats{
		ByStatus:   map[string]int{},
		BySeverity: map[string]int{},
		ByScamType: map[string]int{},
	}
	for _, r := range s.reports {
		st.Total++
		st.ByStatus[string(r.Status)]++
		st.BySeverity[string(r.Severity)]++
		st.ByScamType[r.ScamType]++
		st.TotalWarnings += r.WarningCount
	}
	return st, nil
}

func (s *Store) report(id string) *scam.Report {
	for _, r := range s.reports {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// ─── Bans ────────────────────────────────────────────────────────────────────

func (s *Store) UpsertBan(_ context.Context, kind scam.BanKind, b scam.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[kind][b.Key] = b
	return nil
}

func (s *Store) GetBan(_ context.Context, kind scam.BanKind, key string) (*scam.Ban, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bans[kind][key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) BanStats(_ context.Context, since time.Time) (*scam.BanStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &scam.BanStats{Total: map[scam.BanKind]int{}, Recent: map[scam.BanKind]int{}}
	for _, kind := range scam.BanKinds {
		st.Total[kind] = len(s.bans[kind])
		st.Recent[kind] = 0
		for _, b := range s.bans[kind] {
			if !b.BannedAt.Before(since) {
				st.Recent[kind]++
			}
		}
	}
	return st, nil
}

// BanCount returns the number of records in one registry.
func (s *Store) BanCount(kind scam.BanKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bans[kind])
}

// ─── Review queue ────────────────────────────────────────────────────────────

func (s *Store) InsertFlaggedJob(_ context.Context, j *scam.FlaggedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.flagged = append(s.flagged, &cp)
	return nil
}

func (s *Store) ListFlaggedJobs(_ context.Context, f scam.FlaggedFilter) ([]scam.FlaggedJob, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []scam.FlaggedJob
	for _, j := range s.flagged {
		if f.Reviewed != nil && j.Reviewed != *f.Reviewed {
			continue
		}
		out = append(out, *j)
	}
	return page(out, f.Page, f.Limit), len(out), nil
}

func (s *Store) ReviewFlaggedJob(_ context.Context, id string, action scam.ReviewAction, by string, at time.Time) (*scam.FlaggedJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.flagged {
		if j.ID != id {
			continue
		}
		if j.Reviewed {
			return nil, scam.ErrAlreadyReviewed
		}
		j.Reviewed = true
		j.ReviewedAt = &at
		j.ReviewedBy = &by
		j.ReviewAction = &action
		cp := *j
		return &cp, nil
	}
	return nil, scam.ErrNotFound
}

func (s *Store) CountPendingFlaggedJobs(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, j := range s.flagged {
		if !j.Reviewed {
			n++
		}
	}
	return n, nil
}

// ─── Warnings ────────────────────────────────────────────────────────────────

func (s *Store) UpsertWarning(_ context.Context, userID, scamID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := warningKey{userID, scamID}
	if w, ok := s.warnings[k]; ok {
		w.WarnedAt = at
		return false, nil
	}
	s.warnings[k] = &scam.Warning{UserID: userID, ScamID: scamID, WarnedAt: at}
	return true, nil
}

func (s *Store) ListWarnings(_ context.Context, userID string) ([]scam.WarningView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []scam.WarningView
	for k, w := range s.warnings {
		if k.userID != userID || w.Dismissed {
			continue
		}
		r := s.report(k.scamID)
		if r == nil {
			continue
		}
		out = append(out, scam.WarningView{
			Warning:     *w,
			Title:       r.Title,
			CompanyName: r.CompanyName,
			ScamType:    r.ScamType,
			Severity:    r.Severity,
			Status:      r.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarnedAt.After(out[j].WarnedAt) })
	return out, nil
}

func (s *Store) DismissWarning(_ context.Context, userID, scamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.warnings[warningKey{userID, scamID}]
	if !ok {
		return scam.ErrNotFound
	}
	w.Dismissed = true
	return nil
}

// Warning returns the raw (userID, scamID) warning, or nil.
func (s *Store) Warning(userID, scamID string) *scam.Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.warnings[warningKey{userID, scamID}]
	if !ok {
		return nil
	}
	cp := *w
	return &cp
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func page[T any](items []T, p, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (p - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains(field, needle string) bool {
	needle = fold(needle)
	return needle != "" && strings.Contains(strings.ToLower(field), needle)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
