// Package scam contains the trust-and-safety business logic: scam reports,
// ban registries, the review queue, match detection and user warnings.
// It is transport-agnostic: used by the HTTP handlers and the gRPC server.
package scam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobmate/trust-service/internal/enforcement"
	"jobmate/trust-service/internal/metrics"
	"jobmate/trust-service/internal/scoring"
)

const (
	// SystemActor is recorded as flaggedBy / bannedBy / reportedBy for
	// automated enforcement.
	SystemActor = "ai_system"

	defaultPageSize  = 20
	maxPageSize      = 100
	matchLimit       = 50
	maxWarnedMatches = 3
	recentBanWindow  = 7 * 24 * time.Hour
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates all trust-and-safety business logic.
type Service struct {
	store  Store
	events Publisher
	now    func() time.Time
	newID  func() string
}

// NewService returns a configured Service.
func NewService(store Store, events Publisher) *Service {
	return &Service{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// ─── Manual reports ──────────────────────────────────────────────────────────

// CreateReport files a manual scam report on behalf of userID.
// Returns *ValidationError for missing fields and *DuplicateReportError when
// an identical posting was already reported.
func (s *Service) CreateReport(ctx context.Context, userID string, in ReportInput) (*Report, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	switch {
	case in.Title == "":
		return nil, &ValidationError{Msg: "title is required"}
	case in.CompanyName == "":
		return nil, &ValidationError{Msg: "companyName is required"}
	case in.ScamType == "":
		return nil, &ValidationError{Msg: "scamType is required"}
	case !ValidScamType(in.ScamType):
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown scamType %q", in.ScamType)}
	}

	existing, err := s.store.FindReport(ctx, DuplicateKey{Title: in.Title, CompanyName: in.CompanyName, URL: in.URL})
	if err != nil {
		return nil, fmt.Errorf("createReport find duplicate: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateReportError{ExistingID: existing.ID}
	}

	verdict := scoring.Score(scoring.Posting{
		Title:        in.Title,
		Company:      in.CompanyName,
		Description:  in.Description,
		Location:     in.Location,
		ContactEmail: in.Email,
		Salary:       in.Salary,
	})

	evidence := in.EvidenceURLs
	if evidence == nil {
		evidence = []string{}
	}
	r := &Report{
		ID:             s.newID(),
		ReportedBy:     userID,
		Title:          in.Title,
		CompanyName:    in.CompanyName,
		Location:       optional(in.Location),
		Description:    optional(in.Description),
		URL:            optional(in.URL),
		Email:          optional(in.Email),
		Phone:          optional(in.Phone),
		Salary:         optional(in.Salary),
		EmploymentType: optional(in.EmploymentType),
		ScamType:       in.ScamType,
		Severity:       verdict.Severity,
		Status:         StatusReported,
		Source:         SourceManual,
		EvidenceURLs:   evidence,
		Notes:          optional(in.Notes),
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertReport(ctx, r); err != nil {
		return nil, fmt.Errorf("createReport insert: %w", err)
	}

	s.publish(ctx, EventScamReported, map[string]string{
		"scamId":     r.ID,
		"reportedBy": userID,
		"source":     string(r.Source),
	})
	return r, nil
}

// ─── AI analysis ─────────────────────────────────────────────────────────────

// AnalyzeJob scores a posting, decides the enforcement action and applies its
// side effect. Side-effect failures are logged and never fail the call.
func (s *Service) AnalyzeJob(ctx context.Context, userID string, job JobData) (*Analysis, error) {
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return nil, &ValidationError{Msg: "jobData.title and jobData.company are required"}
	}

	verdict := scoring.Score(scoring.Posting{
		Title:        job.Title,
		Company:      job.Company,
		Description:  job.Description,
		Location:     job.Location,
		ContactEmail: job.ContactEmail,
		Salary:       job.Salary,
	})
	action := enforcement.Decide(verdict.Confidence)
	metrics.RecordDecision(string(action), verdict.Confidence)

	switch action {
	case enforcement.ActionBan:
		s.banJob(ctx, job, verdict)
	case enforcement.ActionFlag:
		s.flagJob(ctx, job, verdict)
	}

	slog.Info("job analyzed",
		"requestedBy", userID, "company", job.Company,
		"confidence", verdict.Confidence, "action", action)

	return &Analysis{IsScam: verdict.IsScam, Analysis: verdict, Action: action}, nil
}

// banJob records the posting as a scam report and propagates the ban.
func (s *Service) banJob(ctx context.Context, job JobData, verdict scoring.Result) {
	status := StatusReported
	var verifiedBy *string
	var verifiedAt *time.Time
	if enforcement.AutoVerify(verdict.Confidence) {
		status = StatusVerified
		verifiedBy, verifiedAt = optional(SystemActor), ptr(s.now())
	}

	conf := verdict.Confidence
	report := &Report{
		ID:             s.newID(),
		ReportedBy:     SystemActor,
		Title:          strings.TrimSpace(job.Title),
		CompanyName:    strings.TrimSpace(job.Company),
		Location:       optional(job.Location),
		Description:    optional(job.Description),
		URL:            optional(job.URL),
		Email:          optional(job.ContactEmail),
		Phone:          optional(job.ContactPhone),
		Salary:         optional(job.Salary),
		EmploymentType: optional(job.JobType),
		ScamType:       verdict.ScamType,
		Severity:       verdict.Severity,
		Status:         status,
		Source:         SourceAI,
		AIConfidence:   &conf,
		EvidenceURLs:   []string{},
		Notes:          optional("AI analysis: " + verdict.Reasoning),
		VerifiedBy:     verifiedBy,
		VerifiedAt:     verifiedAt,
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertReport(ctx, report); err != nil {
		slog.Error("auto-create scam report failed", "company", job.Company, "err", err)
		metrics.RecordEnforcementFailure("scam_report")
	}

	s.propagateBan(ctx, job.Company, job.URL, job.ContactEmail,
		"AI analysis ("+strconv.FormatFloat(verdict.Confidence, 'f', 2, 64)+"): "+verdict.Reasoning,
		SystemActor)

	s.publish(ctx, EventJobBanned, map[string]string{
		"company":    job.Company,
		"confidence": strconv.FormatFloat(verdict.Confidence, 'f', 2, 64),
		"scamType":   verdict.ScamType,
	})
}

// propagateBan upserts the company, URL and email registries independently.
// A failure on one registry does not stop the others.
func (s *Service) propagateBan(ctx context.Context, company, url, email, reason, by string) {
	keys := map[BanKind]string{
		BanCompany: company,
		BanURL:     url,
		BanEmail:   email,
	}
	at := s.now()
	for _, kind := range BanKinds {
		key := NormalizeKey(keys[kind])
		if key == "" {
			continue
		}
		err := s.store.UpsertBan(ctx, kind, Ban{Key: key, Reason: reason, BannedAt: at, BannedBy: by})
		if err != nil {
			slog.Error("ban propagation failed", "kind", kind, "key", key, "err", err)
			metrics.RecordEnforcementFailure("ban_" + string(kind))
		}
	}
}

// flagJob queues the posting for admin review.
func (s *Service) flagJob(ctx context.Context, job JobData, verdict scoring.Result) {
	j := &FlaggedJob{
		ID:            s.newID(),
		Title:         strings.TrimSpace(job.Title),
		CompanyName:   strings.TrimSpace(job.Company),
		Description:   job.Description,
		URL:           optional(job.URL),
		ContactEmail:  optional(job.ContactEmail),
		FlaggedReason: verdict.Reasoning,
		AIConfidence:  verdict.Confidence,
		FlaggedBy:     SystemActor,
		CreatedAt:     s.now(),
	}
	if err := s.store.InsertFlaggedJob(ctx, j); err != nil {
		slog.Error("flag job failed", "company", job.Company, "err", err)
		metrics.RecordEnforcementFailure("flagged_job")
		return
	}

	s.publish(ctx, EventJobFlagged, map[string]string{
		"flaggedJobId": j.ID,
		"company":      j.CompanyName,
		"confidence":   strconv.FormatFloat(verdict.Confidence, 'f', 2, 64),
	})
}

// ─── Ban lookup ──────────────────────────────────────────────────────────────

// CheckBanned looks up each provided key in its registry.
func (s *Service) CheckBanned(ctx context.Context, q BanQuery) (*BanCheck, error) {
	keys := map[BanKind]string{
		BanCompany: NormalizeKey(q.Company),
		BanURL:     NormalizeKey(q.URL),
		BanEmail:   NormalizeKey(q.Email),
	}
	if keys[BanCompany] == "" && keys[BanURL] == "" && keys[BanEmail] == "" {
		return nil, &ValidationError{Msg: "at least one of company, url or email is required"}
	}

	res := &BanCheck{Reasons: []string{}}
	for _, kind := range BanKinds {
		if keys[kind] == "" {
			continue
		}
		b, err := s.store.GetBan(ctx, kind, keys[kind])
		if err != nil {
			return nil, fmt.Errorf("checkBanned %s: %w", kind, err)
		}
		if b == nil {
			continue
		}
		res.IsBanned = true
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s banned: %s", kind, b.Reason))
		switch kind {
		case BanCompany:
			res.BannedCompany = b
		case BanURL:
			res.BannedURL = b
		case BanEmail:
			res.BannedEmail = b
		}
	}
	return res, nil
}

// BannedStats counts registry entries overall and over the last seven days.
func (s *Service) BannedStats(ctx context.Context) (*BanStats, error) {
	st, err := s.store.BanStats(ctx, s.now().Add(-recentBanWindow))
	if err != nil {
		return nil, fmt.Errorf("bannedStats: %w", err)
	}
	return st, nil
}

// ─── Match detection & warnings ──────────────────────────────────────────────

// Check looks up reports resembling the candidate and, when the risk is not
// LOW, records warnings for the caller against the top matches.
func (s *Service) Check(ctx context.Context, userID string, c Candidate) (*CheckResult, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.Title == "" || c.CompanyName == "" {
		return nil, &ValidationError{Msg: "title and companyName are required"}
	}

	matches, err := s.store.MatchReports(ctx, MatchQuery{
		Title:       c.Title,
		CompanyName: c.CompanyName,
		URL:         strings.TrimSpace(c.URL),
		Email:       strings.TrimSpace(c.Email),
		Statuses:    ActiveStatuses,
		Limit:       matchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("check match: %w", err)
	}
	SortMatches(matches)

	res := &CheckResult{
		RiskLevel:     RiskFor(matches),
		Warnings:      []string{},
		MatchingScams: matches,
	}
	if res.MatchingScams == nil {
		res.MatchingScams = []Report{}
	}

	switch res.RiskLevel {
	case RiskHigh:
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("This posting matches %d verified scam report(s). Do not send money or personal information.", countStatus(matches, StatusVerified)))
	case RiskMedium:
		res.Warnings = append(res.Warnings,
			"This posting resembles high-severity scam reports. Verify the employer independently before applying.")
	default:
		if len(matches) > 0 {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("This posting resembles %d reported posting(s). Stay cautious.", len(matches)))
		}
	}

	if res.RiskLevel != RiskLow {
		top := matches
		if len(top) > maxWarnedMatches {
			top = top[:maxWarnedMatches]
		}
		s.warn(ctx, userID, top)
	}
	return res, nil
}

// warn upserts a warning and bumps the report counter for each match, on
// every call. Matches are handled concurrently; failures are logged per match.
func (s *Service) warn(ctx context.Context, userID string, reports []Report) {
	at := s.now()
	var wg sync.WaitGroup
	for _, r := range reports {
		wg.Add(1)
		go func(scamID string) {
			defer wg.Done()
			created, err := s.store.UpsertWarning(ctx, userID, scamID, at)
			if err != nil {
				slog.Warn("upsert warning failed", "userId", userID, "scamId", scamID, "err", err)
				return
			}
			if created {
				metrics.RecordWarningCreated()
			}
			if err := s.store.IncrementWarningCount(ctx, scamID); err != nil {
				slog.Warn("increment warning count failed", "scamId", scamID, "err", err)
			}
		}(r.ID)
	}
	wg.Wait()
}

// SortMatches orders reports VERIFIED first, then by severity, then by
// warning count, all descending.
func SortMatches(rs []Report) {
	sort.SliceStable(rs, func(i, j int) bool {
		vi, vj := rs[i].Status == StatusVerified, rs[j].Status == StatusVerified
		if vi != vj {
			return vi
		}
		if si, sj := severityRank(rs[i].Severity), severityRank(rs[j].Severity); si != sj {
			return si > sj
		}
		return rs[i].WarningCount > rs[j].WarningCount
	})
}

// RiskFor derives the risk level of a set of matches.
func RiskFor(rs []Report) RiskLevel {
	risk := RiskLow
	for _, r := range rs {
		if r.Status == StatusVerified {
			return RiskHigh
		}
		if r.Severity == scoring.SeverityHigh || r.Severity == scoring.SeverityCritical {
			risk = RiskMedium
		}
	}
	return risk
}

// MyWarnings lists the caller's active warnings, newest first.
func (s *Service) MyWarnings(ctx context.Context, userID string) ([]WarningView, error) {
	ws, err := s.store.ListWarnings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("myWarnings: %w", err)
	}
	if ws == nil {
		ws = []WarningView{}
	}
	return ws, nil
}

// DismissWarning hides a warning from the caller's list.
func (s *Service) DismissWarning(ctx context.Context, userID, scamID string) error {
	if err := s.store.DismissWarning(ctx, userID, scamID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("dismissWarning: %w", err)
	}
	return nil
}

// ─── Registry listing & admin lifecycle ──────────────────────────────────────

// ListReports returns one page of reports, newest first.
func (s *Service) ListReports(ctx context.Context, f ReportFilter) ([]Report, *Pagination, error) {
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, nil, &ValidationError{Msg: err.Error()}
		}
	}
	if f.Severity != "" {
		if _, err := ParseSeverity(string(f.Severity)); err != nil {
			return nil, nil, &ValidationError{Msg: err.Error()}
		}
	}
	if f.ScamType != "" && !ValidScamType(f.ScamType) {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("unknown scamType %q", f.ScamType)}
	}
	f.Page, f.Limit = clampPage(f.Page, f.Limit)

	reports, total, err := s.store.ListReports(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("listReports: %w", err)
	}
	if reports == nil {
		reports = []Report{}
	}
	return reports, paginate(f.Page, f.Limit, total), nil
}

// Stats aggregates the report registry.
func (s *Service) Stats(ctx context.Context) (*ReportStats, error) {
	st, err := s.store.ReportStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// StartReview moves a REPORTED report to UNDER_REVIEW.
func (s *Service) StartReview(ctx context.Context, adminID, scamID string) (*Report, error) {
	return s.transition(ctx, adminID, scamID, StatusUnderReview)
}

// Verify marks a report VERIFIED. The transition is one-way.
func (s *Service) Verify(ctx context.Context, adminID, scamID string) (*Report, error) {
	r, err := s.transition(ctx, adminID, scamID, StatusVerified)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventScamVerified, map[string]string{
		"scamId":     r.ID,
		"verifiedBy": adminID,
	})
	return r, nil
}

func (s *Service) transition(ctx context.Context, adminID, scamID string, to Status) (*Report, error) {
	current, err := s.store.GetReport(ctx, scamID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transition get: %w", err)
	}
	if !IsTransitionAllowed(current.Status, to) {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", current.Status, to),
		}
	}

	var verifiedBy *string
	var verifiedAt *time.Time
	if to == StatusVerified {
		verifiedBy, verifiedAt = optional(adminID), ptr(s.now())
	}
	r, err := s.store.SetReportStatus(ctx, scamID, to, verifiedBy, verifiedAt)
	if err != nil {
		return nil, fmt.Errorf("transition update: %w", err)
	}
	return r, nil
}

// ─── Review queue ────────────────────────────────────────────────────────────

// ListFlaggedJobs returns one page of the review queue, oldest first.
func (s *Service) ListFlaggedJobs(ctx context.Context, f FlaggedFilter) ([]FlaggedJob, *Pagination, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit)
	jobs, total, err := s.store.ListFlaggedJobs(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("listFlaggedJobs: %w", err)
	}
	if jobs == nil {
		jobs = []FlaggedJob{}
	}
	return jobs, paginate(f.Page, f.Limit, total), nil
}

// ReviewFlaggedJob applies an admin decision to a flagged job exactly once.
// A ban decision records a verified report and propagates the ban.
func (s *Service) ReviewFlaggedJob(ctx context.Context, adminID, id, action string) (*FlaggedJob, error) {
	ra := ReviewAction(action)
	if ra != ReviewApprove && ra != ReviewBan {
		return nil, &ValidationError{Msg: fmt.Sprintf("action must be %q or %q", ReviewApprove, ReviewBan)}
	}

	j, err := s.store.ReviewFlaggedJob(ctx, id, ra, adminID, s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyReviewed) {
			return nil, err
		}
		return nil, fmt.Errorf("reviewFlaggedJob: %w", err)
	}

	if ra == ReviewBan {
		s.banReviewed(ctx, adminID, j)
	}
	return j, nil
}

func (s *Service) banReviewed(ctx context.Context, adminID string, j *FlaggedJob) {
	verdict := scoring.Score(scoring.Posting{
		Title:        j.Title,
		Company:      j.CompanyName,
		Description:  j.Description,
		ContactEmail: deref(j.ContactEmail),
	})
	conf := j.AIConfidence
	report := &Report{
		ID:           s.newID(),
		ReportedBy:   j.FlaggedBy,
		Title:        j.Title,
		CompanyName:  j.CompanyName,
		Description:  optional(j.Description),
		URL:          j.URL,
		Email:        j.ContactEmail,
		ScamType:     verdict.ScamType,
		Severity:     scoring.SeverityFor(j.AIConfidence),
		Status:       StatusVerified,
		Source:       SourceAI,
		AIConfidence: &conf,
		EvidenceURLs: []string{},
		Notes:        optional("Confirmed by admin review: " + j.FlaggedReason),
		VerifiedBy:   optional(adminID),
		VerifiedAt:   ptr(s.now()),
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertReport(ctx, report); err != nil {
		slog.Error("review ban report failed", "flaggedJobId", j.ID, "err", err)
		metrics.RecordEnforcementFailure("scam_report")
	}

	s.propagateBan(ctx, j.CompanyName, deref(j.URL), deref(j.ContactEmail),
		"Admin review: "+j.FlaggedReason, adminID)

	s.publish(ctx, EventJobBanned, map[string]string{
		"flaggedJobId": j.ID,
		"company":      j.CompanyName,
		"bannedBy":     adminID,
	})
}

// PendingReviews counts flagged jobs that have not been reviewed.
func (s *Service) PendingReviews(ctx context.Context) (int, error) {
	return s.store.CountPendingFlaggedJobs(ctx)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, channel, payload); err != nil {
		slog.Warn("publish "+channel+" failed", "err", err)
	}
}

// NormalizeKey canonicalizes a ban registry key.
func NormalizeKey(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "/")
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func paginate(page, limit, total int) *Pagination {
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func countStatus(rs []Report, st Status) int {
	n := 0
	for _, r := range rs {
		if r.Status == st {
			n++
		}
	}
	return n
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T { return &v }
