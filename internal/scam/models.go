package scam

import (
	"time"

	"jobmate/trust-service/internal/enforcement"
	"jobmate/trust-service/internal/scoring"
)

// ─── Reports ─────────────────────────────────────────────────────────────────

// Source records how a report entered the registry.
type Source string

const (
	SourceManual Source = "MANUAL"
	SourceAI     Source = "AI"
)

// Report is the canonical audit-trail record of a suspected or confirmed scam.
type Report struct {
	ID             string           `json:"id" db:"id"`
	ReportedBy     string           `json:"reportedBy" db:"reported_by"`
	Title          string           `json:"title" db:"title"`
	CompanyName    string           `json:"companyName" db:"company_name"`
	Location       *string          `json:"location" db:"location"`
	Description    *string          `json:"description" db:"description"`
	URL            *string          `json:"url" db:"url"`
	Email          *string          `json:"email" db:"email"`
	Phone          *string          `json:"phone" db:"phone"`
	Salary         *string          `json:"salary" db:"salary"`
	EmploymentType *string          `json:"employmentType" db:"employment_type"`
	ScamType       string           `json:"scamType" db:"scam_type"`
	Severity       scoring.Severity `json:"severity" db:"severity"`
	Status         Status           `json:"status" db:"status"`
	Source         Source           `json:"source" db:"source"`
	AIConfidence   *float64         `json:"aiConfidence" db:"ai_confidence"`
	EvidenceURLs   []string         `json:"evidenceUrls" db:"evidence_urls"`
	Notes          *string          `json:"notes" db:"notes"`
	WarningCount   int              `json:"warningCount" db:"warning_count"`
	VerifiedBy     *string          `json:"verifiedBy" db:"verified_by"`
	VerifiedAt     *time.Time       `json:"verifiedAt" db:"verified_at"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}

// ReportInput is the body of a manual report.
type ReportInput struct {
	Title          string   `json:"title"`
	CompanyName    string   `json:"companyName"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	URL            string   `json:"url"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Salary         string   `json:"salary"`
	EmploymentType string   `json:"employmentType"`
	ScamType       string   `json:"scamType"`
	EvidenceURLs   []string `json:"evidenceUrls"`
	Notes          string   `json:"notes"`
}

// DuplicateKey identifies a report for duplicate suppression. URL takes part
// only when non-empty.
type DuplicateKey struct {
	Title       string
	CompanyName string
	URL         string
}

// ReportFilter drives the paginated report listing.
type ReportFilter struct {
	Status   Status
	Severity scoring.Severity
	ScamType string
	Page     int
	Limit    int
}

// MatchQuery is a fuzzy lookup against active reports. A report matches
// when any of its fields contains the corresponding non-empty value,
// case-insensitively.
type MatchQuery struct {
	Title       string
	CompanyName string
	URL         string
	Email       string
	Statuses    []Status
	Limit       int
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ReportStats aggregates the registry.
type ReportStats struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	BySeverity    map[string]int `json:"bySeverity"`
	ByScamType    map[string]int `json:"byScamType"`
	TotalWarnings int            `json:"totalWarnings"`
}

// ─── Ban registries ──────────────────────────────────────────────────────────

// BanKind selects one of the three independent ban registries.
type BanKind string

const (
	BanCompany BanKind = "company"
	BanURL     BanKind = "url"
	BanEmail   BanKind = "email"
)

// BanKinds lists every registry in propagation order.
var BanKinds = []BanKind{BanCompany, BanURL, BanEmail}

// Ban is one record in a ban registry, keyed by its normalized natural key.
type Ban struct {
	Key      string    `json:"key" db:"key"`
	Reason   string    `json:"reason" db:"reason"`
	BannedAt time.Time `json:"bannedAt" db:"banned_at"`
	BannedBy string    `json:"bannedBy" db:"banned_by"`
}

// BanQuery is the body of a banned-entity lookup.
type BanQuery struct {
	Company string `json:"company"`
	URL     string `json:"url"`
	Email   string `json:"email"`
}

// BanCheck is the result of a banned-entity lookup.
type BanCheck struct {
	IsBanned      bool     `json:"isBanned"`
	Reasons       []string `json:"reasons"`
	BannedCompany *Ban     `json:"bannedCompany"`
	BannedURL     *Ban     `json:"bannedUrl"`
	BannedEmail   *Ban     `json:"bannedEmail"`
}

// BanStats counts registry entries overall and since a cut-off.
type BanStats struct {
	Total  map[BanKind]int `json:"total"`
	Recent map[BanKind]int `json:"lastSevenDays"`
}

// ─── Review queue ────────────────────────────────────────────────────────────

// ReviewAction is an admin decision on a flagged job.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewBan     ReviewAction = "ban"
)

// FlaggedJob is a posting in the ambiguous band awaiting human review.
type FlaggedJob struct {
	ID            string        `json:"id" db:"id"`
	Title         string        `json:"title" db:"title"`
	CompanyName   string        `json:"companyName" db:"company_name"`
	Description   string        `json:"description" db:"description"`
	URL           *string       `json:"url" db:"url"`
	ContactEmail  *string       `json:"contactEmail" db:"contact_email"`
	FlaggedReason string        `json:"flaggedReason" db:"flagged_reason"`
	AIConfidence  float64       `json:"aiConfidence" db:"ai_confidence"`
	FlaggedBy     string        `json:"flaggedBy" db:"flagged_by"`
	Reviewed      bool          `json:"reviewed" db:"reviewed"`
	ReviewedAt    *time.Time    `json:"reviewedAt" db:"reviewed_at"`
	ReviewedBy    *string       `json:"reviewedBy" db:"reviewed_by"`
	ReviewAction  *ReviewAction `json:"reviewAction" db:"review_action"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
}

// FlaggedFilter drives the review queue listing. A nil Reviewed lists both.
type FlaggedFilter struct {
	Reviewed *bool
	Page     int
	Limit    int
}

// ─── Warnings ────────────────────────────────────────────────────────────────

// Warning records that a user was shown a scam report.
type Warning struct {
	UserID    string    `json:"userId" db:"user_id"`
	ScamID    string    `json:"scamId" db:"scam_id"`
	WarnedAt  time.Time `json:"warnedAt" db:"warned_at"`
	Dismissed bool      `json:"dismissed" db:"dismissed"`
}

// WarningView is a warning joined with the report it refers to.
type WarningView struct {
	Warning
	Title       string           `json:"title" db:"title"`
	CompanyName string           `json:"companyName" db:"company_name"`
	ScamType    string           `json:"scamType" db:"scam_type"`
	Severity    scoring.Severity `json:"severity" db:"severity"`
	Status      Status           `json:"status" db:"status"`
}

// ─── Match detection ─────────────────────────────────────────────────────────

// RiskLevel summarizes how dangerous a candidate posting looks.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Candidate is a posting a user is about to engage with.
type Candidate struct {
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	URL         string `json:"url"`
	Email       string `json:"email"`
}

// CheckResult is the outcome of a match lookup.
type CheckResult struct {
	RiskLevel     RiskLevel `json:"riskLevel"`
	Warnings      []string  `json:"warnings"`
	MatchingScams []Report  `json:"matchingScams"`
}

// ─── AI analysis ─────────────────────────────────────────────────────────────

// JobData is a posting submitted for automated analysis.
type JobData struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	URL          string   `json:"url"`
	ContactEmail string   `json:"contactEmail"`
	ContactPhone string   `json:"contactPhone"`
	Salary       string   `json:"salary"`
	JobType      string   `json:"jobType"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits"`
}

// Analysis is the result of AnalyzeJob.
type Analysis struct {
	IsScam   bool               `json:"isScam"`
	Analysis scoring.Result     `json:"analysis"`
	Action   enforcement.Action `json:"action"`
}
