package scam

import (
	"context"
	"time"
)

// ReportStore persists scam reports.
type ReportStore interface {
	InsertReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	// FindReport returns (nil, nil) when no report carries the key.
	FindReport(ctx context.Context, key DuplicateKey) (*Report, error)
	ListReports(ctx context.Context, f ReportFilter) ([]Report, int, error)
	MatchReports(ctx context.Context, q MatchQuery) ([]Report, error)
	SetReportStatus(ctx context.Context, id string, st Status, verifiedBy *string, verifiedAt *time.Time) (*Report, error)
	IncrementWarningCount(ctx context.Context, id string) error
	ReportStats(ctx context.Context) (*ReportStats, error)
}

// BanStore persists the three ban registries. Each kind is independent.
type BanStore interface {
	// UpsertBan inserts or overwrites the record for b.Key.
	UpsertBan(ctx context.Context, kind BanKind, b Ban) error
	// GetBan returns (nil, nil) when key is not banned.
	GetBan(ctx context.Context, kind BanKind, key string) (*Ban, error)
	BanStats(ctx context.Context, since time.Time) (*BanStats, error)
}

// FlaggedJobStore persists the review queue.
type FlaggedJobStore interface {
	InsertFlaggedJob(ctx context.Context, j *FlaggedJob) error
	ListFlaggedJobs(ctx context.Context, f FlaggedFilter) ([]FlaggedJob, int, error)
	// ReviewFlaggedJob marks an unreviewed job as reviewed. It returns
	// ErrNotFound or ErrAlreadyReviewed without modifying anything.
	ReviewFlaggedJob(ctx context.Context, id string, action ReviewAction, by string, at time.Time) (*FlaggedJob, error)
	CountPendingFlaggedJobs(ctx context.Context) (int, error)
}

// WarningStore persists per-user warnings.
type WarningStore interface {
	// UpsertWarning creates or refreshes the (userID, scamID) warning and
	// reports whether it was newly created.
	UpsertWarning(ctx context.Context, userID, scamID string, at time.Time) (bool, error)
	ListWarnings(ctx context.Context, userID string) ([]WarningView, error)
	DismissWarning(ctx context.Context, userID, scamID string) error
}

// Store is everything the Service needs from persistence.
type Store interface {
	ReportStore
	BanStore
	FlaggedJobStore
	WarningStore
}

// Publisher broadcasts domain events. Failures are never fatal to the caller.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload map[string]string) error
}

// Event channels.
const (
	EventScamReported = "EVENT_SCAM_REPORTED"
	EventScamVerified = "EVENT_SCAM_VERIFIED"
	EventJobFlagged   = "EVENT_JOB_FLAGGED"
	EventJobBanned    = "EVENT_JOB_BANNED"
)
