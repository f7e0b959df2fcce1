// Report lifecycle:
//
//	REPORTED ──► UNDER_REVIEW ──► VERIFIED
//	    │                            ▲
//	    └────────────────────────────┘
//
// VERIFIED is terminal. Reports are never deleted or moved backwards.

package scam

import (
	"fmt"

	"jobmate/trust-service/internal/scoring"
)

// Status values mirror the status CHECK constraint on scam_reports.
type Status string

const (
	StatusReported    Status = "REPORTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusVerified    Status = "VERIFIED"
)

// ActiveStatuses are the statuses considered by match detection.
var ActiveStatuses = []Status{StatusReported, StatusUnderReview, StatusVerified}

var validTransitions = map[Status][]Status{
	StatusReported:    {StatusUnderReview, StatusVerified},
	StatusUnderReview: {StatusVerified},
}

// ParseStatus converts a raw string to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusReported, StatusUnderReview, StatusVerified:
		return st, nil
	}
	return "", fmt.Errorf("unknown report status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseSeverity converts a raw string to a severity bucket.
func ParseSeverity(s string) (scoring.Severity, error) {
	sev := scoring.Severity(s)
	switch sev {
	case scoring.SeverityLow, scoring.SeverityMedium, scoring.SeverityHigh, scoring.SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// severityRank orders severities for sorting; higher is worse.
func severityRank(s scoring.Severity) int {
	switch s {
	case scoring.SeverityCritical:
		return 3
	case scoring.SeverityHigh:
		return 2
	case scoring.SeverityMedium:
		return 1
	}
	return 0
}

// scam types accepted on manual reports and filters.
const (
	TypePhishing = "phishing"
	TypeOther    = "other"
)

var scamTypes = map[string]bool{
	scoring.TypeFakePosition:  true,
	scoring.TypePaymentScam:   true,
	scoring.TypeIdentityTheft: true,
	scoring.TypeMLMScheme:     true,
	scoring.TypeFakeCompany:   true,
	TypePhishing:              true,
	TypeOther:                 true,
}

// ValidScamType reports whether t is a known scam type.
func ValidScamType(t string) bool { return scamTypes[t] }
