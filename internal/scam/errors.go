package scam

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a report, flagged job or warning does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyReviewed is returned when a flagged job has already been adjudicated.
var ErrAlreadyReviewed = errors.New("flagged job already reviewed")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// DuplicateReportError is returned when a manual report matches an existing one.
type DuplicateReportError struct{ ExistingID string }

func (e *DuplicateReportError) Error() string {
	return fmt.Sprintf("this job posting has already been reported (%s)", e.ExistingID)
}
