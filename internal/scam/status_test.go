package scam_test

import (
	"testing"

	"jobmate/trust-service/internal/scam"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"REPORTED", "UNDER_REVIEW", "VERIFIED"} {
		got, err := scam.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, s := range []string{"", "verified", " VERIFIED", "DELETED"} {
		if _, err := scam.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed ───────────────────────────────────────────────────

func TestIsTransitionAllowed_Forward(t *testing.T) {
	cases := []struct{ from, to scam.Status }{
		{scam.StatusReported, scam.StatusUnderReview},
		{scam.StatusReported, scam.StatusVerified},
		{scam.StatusUnderReview, scam.StatusVerified},
	}
	for _, c := range cases {
		if !scam.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) = false, want true", c.from, c.to)
		}
	}
}

// VERIFIED is terminal and nothing moves backwards.
func TestIsTransitionAllowed_Rejected(t *testing.T) {
	cases := []struct{ from, to scam.Status }{
		{scam.StatusVerified, scam.StatusReported},
		{scam.StatusVerified, scam.StatusUnderReview},
		{scam.StatusVerified, scam.StatusVerified},
		{scam.StatusUnderReview, scam.StatusReported},
		{scam.StatusUnderReview, scam.StatusUnderReview},
		{scam.StatusReported, scam.StatusReported},
	}
	for _, c := range cases {
		if scam.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) = true, want false", c.from, c.to)
		}
	}
}

// ── Severity & scam types ─────────────────────────────────────────────────

func TestParseSeverity(t *testing.T) {
	for _, s := range []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		if _, err := scam.ParseSeverity(s); err != nil {
			t.Errorf("ParseSeverity(%q): %v", s, err)
		}
	}
	if _, err := scam.ParseSeverity("SEVERE"); err == nil {
		t.Error("ParseSeverity(\"SEVERE\") expected error, got nil")
	}
}

func TestValidScamType(t *testing.T) {
	for _, s := range []string{"fake_position", "payment_scam", "identity_theft", "mlm_scheme", "fake_company", "phishing", "other"} {
		if !scam.ValidScamType(s) {
			t.Errorf("ValidScamType(%q) = false", s)
		}
	}
	if scam.ValidScamType("PHISHING") {
		t.Error("ValidScamType must be case-sensitive")
	}
}
