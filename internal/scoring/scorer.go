// Package scoring implements the deterministic heuristic that estimates how
// likely a job posting is to be fraudulent.
//
// Score is pure: it performs no I/O and holds no state beyond the compiled
// rule tables, so it is safe for concurrent use.
package scoring

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Severity buckets a confidence score.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Scam types produced by the scorer. They share the value space of the
// report scam_type column.
const (
	TypeFakePosition  = "fake_position"
	TypePaymentScam   = "payment_scam"
	TypeIdentityTheft = "identity_theft"
	TypeMLMScheme     = "mlm_scheme"
	TypeFakeCompany   = "fake_company"
)

// ScamThreshold is the confidence at which a posting is considered a scam.
const ScamThreshold = 0.4

const noIndicators = "No scam indicators detected"

// Posting is the subset of job data the scorer looks at.
type Posting struct {
	Title        string
	Company      string
	Description  string
	Location     string
	ContactEmail string
	Salary       string
}

// Result is the scorer verdict for one posting.
type Result struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	ScamType   string   `json:"scamType"`
	Severity   Severity `json:"severity"`
	Reasoning  string   `json:"reasoning"`
	RedFlags   []string `json:"redFlags"`
}

// Score folds every rule over the posting and returns the combined verdict.
//
// Weights are summed in hundredths and clamped to 100 so that threshold
// comparisons (0.4, 0.6, 0.8, 0.95) are exact.
func Score(p Posting) Result {
	text := strings.ToLower(p.Title + " " + p.Description)

	var (
		points int
		flags  []string
		seen   = map[category]bool{}
	)
	add := func(weight int, label string, c category) {
		points += weight
		flags = append(flags, label)
		seen[c] = true
	}

	for _, r := range textRules {
		if r.pattern.MatchString(text) {
			add(r.weight, r.label, r.category)
		}
	}

	emailText := text + " " + strings.ToLower(p.ContactEmail)
	for _, domain := range personalEmailDomains {
		if domain.MatchString(emailText) {
			add(personalEmailWeight, "Personal email domain ("+strings.TrimPrefix(domain.FindString(emailText), "@")+")", categoryNone)
		}
	}

	company := strings.ToLower(strings.TrimSpace(p.Company))
	for _, suffix := range genericSuffixes {
		if m := suffix.FindString(company); m != "" {
			add(genericSuffixWeight, "Generic company name ("+m+")", categoryCompany)
		}
	}

	if vagueLocations[strings.ToLower(strings.TrimSpace(p.Location))] {
		add(vagueLocationWeight, "Missing or vague location", categoryNone)
	}

	if utf8.RuneCountInString(strings.TrimSpace(p.Description)) < shortDescriptionChars {
		add(shortDescriptionWeight, "Very short description", categoryNone)
	}

	if rateText := text + " " + strings.ToLower(p.Salary); exceedsHourlyRate(rateText) {
		add(highHourlyRateWeight, "Unusually high hourly rate", categoryNone)
	}

	if points > 100 {
		points = 100
	}
	confidence := float64(points) / 100

	res := Result{
		IsScam:     confidence >= ScamThreshold,
		Confidence: confidence,
		ScamType:   scamType(seen),
		Severity:   SeverityFor(confidence),
		RedFlags:   flags,
		Reasoning:  noIndicators,
	}
	if len(flags) > 0 {
		res.Reasoning = strings.Join(flags, "; ")
	} else {
		res.RedFlags = []string{}
	}
	return res
}

// SeverityFor maps a confidence score to its severity bucket.
func SeverityFor(confidence float64) Severity {
	switch {
	case confidence >= 0.8:
		return SeverityCritical
	case confidence >= 0.6:
		return SeverityHigh
	case confidence >= 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// scamType picks the most specific type among the triggered categories.
func scamType(seen map[category]bool) string {
	switch {
	case seen[categoryPayment]:
		return TypePaymentScam
	case seen[categoryInfoHarvesting]:
		return TypeIdentityTheft
	case seen[categoryRecruiting]:
		return TypeMLMScheme
	case seen[categoryCompany]:
		return TypeFakeCompany
	default:
		return TypeFakePosition
	}
}

func exceedsHourlyRate(text string) bool {
	for _, m := range hourlyRate.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > highHourlyRate {
			return true
		}
	}
	return false
}
