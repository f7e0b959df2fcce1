// Package enforcement maps a scorer confidence onto the action the platform
// takes against a posting.
//
// Confidence bands:
//
//	[0.00, 0.60) ──► approve             (no side effect)
//	[0.60, 0.80) ──► flagged_for_review  (review queue)
//	[0.80, 1.00] ──► banned              (scam report + ban registries)
//
// Bans at or above 0.95 create an already-verified report.
package enforcement

// Action is the enforcement outcome. Values are the wire names returned to
// clients.
type Action string

const (
	ActionApprove Action = "approved"
	ActionFlag    Action = "flagged_for_review"
	ActionBan     Action = "banned"
)

const (
	FlagThreshold       = 0.6
	BanThreshold        = 0.8
	AutoVerifyThreshold = 0.95
)

// Decide returns the action for a confidence score.
func Decide(confidence float64) Action {
	switch {
	case confidence >= BanThreshold:
		return ActionBan
	case confidence >= FlagThreshold:
		return ActionFlag
	default:
		return ActionApprove
	}
}

// AutoVerify reports whether a ban at this confidence skips human
// verification.
func AutoVerify(confidence float64) bool { return confidence >= AutoVerifyThreshold }
