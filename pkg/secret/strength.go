package secret

// Strength is a rough quality estimate for a user-chosen vault password.
// Length is the primary factor per NIST SP 800-63B; composition rules are
// deliberately not enforced.
type Strength int

const (
	// StrengthWeak indicates a password below the acceptable minimum.
	StrengthWeak Strength = iota
	// StrengthFair indicates a minimally acceptable password.
	StrengthFair
	// StrengthGood indicates a good password.
	StrengthGood
	// StrengthStrong indicates a strong password.
	StrengthStrong
)

// String returns a human-readable representation of the strength.
func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthFair:
		return "fair"
	case StrengthGood:
		return "good"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// EstimateStrength classifies a user-chosen password by length bands.
func EstimateStrength(password string) Strength {
	switch length := len(password); {
	case length >= 20:
		return StrengthStrong
	case length >= 14:
		return StrengthGood
	case length >= 8:
		return StrengthFair
	default:
		return StrengthWeak
	}
}
