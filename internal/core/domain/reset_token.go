package domain

import "time"

// DefaultResetTokenTTL is how long a reset token stays usable after issuance.
const DefaultResetTokenTTL = 10 * time.Minute

// ResetToken is a single-use capability to change one account's password.
type ResetToken struct {
	Email     string
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its deadline at now. A token is
// dead at exactly ExpiresAt.
func (t ResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
