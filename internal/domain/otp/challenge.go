// Package otp implements the one-time-code login challenge: issuance
// with a fixed time-to-live, lazy expiry, and single-use validation.
package otp

import (
	"strings"
	"time"
)

// Challenge is one outstanding login code for an email. At most one
// challenge is live per email; issuing a new one overwrites the old.
type Challenge struct {
	Code      string    `json:"otp"`
	ExpiresAt time.Time `json:"expires"`
}

// ExpiredAt reports whether the challenge has expired as of now.
// Expiry is advisory: it is checked at validation time only, never
// swept, and an expired challenge stays stored until overwritten.
func (c Challenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Key normalizes an email into the challenge-store key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
