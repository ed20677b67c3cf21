// Package lecturer contains the lecturer account directory: signup,
// login against the mirror directory, email membership checks, and
// credential recovery.
package lecturer

import "strings"

// Account is one lecturer account. The password is stored exactly as
// given; login compares it byte-for-byte and credential recovery mails
// it back.
type Account struct {
	LecName        string `json:"lec_name"`
	SigninEmail    string `json:"signin_email"`
	SigninPassword string `json:"signin_password"`
}

// EmailMatches reports whether the account's email equals email under
// case folding. Email comparison is case-insensitive throughout the
// directory.
func (a Account) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(a.SigninEmail), strings.TrimSpace(email))
}
