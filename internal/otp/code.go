// Package otp implements one-time access code generation, storage and
// validation. A code is a short-lived credential bound to a subject key
// (the owner's phone number or the employee's email); validating it is the
// only way to obtain a session in this system, there are no passwords.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodeLength is fixed: six decimal digits, leading zeros allowed.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random 6-digit decimal string drawn
// from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidCode reports whether s is exactly six ASCII digits.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Record is a pending access code with its expiry and attempt metadata.
// At most one record exists per subject key; a new request overwrites the
// prior one.
type Record struct {
	SubjectKey string
	Code       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Attempts   int
}

// Expired reports whether the record is past its expiry at the given time.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
