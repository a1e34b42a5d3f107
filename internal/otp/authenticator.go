package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"
)

// Validation outcomes. Every outcome is terminal for the attempt; a fresh
// RequestCode always resets the subject to a clean state with attempts
// back at zero.
var (
	ErrExpiredCode     = errors.New("access code expired")
	ErrInvalidCode     = errors.New("invalid access code")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Authenticator owns the access-code lifecycle: issuing codes and running
// the validation state machine against the store. It deliberately knows
// nothing about identities or tokens; handlers resolve the identity and
// issue the session only after Validate succeeds.
type Authenticator struct {
	store       Store
	ttl         time.Duration
	maxAttempts int // 0 disables the attempt limit
}

// New builds an Authenticator. ttl is how long an issued code stays
// valid; maxAttempts caps failed validations per code (0 = unlimited).
func New(store Store, ttl time.Duration, maxAttempts int) *Authenticator {
	return &Authenticator{store: store, ttl: ttl, maxAttempts: maxAttempts}
}

// RequestCode generates a fresh 6-digit code for the subject, replacing
// any pending one, and returns it so the caller can hand it to the
// notification dispatcher.
func (a *Authenticator) RequestCode(ctx context.Context, subjectKey string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	rec := Record{
		SubjectKey: subjectKey,
		Code:       code,
		CreatedAt:  now,
		ExpiresAt:  now.Add(a.ttl),
	}
	if err := a.store.Put(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

// Validate runs one validation attempt for the subject.
//
//	no pending code        -> ErrNoCode
//	past expiry            -> consume, ErrExpiredCode
//	attempt limit reached  -> consume, ErrTooManyAttempts
//	code mismatch          -> count the attempt, ErrInvalidCode
//	match                  -> consume, nil
//
// A successfully validated code is consumed, so presenting the same code
// a second time fails with ErrNoCode.
func (a *Authenticator) Validate(ctx context.Context, subjectKey, submitted string) error {
	rec, err := a.store.Peek(ctx, subjectKey)
	if err != nil {
		return err // ErrNoCode or storage failure
	}

	now := time.Now().UTC()
	if rec.Expired(now) {
		if err := a.store.Consume(ctx, subjectKey); err != nil {
			return err
		}
		return ErrExpiredCode
	}

	if a.maxAttempts > 0 && rec.Attempts >= a.maxAttempts {
		if err := a.store.Consume(ctx, subjectKey); err != nil {
			return err
		}
		return ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(submitted)) != 1 {
		if _, err := a.store.IncrementAttempts(ctx, subjectKey); err != nil && err != ErrNoCode {
			return err
		}
		return ErrInvalidCode
	}

	return a.store.Consume(ctx, subjectKey)
}
