package otp

import (
	"context"
	"regexp"
	"testing"
	"time"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("code %q is not six digits", code)
		}
	}
}

func TestRequestThenPeek(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 0)

	code, err := auth.RequestCode(ctx, "owner@+841234567")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	rec, err := store.Peek(ctx, "owner@+841234567")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if rec.Code != code {
		t.Fatalf("stored %q, returned %q", rec.Code, code)
	}
	if !sixDigits.MatchString(rec.Code) {
		t.Fatalf("stored code %q is not six digits", rec.Code)
	}
	if got := rec.ExpiresAt.Sub(rec.CreatedAt); got != 10*time.Minute {
		t.Fatalf("ttl = %v, want 10m", got)
	}
}

func TestRequestOverwritesPriorCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 3)

	first, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	// Burn an attempt so we can check the counter resets too.
	if err := auth.Validate(ctx, "a@b.c", wrongCode(first)); err != ErrInvalidCode {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}

	second, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	rec, err := store.Peek(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if rec.Code != second {
		t.Fatalf("stored %q, want latest %q", rec.Code, second)
	}
	if rec.Attempts != 0 {
		t.Fatalf("attempts = %d after fresh request, want 0", rec.Attempts)
	}
}

func TestValidateNoCode(t *testing.T) {
	auth := New(NewMemoryStore(), 10*time.Minute, 0)
	if err := auth.Validate(context.Background(), "nobody", "123456"); err != ErrNoCode {
		t.Fatalf("want ErrNoCode, got %v", err)
	}
}

func TestValidateSuccessConsumes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 0)

	code, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := auth.Validate(ctx, "a@b.c", code); err != nil {
		t.Fatalf("validate: %v", err)
	}
	// The code is single-use: a second validation finds nothing.
	if err := auth.Validate(ctx, "a@b.c", code); err != ErrNoCode {
		t.Fatalf("second validate: want ErrNoCode, got %v", err)
	}
}

func TestValidateWrongCodeKeepsRecordUsable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 0)

	code, err := auth.RequestCode(ctx, "+841234567")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := auth.Validate(ctx, "+841234567", wrongCode(code)); err != ErrInvalidCode {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
	// The stored code survives a mismatch and still validates.
	if err := auth.Validate(ctx, "+841234567", code); err != nil {
		t.Fatalf("validate with right code after mismatch: %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 0)

	// Seed a record created 11 minutes ago, past the 10 minute TTL.
	now := time.Now().UTC()
	rec := Record{
		SubjectKey: "a@b.c",
		Code:       "123456",
		CreatedAt:  now.Add(-11 * time.Minute),
		ExpiresAt:  now.Add(-time.Minute),
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := auth.Validate(ctx, "a@b.c", "123456"); err != ErrExpiredCode {
		t.Fatalf("want ErrExpiredCode, got %v", err)
	}
	// Expiry detection consumed the record.
	if _, err := store.Peek(ctx, "a@b.c"); err != ErrNoCode {
		t.Fatalf("want ErrNoCode after expiry consume, got %v", err)
	}

	// A fresh request succeeds and produces a (different) valid code.
	fresh, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("fresh request: %v", err)
	}
	if !sixDigits.MatchString(fresh) {
		t.Fatalf("fresh code %q is not six digits", fresh)
	}
	if err := auth.Validate(ctx, "a@b.c", fresh); err != nil {
		t.Fatalf("validate fresh code: %v", err)
	}
}

func TestAttemptLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 3)

	code, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := auth.Validate(ctx, "a@b.c", wrongCode(code)); err != ErrInvalidCode {
			t.Fatalf("attempt %d: want ErrInvalidCode, got %v", i, err)
		}
	}
	// The limit is reached: even the right code is rejected and consumed.
	if err := auth.Validate(ctx, "a@b.c", code); err != ErrTooManyAttempts {
		t.Fatalf("want ErrTooManyAttempts, got %v", err)
	}
	if _, err := store.Peek(ctx, "a@b.c"); err != ErrNoCode {
		t.Fatalf("want ErrNoCode after lockout, got %v", err)
	}
}

func TestAttemptLimitDisabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	auth := New(store, 10*time.Minute, 0)

	code, err := auth.RequestCode(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := auth.Validate(ctx, "a@b.c", wrongCode(code)); err != ErrInvalidCode {
			t.Fatalf("attempt %d: want ErrInvalidCode, got %v", i, err)
		}
	}
	if err := auth.Validate(ctx, "a@b.c", code); err != nil {
		t.Fatalf("validate after many misses with no limit: %v", err)
	}
}

func TestConsumeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Consume(ctx, "never-issued"); err != nil {
		t.Fatalf("consume absent: %v", err)
	}
	if err := store.Consume(ctx, "never-issued"); err != nil {
		t.Fatalf("consume twice: %v", err)
	}
}

// wrongCode returns a six-digit code guaranteed to differ from c.
func wrongCode(c string) string {
	if c == "000000" {
		return "000001"
	}
	return "000000"
}
