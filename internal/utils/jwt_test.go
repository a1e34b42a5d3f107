package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "id-1", "employee", "Alice", 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if tok.Exp.IsZero() {
		t.Fatal("expiry not set")
	}

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse error: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if claims["sub"] != "id-1" || claims["role"] != "employee" || claims["name"] != "Alice" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatal("exp claim missing")
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", "id-1", "owner", "Bob", 15)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestRefreshTokenHashStable(t *testing.T) {
	ref, err := NewRefreshToken(30)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if len(ref.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96", len(ref.Raw))
	}
	if HashRefreshRaw(ref.Raw) != HashRefreshRaw(ref.Raw) {
		t.Fatal("hash not deterministic")
	}
	other, _ := NewRefreshToken(30)
	if HashRefreshRaw(ref.Raw) == HashRefreshRaw(other.Raw) {
		t.Fatal("distinct tokens hash equal")
	}
}
