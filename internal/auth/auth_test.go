package auth

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "secret1") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")
	signed, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	userID, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id: %q", userID)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	signed, err := NewTokens("secret-a").Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := NewTokens("secret-b").Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestTokenExpiresAfterSevenDays(t *testing.T) {
	issued := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	clock := issued
	tokens := NewTokensAt("test-secret", func() time.Time { return clock })

	signed, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	clock = issued.Add(TokenTTL - time.Minute)
	if _, err := tokens.Verify(signed); err != nil {
		t.Fatalf("token should still be valid just before expiry: %v", err)
	}

	clock = issued.Add(TokenTTL + time.Minute)
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got: %v", err)
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	tokens := NewTokens("test-secret")
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Verify(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got: %v", raw, err)
		}
	}
}
