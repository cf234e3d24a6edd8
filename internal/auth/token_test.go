package auth

import (
	"errors"
	"testing"
	"time"
)

func TestNewTokenManager_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("", time.Hour)
	if !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager("super-secret", 168*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	tok, exp, err := tm.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if remaining := time.Until(exp); remaining < 167*time.Hour {
		t.Fatalf("expected ~7 day expiry, got %v", remaining)
	}

	claims, err := tm.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("user id mismatch: got %q", claims.UserID)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tm := &TokenManager{secret: []byte("secret"), ttl: -time.Second}
	tok, _, err := tm.GenerateToken("u1")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := tm.ParseToken(tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenManager("right-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}
	verifier, err := NewTokenManager("wrong-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	tok, _, err := issuer.GenerateToken("u2")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := verifier.ParseToken(tok); err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	tm, err := NewTokenManager("k", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}
	if _, err := tm.ParseToken("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}
