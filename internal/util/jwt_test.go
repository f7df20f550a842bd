package util

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "u1", "user", "s1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "user" || claims.SessionID != "s1" {
		t.Errorf("claims = %+v, want user_id=u1 role=user session_id=s1", claims)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Error("token expiry missing or already in the past")
	}
}

func TestParseToken_Expired(t *testing.T) {
	// a token past its expiration instant must be rejected, no grace window
	token, err := GenerateToken(testSecret, "u1", "user", "s1", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("expired token parsed, want error")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken(testSecret, "u1", "user", "s1", time.Hour)
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Error("token with wrong secret parsed, want error")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, tok := range []string{"", "not.a.jwt", "aaaa"} {
		if _, err := ParseToken(testSecret, tok); err == nil {
			t.Errorf("ParseToken(%q) error = nil, want error", tok)
		}
	}
}
