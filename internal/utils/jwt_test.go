package utils

import (
	"testing"
	"time"
)

func init() {
	SetJWTSecret("unit-test-signing-key")
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(7, "manager1", "manager", 24)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 7 || claims.Username != "manager1" || claims.Role != "manager" {
		t.Errorf("claims = %+v, want user 7 manager1/manager", claims)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "invalid", "not.a.token"} {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should fail", token)
		}
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("first-secret")
	token, _ := GenerateToken(1, "admin", "admin", 24)

	SetJWTSecret("second-secret")
	_, err := ParseToken(token)

	SetJWTSecret("unit-test-signing-key")

	if err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestTokenExpirationWindow(t *testing.T) {
	token, _ := GenerateToken(1, "admin", "admin", 2)
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	want := time.Now().Add(2 * time.Hour)
	diff := claims.ExpiresAt.Time.Sub(want)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry off by %v", diff)
	}
}
