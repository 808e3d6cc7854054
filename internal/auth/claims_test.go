package auth

import (
	"errors"
	"testing"
)

const testSecret = "test-secret-0123456789abcdef0123"

func TestGenerateAndParseToken(t *testing.T) {
	user := &User{ID: "usr-1", Username: "alice", Role: RoleAdmin}

	token, err := GenerateToken(user, testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.Subject != "usr-1" {
		t.Errorf("subject = %q, want usr-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", claims.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &User{ID: "usr-1", Username: "alice", Role: RoleOperator}

	token, err := GenerateToken(user, testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	user := &User{ID: "usr-1", Username: "alice", Role: RoleOperator}

	token, err := GenerateToken(user, testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	// ttl <= 0 falls back to the default, so the token is valid.
	if _, err := ParseToken(token, testSecret); err != nil {
		t.Errorf("token with defaulted TTL should parse: %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.jwt", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
