package utils

import (
	"errors"
	"testing"
)

func TestExtractNameFromEmail(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "alice"},
		{"bob.smith@school.edu", "bob.smith"},
		{"noat", "noat"},
	}
	for _, c := range cases {
		if got := ExtractNameFromEmail(c.email); got != c.want {
			t.Errorf("ExtractNameFromEmail(%q) = %q, want %q", c.email, got, c.want)
		}
	}
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret", 1)

	token, err := GenerateJWTToken("uid-123", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	claims, err := ParseJWTToken(token)
	if err != nil {
		t.Fatalf("ParseJWTToken: %v", err)
	}
	if claims.UID != "uid-123" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %s/%s, want uid-123/alice@example.com", claims.UID, claims.Email)
	}

	if _, err := ParseJWTToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGenerateSecretHash(t *testing.T) {
	h1 := GenerateSecretHash("alice@example.com", "client", "secret")
	h2 := GenerateSecretHash("alice@example.com", "client", "secret")
	if h1 != h2 {
		t.Error("secret hash should be deterministic")
	}
	if h1 == GenerateSecretHash("bob@example.com", "client", "secret") {
		t.Error("different usernames should produce different hashes")
	}
}
