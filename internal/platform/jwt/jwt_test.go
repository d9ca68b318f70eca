package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", "test-issuer")
	tok, err := m.Generate("admin", "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsOtherIssuerAndSecret(t *testing.T) {
	tok, err := NewManager("secret", "other").Generate("admin", "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewManager("secret", "test-issuer").Parse(tok); err == nil {
		t.Fatal("expected issuer mismatch to fail")
	}
	if _, err := NewManager("different", "other").Parse(tok); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", "")
	tok, err := m.Generate("admin", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestParseRejectsOtherAlgorithm(t *testing.T) {
	m := NewManager("secret", "")
	claims := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    "council-vote",
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}
