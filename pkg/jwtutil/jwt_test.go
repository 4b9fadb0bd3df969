package jwtutil

import (
	"testing"

	"garage-service/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("mike", 42, "mechanic")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "mike" {
		t.Errorf("expected username mike, got %s", claims.Username)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != "mechanic" {
		t.Errorf("expected role mechanic, got %s", claims.Role)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "first-key", ExpirationHours: 1})
	token, err := GenerateToken("mike", 42, "mechanic")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "other-key", ExpirationHours: 1})
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected validation to fail with a different signing key")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}
