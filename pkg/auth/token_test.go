package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/config"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{JWTSecret: "test-secret", JWTIssuer: "lumencart"}
}

func TestMintAndParseCustomerToken(t *testing.T) {
	cfg := testSessionConfig()
	customerID := uuid.New()

	signed, err := MintCustomerToken(cfg, time.Now(), customerID, time.Hour)
	if err != nil {
		t.Fatalf("MintCustomerToken: %v", err)
	}

	claims, err := ParseCustomerToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseCustomerToken: %v", err)
	}
	if claims.CustomerID != customerID {
		t.Fatalf("expected customer %s, got %s", customerID, claims.CustomerID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testSessionConfig()

	signed, err := MintCustomerToken(cfg, time.Now().Add(-2*time.Hour), uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("MintCustomerToken: %v", err)
	}
	if _, err := ParseCustomerToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := MintCustomerToken(testSessionConfig(), time.Now(), uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("MintCustomerToken: %v", err)
	}

	other := config.SessionConfig{JWTSecret: "other-secret", JWTIssuer: "lumencart"}
	if _, err := ParseCustomerToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	minted := config.SessionConfig{JWTSecret: "test-secret", JWTIssuer: "someone-else"}
	signed, err := MintCustomerToken(minted, time.Now(), uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("MintCustomerToken: %v", err)
	}
	if _, err := ParseCustomerToken(testSessionConfig(), signed); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestMintRequiresSecret(t *testing.T) {
	if _, err := MintCustomerToken(config.SessionConfig{}, time.Now(), uuid.New(), time.Hour); err == nil {
		t.Fatal("expected missing secret error")
	}
}
