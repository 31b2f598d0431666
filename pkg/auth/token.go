package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintCustomerToken issues a signed customer JWT. Production tokens come
// from the identity platform; this exists for local development and tests.
func MintCustomerToken(cfg config.SessionConfig, now time.Time, customerID uuid.UUID, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("session jwt secret is required")
	}
	if customerID == uuid.Nil {
		return "", fmt.Errorf("customer id is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	claims := CustomerClaims{
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   customerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseCustomerToken validates the JWT string and returns typed claims.
func ParseCustomerToken(cfg config.SessionConfig, tokenString string) (*CustomerClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("session jwt secret is required")
	}

	claims := &CustomerClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("token missing customer id")
	}
	return claims, nil
}
