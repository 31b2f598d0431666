package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomerClaims is the typed JWT minted by the identity platform for
// signed-in customers. This service only verifies it.
type CustomerClaims struct {
	CustomerID uuid.UUID `json:"customer_id"`
	jwt.RegisteredClaims
}
