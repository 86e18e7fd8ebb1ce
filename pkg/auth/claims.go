package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ShopperID uuid.UUID
	// JTI doubles as the login session identifier; left empty a fresh one is generated.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to shoppers.
type AccessTokenClaims struct {
	ShopperID uuid.UUID `json:"shopper_id"`
	jwt.RegisteredClaims
}

// LoginSessionID returns the identifier of the login session the token belongs to.
func (c *AccessTokenClaims) LoginSessionID() string {
	return c.ID
}
