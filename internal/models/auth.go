package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by a signed identity token.
// Subject holds the account email; UserID is the opaque identity reference
// returned to handlers after verification.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
