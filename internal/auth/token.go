package auth

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

// TokenService signs and verifies identity tokens with RS256. Verification
// only needs the public key, so resource servers never hold the signing
// secret. Issuer, audience and expiry are fixed per deployment.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	expiry     time.Duration
}

// NewTokenService loads the RSA key pair from the given PEM files and returns
// a configured TokenService. Missing or malformed key material is a startup
// failure.
func NewTokenService(privateKeyPath, publicKeyPath, issuer, audience string, expiry time.Duration) (*TokenService, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		expiry:     expiry,
	}, nil
}

// NewTokenServiceFromKeys builds a TokenService from in-memory keys
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer, audience string, expiry time.Duration) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		expiry:     expiry,
	}
}

// Sign produces a signed token carrying userID with subject set to the
// account email
func (ts *TokenService) Sign(userID, email string) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{ts.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	tokenString, err := token.SignedString(ts.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the token signature against the deployment public key along
// with issuer, audience, subject and expiry. Any failure maps to
// models.ErrInvalidToken. When expectedEmail is empty, the subject claim is
// not pinned and the caller reads it from the returned claims.
func (ts *TokenService) Verify(tokenString, expectedEmail string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// pin RS256: an attacker-supplied alg header must not downgrade verification
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.publicKey, nil
	},
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	if expectedEmail != "" && claims.Subject != expectedEmail {
		return nil, fmt.Errorf("%w: subject mismatch", models.ErrInvalidToken)
	}

	return claims, nil
}

// Decode parses a token without verifying its signature. Diagnostic use only,
// never for authorization decisions. Returns nil for structurally invalid
// tokens.
func (ts *TokenService) Decode(tokenString string) *models.TokenClaims {
	claims := &models.TokenClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}

	return claims
}
