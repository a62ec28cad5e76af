package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-raphael/DW-P6-Piiquante/internal/models"
)

func newTestTokenService(t *testing.T, expiry time.Duration) *TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return NewTokenServiceFromKeys(key, &key.PublicKey, "piiquante-api", "piiquante-app", expiry)
}

func TestTokenService_SignAndVerify(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)

	token, err := ts.Sign("user-123", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Verify(token, "")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, "piiquante-api", claims.Issuer)
	assert.Contains(t, claims.Audience, "piiquante-app")
}

func TestTokenService_VerifyPinnedSubject(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)

	token, err := ts.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = ts.Verify(token, "alice@example.com")
	assert.NoError(t, err)

	_, err = ts.Verify(token, "mallory@example.com")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_VerifyExpired(t *testing.T) {
	ts := newTestTokenService(t, -1*time.Minute)

	token, err := ts.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = ts.Verify(token, "")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_VerifyWrongKey(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)
	other := newTestTokenService(t, 12*time.Hour)

	token, err := other.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = ts.Verify(token, "")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_VerifyRejectsHMAC(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)

	// forged token signed with HS256 using the public key bytes as the secret
	claims := &models.TokenClaims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "piiquante-api",
			Audience:  jwt.ClaimStrings{"piiquante-app"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-key"))
	require.NoError(t, err)

	_, err = ts.Verify(forged, "")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_VerifyWrongAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signer := NewTokenServiceFromKeys(key, &key.PublicKey, "piiquante-api", "another-app", 12*time.Hour)
	verifier := NewTokenServiceFromKeys(key, &key.PublicKey, "piiquante-api", "piiquante-app", 12*time.Hour)

	token, err := signer.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(token, "")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_VerifyGarbage(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)

	_, err := ts.Verify("not.a.token", "")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestTokenService_Decode(t *testing.T) {
	ts := newTestTokenService(t, 12*time.Hour)

	token, err := ts.Sign("user-123", "alice@example.com")
	require.NoError(t, err)

	claims := ts.Decode(token)
	require.NotNil(t, claims)
	assert.Equal(t, "user-123", claims.UserID)

	// tampered signature still decodes
	claims = ts.Decode(token + "x")
	require.NotNil(t, claims)
	assert.Equal(t, "user-123", claims.UserID)

	assert.Nil(t, ts.Decode("garbage"))
}
