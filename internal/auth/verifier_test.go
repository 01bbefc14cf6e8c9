package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"signalcraft-be/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://cognito-idp.us-west-2.amazonaws.com/us-west-2_pool"
	testClientID = "client-123"
)

type testSigner struct {
	key *rsa.PrivateKey
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &testSigner{key: key}
}

func (s *testSigner) keyfunc(_ *jwt.Token) (any, error) {
	return &s.key.PublicKey, nil
}

func (s *testSigner) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	raw, err := tok.SignedString(s.key)
	require.NoError(t, err)
	return raw
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":              "sub-1",
		"email":            "jane@example.com",
		"cognito:username": "jane",
		"cognito:groups":   []any{"admin", "staff"},
		"iss":              testIssuer,
		"client_id":        testClientID,
		"exp":              time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifier_Verify(t *testing.T) {
	signer := newTestSigner(t)
	v := NewVerifier(signer.keyfunc, testIssuer, testClientID)
	ctx := context.Background()

	t.Run("Access token with client_id", func(t *testing.T) {
		caller, err := v.Verify(ctx, signer.sign(t, baseClaims()))
		require.NoError(t, err)
		assert.Equal(t, "sub-1", caller.Sub)
		assert.Equal(t, "jane@example.com", caller.Email)
		assert.Equal(t, "jane", caller.Username)
		assert.Equal(t, []string{"admin", "staff"}, caller.Groups)
		assert.True(t, caller.IsAdmin())
	})

	t.Run("Id token with aud", func(t *testing.T) {
		claims := baseClaims()
		delete(claims, "client_id")
		claims["aud"] = testClientID
		delete(claims, "cognito:username")
		claims["username"] = "jane2"

		caller, err := v.Verify(ctx, signer.sign(t, claims))
		require.NoError(t, err)
		assert.Equal(t, "jane2", caller.Username)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		claims := baseClaims()
		claims["aud"] = "someone-else"

		_, err := v.Verify(ctx, signer.sign(t, claims))
		assert.True(t, errors.Is(err, ErrUnauthorized))
	})

	t.Run("Wrong client id", func(t *testing.T) {
		claims := baseClaims()
		claims["client_id"] = "other"

		_, err := v.Verify(ctx, signer.sign(t, claims))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		claims := baseClaims()
		claims["iss"] = "https://evil.example.com"

		_, err := v.Verify(ctx, signer.sign(t, claims))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := baseClaims()
		claims["exp"] = time.Now().Add(-time.Minute).Unix()

		_, err := v.Verify(ctx, signer.sign(t, claims))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Missing expiry", func(t *testing.T) {
		claims := baseClaims()
		delete(claims, "exp")

		_, err := v.Verify(ctx, signer.sign(t, claims))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Signed by another key", func(t *testing.T) {
		other := newTestSigner(t)
		_, err := v.Verify(ctx, other.sign(t, baseClaims()))
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("HS256 rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
		raw, err := tok.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, raw)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Empty token", func(t *testing.T) {
		_, err := v.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestDisabledVerifier(t *testing.T) {
	_, err := DisabledVerifier().Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewCognitoVerifier_NotConfigured(t *testing.T) {
	_, err := NewCognitoVerifier(context.Background(), &config.Config{CognitoClientID: "client"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
