package auth

import (
	"context"
	"fmt"
	"slices"

	"signalcraft-be/internal/config"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier turns a raw bearer token into a Caller.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Caller, error)
}

type Verifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	clientID string
}

func NewVerifier(kf jwt.Keyfunc, issuer, clientID string) *Verifier {
	return &Verifier{keyfunc: kf, issuer: issuer, clientID: clientID}
}

// NewCognitoVerifier fetches the user pool key set and keeps it refreshed in
// the background for the lifetime of ctx.
func NewCognitoVerifier(ctx context.Context, cfg *config.Config) (*Verifier, error) {
	if cfg.CognitoUserPoolID == "" || cfg.CognitoClientID == "" {
		return nil, ErrNotConfigured
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL()})
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return NewVerifier(k.Keyfunc, cfg.CognitoIssuer(), cfg.CognitoClientID), nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*Caller, error) {
	if raw == "" {
		return nil, ErrUnauthorized
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if !v.audienceMatches(claims) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrUnauthorized)
	}

	return callerFromClaims(claims), nil
}

// Cognito id tokens carry aud; access tokens carry client_id instead.
func (v *Verifier) audienceMatches(claims jwt.MapClaims) bool {
	aud, err := claims.GetAudience()
	if err == nil && len(aud) > 0 {
		return slices.Contains(aud, v.clientID)
	}
	clientID, _ := claims["client_id"].(string)
	return clientID == v.clientID
}

func callerFromClaims(claims jwt.MapClaims) *Caller {
	c := &Caller{
		Sub:   stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
	}
	c.Username = stringClaim(claims, "cognito:username")
	if c.Username == "" {
		c.Username = stringClaim(claims, "username")
	}

	if groups, ok := claims["cognito:groups"].([]any); ok {
		for _, g := range groups {
			if s, ok := g.(string); ok {
				c.Groups = append(c.Groups, s)
			}
		}
	}
	return c
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

type disabledVerifier struct{}

// DisabledVerifier is used when no user pool is configured. Every presented
// token is rejected; requests without one stay anonymous.
func DisabledVerifier() TokenVerifier {
	return disabledVerifier{}
}

func (disabledVerifier) Verify(context.Context, string) (*Caller, error) {
	return nil, ErrNotConfigured
}
