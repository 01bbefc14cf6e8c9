package auth

import (
	"net/http"
	"strings"
)

const (
	AccessTokenCookie = "access_token"
	IDTokenCookie     = "id_token"
)

// ExtractAccessToken prefers the httpOnly cookie set by /auth/exchange and
// falls back to an Authorization bearer header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	return ""
}

// ExtractIDToken returns the id token cookie set alongside the access token.
func ExtractIDToken(r *http.Request) string {
	if cookie, err := r.Cookie(IDTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
