package auth

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("insufficient permissions")
	ErrNotConfigured  = errors.New("cognito configuration missing")
	ErrExchangeFailed = errors.New("token exchange failed")
)
