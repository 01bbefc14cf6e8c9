package auth

import (
	"errors"
	"net/http"

	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/utils"

	"go.uber.org/zap"
)

// Authenticate attaches the verified Caller to the request context. Requests
// without a token pass through anonymously; a token that fails verification
// is rejected.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractAccessToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			caller, err := v.Verify(ctx, raw)
			if err != nil {
				logger.FromCtx(ctx).Warn("token verification failed", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			caller = withIDClaims(r, v, caller)
			ctx = WithCaller(ctx, caller)
			ctx = logger.WithCallerSub(ctx, caller.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withIDClaims fills identity fields the access token lacks (Cognito access
// tokens carry no email) from the id token cookie. The id token must verify
// and belong to the same subject; otherwise the caller is returned as is.
func withIDClaims(r *http.Request, v TokenVerifier, caller *Caller) *Caller {
	if caller.Email != "" {
		return caller
	}
	raw := ExtractIDToken(r)
	if raw == "" {
		return caller
	}

	ctx := r.Context()
	id, err := v.Verify(ctx, raw)
	if err != nil {
		logger.FromCtx(ctx).Warn("id token ignored", zap.Error(err))
		return caller
	}
	if id.Sub != caller.Sub {
		logger.FromCtx(ctx).Warn("id token subject mismatch", zap.String("sub", caller.Sub))
		return caller
	}

	merged := *caller
	merged.Email = id.Email
	if merged.Username == "" {
		merged.Username = id.Username
	}
	if len(merged.Groups) == 0 {
		merged.Groups = id.Groups
	}
	return &merged
}

// Require evaluates a policy check against the request's caller before the
// handler runs.
func Require(check func(*Caller) Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := check(CallerFrom(r.Context()))
			if err := d.Err(); err != nil {
				status := http.StatusForbidden
				if errors.Is(err, ErrUnauthorized) {
					status = http.StatusUnauthorized
				}
				logger.FromCtx(r.Context()).Debug("request denied",
					zap.String("path", r.URL.Path),
					zap.String("reason", d.Reason),
				)
				utils.WriteJSONError(w, err.Error(), status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
