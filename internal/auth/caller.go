package auth

import (
	"context"
	"slices"
)

const AdminGroup = "admin"

// Caller is the identity attached to a request after token verification.
// A nil *Caller is an anonymous request.
type Caller struct {
	Sub      string
	Email    string
	Username string
	Groups   []string
}

func (c *Caller) IsAdmin() bool {
	return c != nil && slices.Contains(c.Groups, AdminGroup)
}

// Author is the attribution written on audit entries.
func (c *Caller) Author() *string {
	if c == nil {
		return nil
	}
	if c.Email != "" {
		return &c.Email
	}
	if c.Username != "" {
		return &c.Username
	}
	return nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func CallerFrom(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey{}).(*Caller)
	return c
}
