package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaller(t *testing.T) {
	t.Run("IsAdmin", func(t *testing.T) {
		var anon *Caller
		assert.False(t, anon.IsAdmin())
		assert.False(t, (&Caller{Groups: []string{"staff"}}).IsAdmin())
		assert.True(t, (&Caller{Groups: []string{"staff", "admin"}}).IsAdmin())
	})

	t.Run("Author prefers email", func(t *testing.T) {
		c := &Caller{Email: "a@b.c", Username: "ab"}
		assert.Equal(t, "a@b.c", *c.Author())

		c.Email = ""
		assert.Equal(t, "ab", *c.Author())

		c.Username = ""
		assert.Nil(t, c.Author())

		var anon *Caller
		assert.Nil(t, anon.Author())
	})

	t.Run("Context round trip", func(t *testing.T) {
		c := &Caller{Sub: "s"}
		ctx := WithCaller(context.Background(), c)
		assert.Same(t, c, CallerFrom(ctx))
		assert.Nil(t, CallerFrom(context.Background()))
	})
}

func TestPolicy(t *testing.T) {
	p := NewPolicy(false)
	admin := &Caller{Sub: "a", Groups: []string{AdminGroup}}
	customer := &Caller{Sub: "c", Email: "c@example.com"}

	t.Run("Authenticated", func(t *testing.T) {
		assert.ErrorIs(t, p.Authenticated(nil).Err(), ErrUnauthorized)
		assert.NoError(t, p.Authenticated(customer).Err())
	})

	t.Run("Admin", func(t *testing.T) {
		assert.ErrorIs(t, p.Admin(nil).Err(), ErrUnauthorized)
		assert.ErrorIs(t, p.Admin(customer).Err(), ErrForbidden)
		assert.True(t, p.Admin(admin).Allowed)
	})

	t.Run("ScopeOrders", func(t *testing.T) {
		assert.True(t, p.ScopeOrders(admin).All)
		assert.False(t, p.ScopeOrders(customer).All)
	})

	t.Run("CanViewOrder", func(t *testing.T) {
		owner := "user-1"
		assert.True(t, p.CanViewOrder(admin, nil, "").Allowed)
		assert.True(t, p.CanViewOrder(customer, &owner, "user-1").Allowed)
		assert.False(t, p.CanViewOrder(customer, &owner, "user-2").Allowed)
		assert.False(t, p.CanViewOrder(customer, nil, "user-1").Allowed)
		assert.False(t, p.CanViewOrder(customer, &owner, "").Allowed)
		assert.ErrorIs(t, p.CanViewOrder(customer, &owner, "user-2").Err(), ErrForbidden)
	})

	t.Run("CanViewEvent", func(t *testing.T) {
		assert.True(t, p.CanViewEvent(admin, false))
		assert.True(t, p.CanViewEvent(customer, true))
		assert.False(t, p.CanViewEvent(customer, false))
		assert.False(t, p.CanViewEvent(nil, false))
	})

	t.Run("CanUpdatePayment", func(t *testing.T) {
		assert.ErrorIs(t, p.CanUpdatePayment(customer).Err(), ErrForbidden)
		assert.True(t, p.CanUpdatePayment(admin).Allowed)
		assert.ErrorIs(t, p.CanUpdatePayment(nil).Err(), ErrUnauthorized)

		mock := NewPolicy(true)
		assert.True(t, mock.CanUpdatePayment(customer).Allowed)
		assert.ErrorIs(t, mock.CanUpdatePayment(nil).Err(), ErrUnauthorized)
	})
}
