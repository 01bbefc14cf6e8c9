package auth

// Decision is the outcome of a policy check. Err maps a denial onto the
// taxonomy handlers translate into HTTP statuses.
type Decision struct {
	Allowed bool
	Reason  string
	Caller  *Caller
}

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Caller == nil {
		return ErrUnauthorized
	}
	return ErrForbidden
}

func allow(c *Caller) Decision { return Decision{Allowed: true, Caller: c} }

func deny(c *Caller, reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Caller: c}
}

// OrderScope tells a listing query how to restrict rows for a caller.
// Callers without All only see rows owned by their resolved user id.
type OrderScope struct {
	All bool
}

type Policy struct {
	AllowMockPayments bool
}

func NewPolicy(allowMockPayments bool) Policy {
	return Policy{AllowMockPayments: allowMockPayments}
}

func (p Policy) Authenticated(c *Caller) Decision {
	if c == nil {
		return deny(nil, "authentication required")
	}
	return allow(c)
}

func (p Policy) Admin(c *Caller) Decision {
	if c == nil {
		return deny(nil, "authentication required")
	}
	if !c.IsAdmin() {
		return deny(c, "admin group required")
	}
	return allow(c)
}

func (p Policy) ScopeOrders(c *Caller) OrderScope {
	if c.IsAdmin() {
		return OrderScope{All: true}
	}
	return OrderScope{}
}

// CanViewOrder checks ownership. ownerID is the order's user id (nil for
// anonymous orders); resolvedUserID is the caller's upserted user id, empty
// when the caller has no email.
func (p Policy) CanViewOrder(c *Caller, ownerID *string, resolvedUserID string) Decision {
	if c.IsAdmin() {
		return allow(c)
	}
	if resolvedUserID == "" || ownerID == nil || *ownerID != resolvedUserID {
		return deny(c, "order belongs to another user")
	}
	return allow(c)
}

func (p Policy) CanViewEvent(c *Caller, customerVisible bool) bool {
	return c.IsAdmin() || customerVisible
}

// CanUpdatePayment admits admins, or anyone authenticated when mock payments
// are enabled for the stage.
func (p Policy) CanUpdatePayment(c *Caller) Decision {
	if c == nil {
		return deny(nil, "authentication required")
	}
	if p.AllowMockPayments || c.IsAdmin() {
		return allow(c)
	}
	return deny(c, "payment updates are admin only")
}
