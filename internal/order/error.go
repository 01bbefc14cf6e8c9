package order

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrForbidden     = errors.New("insufficient permissions")
	ErrEmptyOrder    = errors.New("order must contain at least one item")
)
