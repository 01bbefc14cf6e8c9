package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("sku already exists")
	ErrNoFields        = errors.New("no fields to update")
)
