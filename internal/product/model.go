package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Image struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Alt       *string `json:"alt,omitempty"`
	SortOrder int     `json:"sortOrder"`
	IsMain    bool    `json:"isMain"`
}

type Product struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	SKU              string          `json:"sku"`
	Description      *string         `json:"description,omitempty"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	Category         *string         `json:"category,omitempty"`
	AllowsNFC        bool            `json:"allowsNfc"`
	AllowsLogoUpload bool            `json:"allowsLogoUpload"`
	Active           bool            `json:"active"`
	Images           []Image         `json:"images"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type ImageInput struct {
	URL       string
	Alt       *string
	SortOrder *int
	IsMain    bool
}

type CreateInput struct {
	Title            string
	SKU              string
	Description      *string
	BasePrice        decimal.Decimal
	Category         *string
	AllowsNFC        bool
	AllowsLogoUpload bool
	Images           []ImageInput
}

// UpdateInput applies non-nil fields. A non-nil Images replaces the whole
// image set, and an empty slice clears it.
type UpdateInput struct {
	Title            *string
	SKU              *string
	Description      *string
	BasePrice        *decimal.Decimal
	Category         *string
	AllowsNFC        *bool
	AllowsLogoUpload *bool
	Images           *[]ImageInput
}

func (u UpdateInput) HasFields() bool {
	return u.Title != nil || u.SKU != nil || u.Description != nil || u.BasePrice != nil ||
		u.Category != nil || u.AllowsNFC != nil || u.AllowsLogoUpload != nil || u.Images != nil
}
