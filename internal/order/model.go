package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCustom Type = "custom"
	TypeStore  Type = "store"
)

// Status is the public lifecycle vocabulary. The persisted enum differs for
// submitted (intake) and on-hold (on_hold).
type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusDesigning  Status = "designing"
	StatusReview     Status = "review"
	StatusApproved   Status = "approved"
	StatusProduction Status = "production"
	StatusShipping   Status = "shipping"
	StatusComplete   Status = "complete"
	StatusOnHold     Status = "on-hold"
	StatusCanceled   Status = "canceled"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentPaid       PaymentStatus = "paid"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentDisputed   PaymentStatus = "disputed"
)

type Address struct {
	Name       string  `json:"name,omitempty"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      *string `json:"state,omitempty"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

type NFCConfig struct {
	URL   string  `json:"url"`
	Kind  *string `json:"kind,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Item snapshots title, sku and price at checkout; it does not follow later
// product edits.
type Item struct {
	ID        string          `json:"id"`
	ProductID *string         `json:"productId,omitempty"`
	Title     string          `json:"title"`
	SKU       *string         `json:"sku,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	NFCConfig *NFCConfig      `json:"nfcConfig,omitempty"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	DesignID  *string         `json:"designId,omitempty"`
}

type Event struct {
	ID                string         `json:"id"`
	OrderID           string         `json:"-"`
	Type              string         `json:"type"`
	Title             string         `json:"title"`
	Description       *string        `json:"description,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	IsCustomerVisible bool           `json:"isCustomerVisible"`
	CreatedBy         *string        `json:"createdBy,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	Type              Type            `json:"type"`
	Status            Status          `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	PaymentRequiredAt *time.Time      `json:"paymentRequiredAt,omitempty"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
	PaymentProvider   *string         `json:"paymentProvider,omitempty"`
	PaymentReference  *string         `json:"paymentReference,omitempty"`
	PaymentMethod     *string         `json:"paymentMethod,omitempty"`
	Items             []Item          `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Shipping          decimal.Decimal `json:"shipping"`
	Total             decimal.Decimal `json:"total"`
	ShippingAddress   *Address        `json:"shippingAddress,omitempty"`
	BillingAddress    *Address        `json:"billingAddress,omitempty"`
	ShippingCarrier   *string         `json:"shippingCarrier,omitempty"`
	ShippingService   *string         `json:"shippingService,omitempty"`
	TrackingNumber    *string         `json:"trackingNumber,omitempty"`
	TrackingURL       *string         `json:"trackingUrl,omitempty"`
	ShippedAt         *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	UserID            *string         `json:"-"`
	Events            []Event         `json:"events,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// PaymentState is the slice of an order consulted before a status change.
type PaymentState struct {
	Type              Type
	PaymentStatus     PaymentStatus
	PaymentRequiredAt *time.Time
}

type ItemInput struct {
	ProductID *string
	Title     string
	SKU       *string
	Quantity  int
	UnitPrice decimal.Decimal
	NFCConfig *NFCConfig
	DesignID  *string
	Metadata  map[string]any
}

type CreateInput struct {
	Type            Type
	Items           []ItemInput
	ShippingAddress *Address
	BillingAddress  *Address
}

// ListFilter holds raw query-string values; unrecognized values are ignored.
type ListFilter struct {
	Status string
	Type   string
}

// ShippingUpdate fields are applied only when non-nil.
type ShippingUpdate struct {
	ShippingCarrier *string
	ShippingService *string
	TrackingNumber  *string
	TrackingURL     *string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
}

type EventInput struct {
	Type              string
	Title             string
	Description       *string
	Metadata          map[string]any
	IsCustomerVisible *bool
}
