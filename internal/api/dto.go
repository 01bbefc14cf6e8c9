package api

import (
	"time"

	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/product"
	"signalcraft-be/internal/upload"

	"github.com/shopspring/decimal"
)

type addressRequest struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" validate:"required"`
	State      *string `json:"state"`
	PostalCode string  `json:"postalCode" validate:"required"`
	Country    string  `json:"country" validate:"required"`
	Phone      *string `json:"phone"`
}

func (a *addressRequest) toAddress() *order.Address {
	if a == nil {
		return nil
	}
	return &order.Address{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

type nfcConfigRequest struct {
	URL   string  `json:"url" validate:"required,url"`
	Kind  *string `json:"kind"`
	Notes *string `json:"notes"`
}

type orderItemRequest struct {
	ProductID *string           `json:"productId" validate:"omitnil,uuid"`
	Title     string            `json:"title" validate:"required"`
	SKU       *string           `json:"sku"`
	Quantity  int               `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal   `json:"unitPrice" validate:"gt=0"`
	NFCConfig *nfcConfigRequest `json:"nfcConfig" validate:"omitnil"`
	DesignID  *string           `json:"designId" validate:"omitnil,uuid"`
	Metadata  map[string]any    `json:"metadata"`
}

type createOrderRequest struct {
	Type            string             `json:"type" validate:"required,order_type"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *addressRequest    `json:"shippingAddress" validate:"omitnil"`
	BillingAddress  *addressRequest    `json:"billingAddress" validate:"omitnil"`
}

func (req createOrderRequest) toInput() order.CreateInput {
	t, _ := order.ParseType(req.Type)
	items := make([]order.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		var nfc *order.NFCConfig
		if it.NFCConfig != nil {
			nfc = &order.NFCConfig{URL: it.NFCConfig.URL, Kind: it.NFCConfig.Kind, Notes: it.NFCConfig.Notes}
		}
		items = append(items, order.ItemInput{
			ProductID: it.ProductID,
			Title:     it.Title,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			NFCConfig: nfc,
			DesignID:  it.DesignID,
			Metadata:  it.Metadata,
		})
	}
	return order.CreateInput{
		Type:            t,
		Items:           items,
		ShippingAddress: req.ShippingAddress.toAddress(),
		BillingAddress:  req.BillingAddress.toAddress(),
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

type paymentStatusRequest struct {
	Status string `json:"status" validate:"required,payment_status"`
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseISO8601 accepts full timestamps and date-only values. Values without
// an offset are read as UTC.
func parseISO8601(s string) (time.Time, error) {
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func isoTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseISO8601(*s)
	if err != nil {
		return nil
	}
	return &t
}

type shippingRequest struct {
	ShippingCarrier *string    `json:"shippingCarrier"`
	ShippingService *string    `json:"shippingService"`
	TrackingNumber  *string    `json:"trackingNumber"`
	TrackingURL     *string    `json:"trackingUrl"`
	ShippedAt       *string    `json:"shippedAt" validate:"omitnil,iso8601"`
	DeliveredAt     *string    `json:"deliveredAt" validate:"omitnil,iso8601"`
}

func (req shippingRequest) toUpdate() order.ShippingUpdate {
	return order.ShippingUpdate{
		ShippingCarrier: req.ShippingCarrier,
		ShippingService: req.ShippingService,
		TrackingNumber:  req.TrackingNumber,
		TrackingURL:     req.TrackingURL,
		ShippedAt:       isoTime(req.ShippedAt),
		DeliveredAt:     isoTime(req.DeliveredAt),
	}
}

type orderEventRequest struct {
	Type              string         `json:"type" validate:"required"`
	Title             string         `json:"title" validate:"required"`
	Description       *string        `json:"description"`
	Metadata          map[string]any `json:"metadata"`
	IsCustomerVisible *bool          `json:"isCustomerVisible"`
}

func (req orderEventRequest) toInput() order.EventInput {
	return order.EventInput{
		Type:              req.Type,
		Title:             req.Title,
		Description:       req.Description,
		Metadata:          req.Metadata,
		IsCustomerVisible: req.IsCustomerVisible,
	}
}

type createDesignRequest struct {
	Version    int     `json:"version" validate:"gte=1"`
	Status     string  `json:"status" validate:"required,design_status"`
	PreviewURL string  `json:"previewUrl" validate:"required,url"`
	SourceURL  *string `json:"sourceUrl" validate:"omitnil,url"`
}

func (req createDesignRequest) toInput() design.CreateDesignInput {
	st, _ := design.ParseStatus(req.Status)
	return design.CreateDesignInput{
		Version:    req.Version,
		Status:     st,
		PreviewURL: req.PreviewURL,
		SourceURL:  req.SourceURL,
	}
}

type createReviewRequest struct {
	Status        string  `json:"status" validate:"required,review_status"`
	Comment       *string `json:"comment"`
	AttachmentURL *string `json:"attachmentUrl" validate:"omitnil,url"`
}

func (req createReviewRequest) toInput() design.CreateReviewInput {
	st, _ := design.ParseReviewStatus(req.Status)
	return design.CreateReviewInput{
		Status:        st,
		Comment:       req.Comment,
		AttachmentURL: req.AttachmentURL,
	}
}

type productImageRequest struct {
	URL       string  `json:"url" validate:"required,url"`
	Alt       *string `json:"alt"`
	SortOrder *int    `json:"sortOrder" validate:"omitnil,gte=0"`
	IsMain    bool    `json:"isMain"`
}

func toImageInputs(in []productImageRequest) []product.ImageInput {
	out := make([]product.ImageInput, 0, len(in))
	for _, img := range in {
		out = append(out, product.ImageInput{URL: img.URL, Alt: img.Alt, SortOrder: img.SortOrder, IsMain: img.IsMain})
	}
	return out
}

type createProductRequest struct {
	Title            string                `json:"title" validate:"required,min=2"`
	SKU              string                `json:"sku" validate:"required,min=2"`
	Description      *string               `json:"description"`
	BasePrice        *decimal.Decimal      `json:"basePrice" validate:"required,gte=0"`
	Category         *string               `json:"category"`
	AllowsNFC        bool                  `json:"allowsNfc"`
	AllowsLogoUpload bool                  `json:"allowsLogoUpload"`
	Images           []productImageRequest `json:"images" validate:"omitempty,dive"`
}

func (req createProductRequest) toInput() product.CreateInput {
	return product.CreateInput{
		Title:            req.Title,
		SKU:              req.SKU,
		Description:      req.Description,
		BasePrice:        *req.BasePrice,
		Category:         req.Category,
		AllowsNFC:        req.AllowsNFC,
		AllowsLogoUpload: req.AllowsLogoUpload,
		Images:           toImageInputs(req.Images),
	}
}

type updateProductRequest struct {
	Title            *string                `json:"title" validate:"omitnil,min=2"`
	SKU              *string                `json:"sku" validate:"omitnil,min=2"`
	Description      *string                `json:"description"`
	BasePrice        *decimal.Decimal       `json:"basePrice" validate:"omitnil,gte=0"`
	Category         *string                `json:"category"`
	AllowsNFC        *bool                  `json:"allowsNfc"`
	AllowsLogoUpload *bool                  `json:"allowsLogoUpload"`
	Images           *[]productImageRequest `json:"images" validate:"omitnil,dive"`
}

func (req updateProductRequest) toInput() product.UpdateInput {
	in := product.UpdateInput{
		Title:            req.Title,
		SKU:              req.SKU,
		Description:      req.Description,
		BasePrice:        req.BasePrice,
		Category:         req.Category,
		AllowsNFC:        req.AllowsNFC,
		AllowsLogoUpload: req.AllowsLogoUpload,
	}
	if req.Images != nil {
		images := toImageInputs(*req.Images)
		in.Images = &images
	}
	return in
}

type contactRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email,max=200"`
	Subject *string `json:"subject" validate:"omitnil,max=200"`
	Message string  `json:"message" validate:"required,max=5000"`
}

func (req contactRequest) toInput() contact.CreateInput {
	return contact.CreateInput{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}
}

type contactStatusRequest struct {
	Status string `json:"status" validate:"required,contact_status"`
}

type presignRequest struct {
	FileName    string  `json:"fileName" validate:"required"`
	ContentType string  `json:"contentType" validate:"required"`
	OrderID     *string `json:"orderId" validate:"omitnil,uuid"`
	Category    string  `json:"category" validate:"required,upload_category"`
}

func (req presignRequest) toRequest() upload.Request {
	c, _ := upload.ParseCategory(req.Category)
	return upload.Request{FileName: req.FileName, ContentType: req.ContentType, OrderID: req.OrderID, Category: c}
}

type exchangeRequest struct {
	Code         string `json:"code" validate:"required"`
	CodeVerifier string `json:"codeVerifier" validate:"required"`
	RedirectURI  string `json:"redirectUri" validate:"required,url"`
}

type meResponse struct {
	ID       string   `json:"id"`
	Email    *string  `json:"email"`
	Username *string  `json:"username"`
	Groups   []string `json:"groups"`
}
