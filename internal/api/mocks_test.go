package api

import (
	"context"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/product"
	"signalcraft-be/internal/upload"

	"github.com/stretchr/testify/mock"
)

type MockOrders struct{ mock.Mock }

func (m *MockOrders) CreateOrder(ctx context.Context, in order.CreateInput, caller *auth.Caller) (*order.Order, error) {
	args := m.Called(ctx, in, caller)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) ListOrders(ctx context.Context, f order.ListFilter, caller *auth.Caller) ([]*order.Order, error) {
	args := m.Called(ctx, f, caller)
	o, _ := args.Get(0).([]*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) GetOrder(ctx context.Context, id string, caller *auth.Caller) (*order.Order, error) {
	args := m.Called(ctx, id, caller)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) UpdateStatus(ctx context.Context, id string, status order.Status, caller *auth.Caller) (*order.Order, error) {
	args := m.Called(ctx, id, status, caller)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) UpdateShipping(ctx context.Context, id string, u order.ShippingUpdate, caller *auth.Caller) (*order.Order, error) {
	args := m.Called(ctx, id, u, caller)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrders) AddEvent(ctx context.Context, id string, in order.EventInput, caller *auth.Caller) (*order.Event, error) {
	args := m.Called(ctx, id, in, caller)
	e, _ := args.Get(0).(*order.Event)
	return e, args.Error(1)
}

func (m *MockOrders) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockDesigns struct{ mock.Mock }

func (m *MockDesigns) ListDesigns(ctx context.Context, orderID string) ([]design.Design, error) {
	args := m.Called(ctx, orderID)
	d, _ := args.Get(0).([]design.Design)
	return d, args.Error(1)
}

func (m *MockDesigns) GetDesign(ctx context.Context, id string) (*design.Design, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*design.Design)
	return d, args.Error(1)
}

func (m *MockDesigns) CreateDesign(ctx context.Context, orderID string, in design.CreateDesignInput) (*design.Design, error) {
	args := m.Called(ctx, orderID, in)
	d, _ := args.Get(0).(*design.Design)
	return d, args.Error(1)
}

func (m *MockDesigns) ListReviews(ctx context.Context, designID string) ([]design.Review, error) {
	args := m.Called(ctx, designID)
	r, _ := args.Get(0).([]design.Review)
	return r, args.Error(1)
}

func (m *MockDesigns) CreateReview(ctx context.Context, designID string, in design.CreateReviewInput) (*design.Review, error) {
	args := m.Called(ctx, designID, in)
	r, _ := args.Get(0).(*design.Review)
	return r, args.Error(1)
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) ListProducts(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) ListAllProducts(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) CreateProduct(ctx context.Context, in product.CreateInput) (*product.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) UpdateProduct(ctx context.Context, id string, in product.UpdateInput) (*product.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

func (m *MockProducts) DeactivateProduct(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*product.Product)
	return p, args.Error(1)
}

type MockContact struct{ mock.Mock }

func (m *MockContact) CreateMessage(ctx context.Context, in contact.CreateInput) (*contact.Message, error) {
	args := m.Called(ctx, in)
	msg, _ := args.Get(0).(*contact.Message)
	return msg, args.Error(1)
}

func (m *MockContact) ListMessages(ctx context.Context) ([]contact.Message, error) {
	args := m.Called(ctx)
	msgs, _ := args.Get(0).([]contact.Message)
	return msgs, args.Error(1)
}

func (m *MockContact) UpdateStatus(ctx context.Context, id string, status contact.Status) (*contact.Message, error) {
	args := m.Called(ctx, id, status)
	msg, _ := args.Get(0).(*contact.Message)
	return msg, args.Error(1)
}

type MockUploads struct{ mock.Mock }

func (m *MockUploads) CreatePresignedURL(ctx context.Context, req upload.Request) (*upload.Presigned, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*upload.Presigned)
	return p, args.Error(1)
}

type MockIdentity struct{ mock.Mock }

func (m *MockIdentity) Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*auth.TokenSet, error) {
	args := m.Called(ctx, code, codeVerifier, redirectURI)
	t, _ := args.Get(0).(*auth.TokenSet)
	return t, args.Error(1)
}

func (m *MockIdentity) LogoutURL() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockIdentity) IdentityPoolConfig() (auth.IdentityPoolConfig, error) {
	args := m.Called()
	return args.Get(0).(auth.IdentityPoolConfig), args.Error(1)
}

// stubVerifier accepts the tokens it knows.
type stubVerifier map[string]*auth.Caller

func (s stubVerifier) Verify(_ context.Context, raw string) (*auth.Caller, error) {
	if c, ok := s[raw]; ok {
		return c, nil
	}
	return nil, auth.ErrUnauthorized
}
