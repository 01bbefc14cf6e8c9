package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/notify"
	"signalcraft-be/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	CreateOrder(ctx context.Context, in CreateInput, caller *auth.Caller) (*Order, error)
	ListOrders(ctx context.Context, f ListFilter, caller *auth.Caller) ([]*Order, error)
	GetOrder(ctx context.Context, id string, caller *auth.Caller) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status, caller *auth.Caller) (*Order, error)
	UpdateShipping(ctx context.Context, id string, u ShippingUpdate, caller *auth.Caller) (*Order, error)
	AddEvent(ctx context.Context, id string, in EventInput, caller *auth.Caller) (*Event, error)
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error)
}

type service struct {
	repo      Repository
	owners    user.Service
	policy    auth.Policy
	publisher notify.Publisher
	now       func() time.Time
}

func NewService(repo Repository, owners user.Service, policy auth.Policy, publisher notify.Publisher) Service {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &service{
		repo:      repo,
		owners:    owners,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
	}
}

// Subtotal sums quantity × unit price. Tax and shipping are not computed at
// checkout.
func Subtotal(items []ItemInput) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// RequiresPayment reports whether moving to next should stamp
// payment_required_at. Custom orders become payable once the design is
// approved, and only the first approval counts.
func RequiresPayment(next Status, st *PaymentState) bool {
	return next == StatusApproved &&
		st.Type == TypeCustom &&
		st.PaymentStatus == PaymentUnpaid &&
		st.PaymentRequiredAt == nil
}

func (s *service) CreateOrder(ctx context.Context, in CreateInput, caller *auth.Caller) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
	)

	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	o := &Order{
		ID:              uuid.NewString(),
		Type:            in.Type,
		Status:          StatusSubmitted,
		PaymentStatus:   PaymentUnpaid,
		Tax:             decimal.Zero,
		Shipping:        decimal.Zero,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
	}
	o.Subtotal = Subtotal(in.Items)
	o.Total = o.Subtotal.Add(o.Tax).Add(o.Shipping)

	if caller != nil {
		ownerID, ok, err := s.owners.ResolveOwner(ctx, caller)
		if err != nil {
			return nil, err
		}
		if ok {
			o.UserID = &ownerID
		}
	}

	o.Items = make([]Item, 0, len(in.Items))
	for _, it := range in.Items {
		o.Items = append(o.Items, Item{
			ID:        uuid.NewString(),
			ProductID: it.ProductID,
			Title:     it.Title,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			NFCConfig: it.NFCConfig,
			Metadata:  it.Metadata,
			DesignID:  it.DesignID,
		})
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.String()),
	)
	s.publish(ctx, notify.KindOrderCreated, o)
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, f ListFilter, caller *auth.Caller) ([]*Order, error) {
	var c Criteria
	if v, ok := ParseStatusFilter(f.Status); ok {
		c.Status = v
	}
	if v, ok := ParseTypeFilter(f.Type); ok {
		c.Type = v
	}

	if scope := s.policy.ScopeOrders(caller); !scope.All {
		ownerID, ok, err := s.owners.ResolveOwner(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []*Order{}, nil
		}
		c.OwnerID = ownerID
	}

	return s.repo.ListOrders(ctx, c)
}

func (s *service) GetOrder(ctx context.Context, id string, caller *auth.Caller) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id),
	)

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	var resolved string
	if !caller.IsAdmin() {
		if resolved, _, err = s.owners.ResolveOwner(ctx, caller); err != nil {
			return nil, err
		}
	}
	if d := s.policy.CanViewOrder(caller, o.UserID, resolved); !d.Allowed {
		log.Warn("order access denied", zap.String("reason", d.Reason))
		return nil, ErrForbidden
	}

	events, err := s.repo.ListEvents(ctx, id)
	if err != nil {
		log.Error("failed to list events", zap.Error(err))
		return nil, err
	}
	visible := make([]Event, 0, len(events))
	for _, e := range events {
		if s.policy.CanViewEvent(caller, e.IsCustomerVisible) {
			visible = append(visible, e)
		}
	}
	o.Events = visible

	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status, caller *auth.Caller) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
		zap.String("status", string(status)),
	)

	state, err := s.repo.GetPaymentState(ctx, id)
	if err != nil {
		return nil, err
	}

	var requiredAt *time.Time
	if RequiresPayment(status, state) {
		now := s.now()
		requiredAt = &now
		log.Info("order now requires payment")
	}

	if err := s.repo.UpdateStatus(ctx, id, status, requiredAt); err != nil {
		return nil, err
	}

	err = s.repo.InsertEvent(ctx, &Event{
		ID:                uuid.NewString(),
		OrderID:           id,
		Type:              "status",
		Title:             fmt.Sprintf("Status updated to %s", status),
		IsCustomerVisible: true,
		CreatedBy:         caller.Author(),
	})
	if err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.KindStatusChanged, o)
	return o, nil
}

func (s *service) UpdateShipping(ctx context.Context, id string, u ShippingUpdate, caller *auth.Caller) (*Order, error) {
	if err := s.repo.UpdateShipping(ctx, id, u); err != nil {
		return nil, err
	}

	e := &Event{
		ID:                uuid.NewString(),
		OrderID:           id,
		Type:              "shipping",
		Title:             "Shipping updated",
		IsCustomerVisible: true,
		CreatedBy:         caller.Author(),
	}
	if u.TrackingNumber != nil && strings.TrimSpace(*u.TrackingNumber) != "" {
		desc := "Tracking number " + *u.TrackingNumber
		e.Description = &desc
	}
	if err := s.repo.InsertEvent(ctx, e); err != nil {
		return nil, err
	}

	o, err := s.GetOrder(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.KindShippingChange, o)
	return o, nil
}

func (s *service) AddEvent(ctx context.Context, id string, in EventInput, caller *auth.Caller) (*Event, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOrderNotFound
	}

	visible := true
	if in.IsCustomerVisible != nil {
		visible = *in.IsCustomerVisible
	}

	e := &Event{
		ID:                uuid.NewString(),
		OrderID:           id,
		Type:              in.Type,
		Title:             in.Title,
		Description:       in.Description,
		Metadata:          in.Metadata,
		IsCustomerVisible: visible,
		CreatedBy:         caller.Author(),
	}
	if err := s.repo.InsertEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdatePaymentStatus writes no timeline event.
func (s *service) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Order, error) {
	var paidAt *time.Time
	if status == PaymentPaid {
		now := s.now()
		paidAt = &now
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, status, paidAt); err != nil {
		return nil, err
	}

	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.KindPaymentChanged, o)
	return o, nil
}

// publish failures are logged and never returned.
func (s *service) publish(ctx context.Context, kind notify.Kind, o *Order) {
	err := s.publisher.Publish(ctx, notify.OrderNotification{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Kind:          kind,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		OccurredAt:    s.now().UTC(),
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("order notification dropped",
			zap.String("order_id", o.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
