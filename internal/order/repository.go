package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"signalcraft-be/internal/db"
	"signalcraft-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	orderNumberConstraint  = "orders_order_number_key"
	maxOrderNumberAttempts = 5
)

// Criteria narrows a listing. Values are persisted enum spellings; empty
// fields do not filter.
type Criteria struct {
	Status  string
	Type    string
	OwnerID string
}

type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, c Criteria) ([]*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListEvents(ctx context.Context, orderID string) ([]Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetPaymentState(ctx context.Context, id string) (*PaymentState, error)
	UpdateStatus(ctx context.Context, id string, status Status, paymentRequiredAt *time.Time) error
	UpdateShipping(ctx context.Context, id string, u ShippingUpdate) error
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus, paidAt *time.Time) error
	InsertEvent(ctx context.Context, e *Event) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.order_number, o.type, o.status, o.payment_status,
	o.payment_required_at, o.paid_at, o.payment_provider, o.payment_reference, o.payment_method,
	o.subtotal, o.tax, o.shipping, o.total,
	o.shipping_address, o.billing_address,
	o.shipping_carrier, o.shipping_service, o.tracking_number, o.tracking_url,
	o.shipped_at, o.delivered_at, o.user_id, o.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*Order, error) {
	var (
		o                        Order
		typ, status, payment     string
		shippingAddr, billingAdr []byte
	)
	err := s.Scan(
		&o.ID, &o.OrderNumber, &typ, &status, &payment,
		&o.PaymentRequiredAt, &o.PaidAt, &o.PaymentProvider, &o.PaymentReference, &o.PaymentMethod,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Total,
		&shippingAddr, &billingAdr,
		&o.ShippingCarrier, &o.ShippingService, &o.TrackingNumber, &o.TrackingURL,
		&o.ShippedAt, &o.DeliveredAt, &o.UserID, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Type = Type(typ)
	o.PaymentStatus = PaymentStatus(payment)
	if o.Status, err = StatusFromDB(status); err != nil {
		return nil, err
	}
	if o.ShippingAddress, err = decodeAddress(shippingAddr); err != nil {
		return nil, err
	}
	if o.BillingAddress, err = decodeAddress(billingAdr); err != nil {
		return nil, err
	}
	return &o, nil
}

func decodeAddress(raw []byte) (*Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	return &a, nil
}

func decodeMetadata(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// jsonArg encodes v for a jsonb parameter, keeping nil values NULL.
func jsonArg[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func metadataArg(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	return jsonArg(&m)
}

// CreateOrder assigns the next order number and writes the order with its
// items in one transaction. A concurrent writer taking the same number makes
// the insert fail on the unique constraint; the whole attempt is retried.
func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", o.ID),
	)

	for attempt := 1; ; attempt++ {
		err := r.createOrderTx(ctx, o)
		if err == nil {
			log.Info("order created", zap.String("order_number", o.OrderNumber), zap.Int("attempt", attempt))
			return nil
		}
		if db.IsUniqueViolation(err, orderNumberConstraint) && attempt < maxOrderNumberAttempts {
			log.Warn("order number taken, retrying",
				zap.String("order_number", o.OrderNumber),
				zap.Int("attempt", attempt),
			)
			continue
		}
		log.Error("failed to create order", zap.Error(err))
		return err
	}
}

func (r *repository) createOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return fmt.Errorf("count orders: %w", err)
	}
	o.OrderNumber = FormatOrderNumber(count)

	status, err := StatusToDB(o.Status)
	if err != nil {
		return err
	}
	shipping, err := jsonArg(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}
	billing, err := jsonArg(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("encode billing address: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, type, status, payment_status,
			subtotal, tax, shipping, total,
			shipping_address, billing_address, user_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`,
		o.ID, o.OrderNumber, string(o.Type), status, string(o.PaymentStatus),
		o.Subtotal, o.Tax, o.Shipping, o.Total,
		shipping, billing, o.UserID,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range o.Items {
		meta, err := metadataArg(item.Metadata)
		if err != nil {
			return fmt.Errorf("encode item metadata: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, title, sku,
				quantity, unit_price, design_id, metadata, position
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			item.ID, o.ID, item.ProductID, item.Title, item.SKU,
			item.Quantity, item.UnitPrice, item.DesignID, meta, i,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		if item.NFCConfig != nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO nfc_configs (order_item_id, url, kind, notes)
				VALUES ($1,$2,$3,$4)
			`, item.ID, item.NFCConfig.URL, item.NFCConfig.Kind, item.NFCConfig.Notes)
			if err != nil {
				return fmt.Errorf("insert nfc config: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	committed = true
	return nil
}

func (r *repository) ListOrders(ctx context.Context, c Criteria) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	query := `SELECT` + orderColumns + ` FROM orders o WHERE 1=1`
	args := []any{}
	argIndex := 1

	if c.OwnerID != "" {
		query += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
		args = append(args, c.OwnerID)
		argIndex++
	}
	if c.Status != "" {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, c.Status)
		argIndex++
	}
	if c.Type != "" {
		query += fmt.Sprintf(" AND o.type = $%d", argIndex)
		args = append(args, c.Type)
		argIndex++
	}
	query += " ORDER BY o.created_at DESC"

	log.Debug("executing list orders query", zap.Any("args", args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []*Order{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	log.Info("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id),
	)

	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("order not found")
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to get order", zap.Error(err))
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.title, oi.sku,
			oi.quantity, oi.unit_price, oi.design_id, oi.metadata,
			n.url, n.kind, n.notes
		FROM order_items oi
		LEFT JOIN nfc_configs n ON n.order_item_id = oi.id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var (
			item     Item
			orderID  string
			meta     []byte
			nfcURL   *string
			nfcKind  *string
			nfcNotes *string
		)
		if err := rows.Scan(
			&item.ID, &orderID, &item.ProductID, &item.Title, &item.SKU,
			&item.Quantity, &item.UnitPrice, &item.DesignID, &meta,
			&nfcURL, &nfcKind, &nfcNotes,
		); err != nil {
			return nil, err
		}
		if item.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		if nfcURL != nil {
			item.NFCConfig = &NFCConfig{URL: *nfcURL, Kind: nfcKind, Notes: nfcNotes}
		}
		out[orderID] = append(out[orderID], item)
	}
	return out, rows.Err()
}

func (r *repository) ListEvents(ctx context.Context, orderID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, type, title, description, metadata,
		       is_customer_visible, created_by, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query order events",
			zap.String("layer", "repository"),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e    Event
			meta []byte
		)
		if err := rows.Scan(
			&e.ID, &e.OrderID, &e.Type, &e.Title, &e.Description, &meta,
			&e.IsCustomerVisible, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if e.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func (r *repository) GetPaymentState(ctx context.Context, id string) (*PaymentState, error) {
	var (
		st           PaymentState
		typ, payment string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT type, payment_status, payment_required_at FROM orders WHERE id = $1`, id,
	).Scan(&typ, &payment, &st.PaymentRequiredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	st.Type = Type(typ)
	st.PaymentStatus = PaymentStatus(payment)
	return &st, nil
}

// UpdateStatus never overwrites an existing payment_required_at.
func (r *repository) UpdateStatus(ctx context.Context, id string, status Status, paymentRequiredAt *time.Time) error {
	dbStatus, err := StatusToDB(status)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_required_at = COALESCE(payment_required_at, $2),
		    updated_at = NOW()
		WHERE id = $3
	`, dbStatus, paymentRequiredAt, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return err
	}
	return expectOneRow(res)
}

func (r *repository) UpdateShipping(ctx context.Context, id string, u ShippingUpdate) error {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.ShippingCarrier != nil {
		set("shipping_carrier", *u.ShippingCarrier)
	}
	if u.ShippingService != nil {
		set("shipping_service", *u.ShippingService)
	}
	if u.TrackingNumber != nil {
		set("tracking_number", *u.TrackingNumber)
	}
	if u.TrackingURL != nil {
		set("tracking_url", *u.TrackingURL)
	}
	if u.ShippedAt != nil {
		set("shipped_at", *u.ShippedAt)
	}
	if u.DeliveredAt != nil {
		set("delivered_at", *u.DeliveredAt)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update shipping",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return err
	}
	return expectOneRow(res)
}

// UpdatePaymentStatus leaves paid_at untouched when paidAt is nil.
func (r *repository) UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $1,
		    paid_at = COALESCE($2, paid_at),
		    updated_at = NOW()
		WHERE id = $3
	`, string(status), paidAt, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update payment status",
			zap.String("layer", "repository"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return err
	}
	return expectOneRow(res)
}

func (r *repository) InsertEvent(ctx context.Context, e *Event) error {
	meta, err := metadataArg(e.Metadata)
	if err != nil {
		return fmt.Errorf("encode event metadata: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO order_events (
			id, order_id, type, title, description, metadata, is_customer_visible, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`,
		e.ID, e.OrderID, e.Type, e.Title, e.Description, meta, e.IsCustomerVisible, e.CreatedBy,
	).Scan(&e.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order event",
			zap.String("layer", "repository"),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
