package order

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "order_number", "type", "status", "payment_status",
	"payment_required_at", "paid_at", "payment_provider", "payment_reference", "payment_method",
	"subtotal", "tax", "shipping", "total",
	"shipping_address", "billing_address",
	"shipping_carrier", "shipping_service", "tracking_number", "tracking_url",
	"shipped_at", "delivered_at", "user_id", "created_at",
}

var itemRowColumns = []string{
	"id", "order_id", "product_id", "title", "sku",
	"quantity", "unit_price", "design_id", "metadata",
	"url", "kind", "notes",
}

func orderRow(rows *sqlmock.Rows, id, status string, userID any, created time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "SC-1001", "custom", status, "unpaid",
		nil, nil, nil, nil, nil,
		"50.00", "0", "0", "50.00",
		[]byte(`{"line1":"1 Main St","city":"Portland","postalCode":"97201","country":"US"}`), nil,
		nil, nil, nil, nil,
		nil, nil, userID, created,
	)
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(db), mock, func() { db.Close() }
}

func sampleOrder() *Order {
	kind := "url"
	return &Order{
		ID:            "order-1",
		Type:          TypeCustom,
		Status:        StatusSubmitted,
		PaymentStatus: PaymentUnpaid,
		Subtotal:      decimal.NewFromInt(50),
		Tax:           decimal.Zero,
		Shipping:      decimal.Zero,
		Total:         decimal.NewFromInt(50),
		Items: []Item{
			{ID: "item-1", Title: "Sticker", Quantity: 2, UnitPrice: decimal.NewFromInt(20)},
			{
				ID: "item-2", Title: "Tag", Quantity: 1, UnitPrice: decimal.NewFromInt(10),
				NFCConfig: &NFCConfig{URL: "https://x.test", Kind: &kind},
				Metadata:  map[string]any{"color": "red"},
			},
		},
	}
}

func TestRepository_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		created := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
		mock.ExpectQuery(`INSERT INTO orders \(.*\) VALUES .* RETURNING created_at`).
			WithArgs("order-1", "SC-1042", "custom", "intake", "unpaid",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				nil, nil, nil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs("item-1", "order-1", nil, "Sticker", nil, 2, sqlmock.AnyArg(), nil, nil, 0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs("item-2", "order-1", nil, "Tag", nil, 1, sqlmock.AnyArg(), nil, `{"color":"red"}`, 1).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO nfc_configs \(order_item_id, url, kind, notes\)`).
			WithArgs("item-2", "https://x.test", "url", nil).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		o := sampleOrder()
		err := repo.CreateOrder(ctx, o)
		require.NoError(t, err)
		assert.Equal(t, "SC-1042", o.OrderNumber)
		assert.Equal(t, created, o.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries on order number collision", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		collision := &pq.Error{Code: "23505", Constraint: "orders_order_number_key"}

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO orders`).WillReturnError(collision)
		mock.ExpectRollback()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs("order-1", "SC-1002", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectCommit()

		o := sampleOrder()
		o.Items = nil
		require.NoError(t, repo.CreateOrder(ctx, o))
		assert.Equal(t, "SC-1002", o.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		collision := &pq.Error{Code: "23505", Constraint: "orders_order_number_key"}
		for i := 0; i < maxOrderNumberAttempts; i++ {
			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(`INSERT INTO orders`).WillReturnError(collision)
			mock.ExpectRollback()
		}

		o := sampleOrder()
		o.Items = nil
		err := repo.CreateOrder(ctx, o)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Item failure rolls back", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnError(errors.New("fk violation"))
		mock.ExpectRollback()

		err := repo.CreateOrder(ctx, sampleOrder())
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner and filters", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		created := time.Now()
		mock.ExpectQuery(`SELECT .* FROM orders o WHERE 1=1 AND o.user_id = \$1 AND o.status = \$2 AND o.type = \$3 ORDER BY o.created_at DESC`).
			WithArgs("user-1", "intake", "custom").
			WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "order-1", "intake", "user-1", created))
		mock.ExpectQuery(`SELECT .* FROM order_items oi LEFT JOIN nfc_configs n .* WHERE oi.order_id = ANY\(\$1\) ORDER BY oi.order_id, oi.position`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(itemRowColumns).
				AddRow("item-1", "order-1", nil, "Sticker", nil, 2, "20.00", nil, nil, nil, nil, nil).
				AddRow("item-2", "order-1", nil, "Tag", nil, 1, "10.00", nil, []byte(`{"color":"red"}`), "https://x.test", "url", nil))

		out, err := repo.ListOrders(ctx, Criteria{Status: "intake", Type: "custom", OwnerID: "user-1"})
		require.NoError(t, err)
		require.Len(t, out, 1)

		o := out[0]
		assert.Equal(t, StatusSubmitted, o.Status)
		assert.Equal(t, "Portland", o.ShippingAddress.City)
		assert.Nil(t, o.BillingAddress)
		assert.True(t, o.Total.Equal(decimal.NewFromInt(50)))
		require.Len(t, o.Items, 2)
		assert.Nil(t, o.Items[0].NFCConfig)
		assert.Equal(t, "https://x.test", o.Items[1].NFCConfig.URL)
		assert.Equal(t, "red", o.Items[1].Metadata["color"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No filters, no rows", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM orders o WHERE 1=1 ORDER BY o.created_at DESC`).
			WithArgs().
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		out, err := repo.ListOrders(ctx, Criteria{})
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Query error", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM orders o`).WillReturnError(errors.New("db down"))

		_, err := repo.ListOrders(ctx, Criteria{})
		assert.Error(t, err)
	})
}

func TestRepository_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM orders o WHERE o.id = \$1`).
			WithArgs("order-1").
			WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "order-1", "on_hold", nil, time.Now()))
		mock.ExpectQuery(`FROM order_items oi`).
			WillReturnRows(sqlmock.NewRows(itemRowColumns))

		o, err := repo.GetOrder(ctx, "order-1")
		require.NoError(t, err)
		assert.Equal(t, StatusOnHold, o.Status)
		assert.Nil(t, o.UserID)
		assert.Empty(t, o.Items)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM orders o WHERE o.id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetOrder(ctx, "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Unknown persisted status", func(t *testing.T) {
		repo, mock, done := newMockRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM orders o WHERE o.id = \$1`).
			WillReturnRows(orderRow(sqlmock.NewRows(orderRowColumns), "order-1", "lost", nil, time.Now()))

		_, err := repo.GetOrder(ctx, "order-1")
		assert.Error(t, err)
	})
}

func TestRepository_ListEvents(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM order_events WHERE order_id = \$1 ORDER BY created_at DESC`).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "type", "title", "description", "metadata", "is_customer_visible", "created_by", "created_at",
		}).
			AddRow("e2", "order-1", "note", "internal", nil, nil, false, "admin@example.com", now).
			AddRow("e1", "order-1", "status", "Status updated to review", nil, []byte(`{"from":"designing"}`), true, nil, now.Add(-time.Hour)))

	events, err := repo.ListEvents(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].IsCustomerVisible)
	assert.Equal(t, "admin@example.com", *events[0].CreatedBy)
	assert.Equal(t, "designing", events[1].Metadata["from"])
}

func TestRepository_GetPaymentState(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	ctx := context.Background()

	mock.ExpectQuery(`SELECT type, payment_status, payment_required_at FROM orders WHERE id = \$1`).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"type", "payment_status", "payment_required_at"}).
			AddRow("custom", "unpaid", nil))

	st, err := repo.GetPaymentState(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, TypeCustom, st.Type)
	assert.Equal(t, PaymentUnpaid, st.PaymentStatus)
	assert.Nil(t, st.PaymentRequiredAt)

	mock.ExpectQuery(`SELECT type, payment_status`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetPaymentState(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`UPDATE orders SET status = \$1, payment_required_at = COALESCE\(payment_required_at, \$2\)`).
		WithArgs("approved", now, "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, "order-1", StatusApproved, &now))

	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs("on_hold", nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", StatusOnHold, nil), ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateShipping(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	ctx := context.Background()

	tracking := "1Z999"
	shipped := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE orders SET tracking_number = \$1, shipped_at = \$2, updated_at = NOW\(\) WHERE id = \$3`).
		WithArgs("1Z999", shipped, "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateShipping(ctx, "order-1", ShippingUpdate{TrackingNumber: &tracking, ShippedAt: &shipped}))

	mock.ExpectExec(`UPDATE orders SET updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateShipping(ctx, "missing", ShippingUpdate{}), ErrOrderNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdatePaymentStatus(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectExec(`UPDATE orders SET payment_status = \$1, paid_at = COALESCE\(\$2, paid_at\)`).
		WithArgs("paid", now, "order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdatePaymentStatus(ctx, "order-1", PaymentPaid, &now))

	mock.ExpectExec(`UPDATE orders SET payment_status`).
		WithArgs("refunded", nil, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePaymentStatus(ctx, "missing", PaymentRefunded, nil), ErrOrderNotFound)
}

func TestRepository_InsertEvent(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	by := "admin@example.com"
	created := time.Now()
	mock.ExpectQuery(`INSERT INTO order_events .* RETURNING created_at`).
		WithArgs("e1", "order-1", "status", "Status updated to approved", nil, nil, true, by).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	e := &Event{ID: "e1", OrderID: "order-1", Type: "status", Title: "Status updated to approved", IsCustomerVisible: true, CreatedBy: &by}
	require.NoError(t, repo.InsertEvent(context.Background(), e))
	assert.Equal(t, created, e.CreatedAt)
}

func TestRepository_Exists(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM orders WHERE id = \$1\)`).
		WithArgs("order-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "order-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
