// internal/services/order_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cmdboutique/storefront-backend/internal/models"
)

func TestTotalsConsistent(t *testing.T) {
	tests := []struct {
		name       string
		lineTotals []float64
		subtotal   float64
		shipping   float64
		total      float64
		want       bool
	}{
		{"exact", []float64{29.90, 15.00}, 44.90, 7.00, 51.90, true},
		{"free shipping", []float64{120.00}, 120.00, 0, 120.00, true},
		{"rounding within a cent", []float64{19.99, 19.99, 19.99}, 59.97, 7.00, 66.97, true},
		{"subtotal mismatch", []float64{29.90, 15.00}, 50.00, 7.00, 57.00, false},
		{"total mismatch", []float64{29.90}, 29.90, 7.00, 40.00, false},
		{"client dropped shipping", []float64{29.90}, 29.90, 7.00, 29.90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalsConsistent(tt.lineTotals, tt.subtotal, tt.shipping, tt.total))
		})
	}
}

func TestInsufficientStockErrorShape(t *testing.T) {
	id := uuid.New()
	err := error(&InsufficientStockError{Items: []StockLine{{
		ProductID:   id,
		ProductName: "Linen Shirt",
		Requested:   3,
		Available:   1,
	}}})

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Len(t, stockErr.Items, 1)
	assert.Equal(t, id, stockErr.Items[0].ProductID)
	assert.Equal(t, 3, stockErr.Items[0].Requested)
	assert.Equal(t, 1, stockErr.Items[0].Available)
	assert.Contains(t, err.Error(), "insufficient stock")
}

// newOrderTestDB opens an in-memory database with just the tables the order
// workflow touches. The schema is created by hand because the production
// migrations are postgres-only.
func newOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	ddl := []string{
		`CREATE TABLE users (
			id text PRIMARY KEY, created_at datetime, updated_at datetime, deleted_at datetime,
			email text, password_hash text, first_name text, last_name text,
			phone text, role text, status text, last_login_at datetime
		)`,
		`CREATE TABLE products (
			id text PRIMARY KEY, created_at datetime, updated_at datetime, deleted_at datetime,
			name text, slug text, description text, price real, original_price real,
			category_id text, images text, sizes text, colors text, features text,
			stock integer, low_stock_threshold integer, is_new numeric, is_active numeric,
			rating real, review_count integer
		)`,
		`CREATE TABLE orders (
			id text PRIMARY KEY, created_at datetime, updated_at datetime, deleted_at datetime,
			order_number text, user_id text, guest_email text, guest_phone text,
			status text, payment_status text, payment_method text,
			subtotal real, shipping_cost real, total real,
			shipping_address text, notes text
		)`,
		`CREATE TABLE order_items (
			id text PRIMARY KEY, created_at datetime, updated_at datetime, deleted_at datetime,
			order_id text, product_id text, name text, quantity integer,
			size text, color text, price real, total real
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, name, slug string, price float64, stock int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	err := db.Exec(`INSERT INTO products
		(id, created_at, updated_at, name, slug, description, price, stock,
		 low_stock_threshold, is_new, is_active, rating, review_count)
		VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, ?, ?, '', ?, ?, 5, 0, 1, 0, 0)`,
		id, name, slug, price, stock).Error
	require.NoError(t, err)
	return id
}

func productStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var p models.Product
	require.NoError(t, db.Where("id = ?", id).First(&p).Error)
	return p.Stock
}

func cashOrderRequest(productID uuid.UUID, qty int, price float64) *CreateOrderRequest {
	subtotal := price * float64(qty)
	return &CreateOrderRequest{
		Items:           []CartItem{{ProductID: productID, Quantity: qty}},
		ShippingAddress: map[string]interface{}{"line1": "12 Rue de la Paix", "city": "Paris"},
		PaymentMethod:   "cash_on_delivery",
		Subtotal:        subtotal,
		ShippingCost:    7,
		Total:           subtotal + 7,
		IsGuest:         true,
		GuestEmail:      "guest@example.com",
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Linen Shirt", "linen-shirt", 45, 5)

	order, err := svc.CreateOrder(nil, cashOrderRequest(productID, 2, 45))
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Linen Shirt", order.Items[0].Name)
	assert.Equal(t, 45.0, order.Items[0].Price)
	assert.Equal(t, 90.0, order.Items[0].Total)
	assert.Equal(t, 3, productStock(t, db, productID))
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Wool Scarf", "wool-scarf", 30, 1)

	_, err := svc.CreateOrder(nil, cashOrderRequest(productID, 2, 30))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Len(t, stockErr.Items, 1)
	assert.Equal(t, productID, stockErr.Items[0].ProductID)
	assert.Equal(t, "Wool Scarf", stockErr.Items[0].ProductName)
	assert.Equal(t, 2, stockErr.Items[0].Requested)
	assert.Equal(t, 1, stockErr.Items[0].Available)

	// Nothing committed: stock untouched, no order rows persisted
	assert.Equal(t, 1, productStock(t, db, productID))
	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestCreateOrderSecondBuyerLosesRace(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Denim Jacket", "denim-jacket", 89, 5)

	_, err := svc.CreateOrder(nil, cashOrderRequest(productID, 3, 89))
	require.NoError(t, err)

	_, err = svc.CreateOrder(nil, cashOrderRequest(productID, 3, 89))
	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Items[0].Available)

	// The loser's rollback leaves the winner's decrement in place
	assert.Equal(t, 2, productStock(t, db, productID))
}

func TestCreateOrderRejectsMismatchedTotals(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Silk Tie", "silk-tie", 45, 5)

	req := cashOrderRequest(productID, 2, 45)
	req.Subtotal = 80
	req.Total = 87

	_, err := svc.CreateOrder(nil, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "totals")
	assert.Equal(t, 5, productStock(t, db, productID))
}

func TestCreateOrderStoresRecomputedTotals(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Cotton Tee", "cotton-tee", 19.99, 10)

	// Half a cent off passes the tolerance check, but what gets stored is
	// the catalog-derived sum, not the client's figure
	req := cashOrderRequest(productID, 3, 19.99)
	req.Subtotal = 59.965
	req.Total = 66.965

	order, err := svc.CreateOrder(nil, req)
	require.NoError(t, err)

	wantSubtotal := 19.99 * float64(3)
	assert.Equal(t, wantSubtotal, order.Subtotal)
	assert.Equal(t, wantSubtotal+7, order.Total)
}

func TestCreateOrderGuestRequiresEmail(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Wool Coat", "wool-coat", 149, 5)

	req := cashOrderRequest(productID, 1, 149)
	req.GuestEmail = ""

	_, err := svc.CreateOrder(nil, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guest orders")
}

func TestUpdateStatusRestocksOnlyOnCancellation(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Linen Shirt", "linen-shirt", 45, 5)

	order, err := svc.CreateOrder(nil, cashOrderRequest(productID, 3, 45))
	require.NoError(t, err)
	require.Equal(t, 2, productStock(t, db, productID))

	cancelled, err := svc.UpdateStatus(&UpdateOrderStatusRequest{OrderID: order.ID, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, productStock(t, db, productID))

	// Later updates to the already-cancelled order must not restock again
	refunded, err := svc.UpdateStatus(&UpdateOrderStatusRequest{OrderID: order.ID, PaymentStatus: "refunded"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)
	assert.Equal(t, 5, productStock(t, db, productID))

	_, err = svc.UpdateStatus(&UpdateOrderStatusRequest{OrderID: order.ID, PaymentStatus: "failed"})
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, db, productID))
}

func TestUpdateStatusRejectsTransitionOutOfCancelled(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Wool Scarf", "wool-scarf", 30, 5)

	order, err := svc.CreateOrder(nil, cashOrderRequest(productID, 1, 30))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(&UpdateOrderStatusRequest{OrderID: order.ID, Status: "cancelled"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(&UpdateOrderStatusRequest{OrderID: order.ID, Status: "processing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition")
}

func TestCancelOrderRestocksAndIsOwnerScoped(t *testing.T) {
	db := newOrderTestDB(t)
	svc := NewOrderService(db, nil)
	productID := seedCatalogProduct(t, db, "Denim Jacket", "denim-jacket", 89, 5)

	userID := uuid.New()
	req := cashOrderRequest(productID, 2, 89)
	req.IsGuest = false
	req.GuestEmail = ""

	order, err := svc.CreateOrder(&userID, req)
	require.NoError(t, err)
	require.Equal(t, 3, productStock(t, db, productID))

	// Someone else's id does not reach the order
	_, err = svc.CancelOrder(order.ID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, 3, productStock(t, db, productID))

	cancelled, err := svc.CancelOrder(order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, productStock(t, db, productID))

	// A second cancellation is rejected and does not restock again
	_, err = svc.CancelOrder(order.ID, userID)
	require.Error(t, err)
	assert.Equal(t, 5, productStock(t, db, productID))
}
