// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

type OrderService struct {
	db                  *gorm.DB
	numbers             *OrderNumberGenerator
	notificationService *NotificationService
}

type CreateOrderRequest struct {
	Items           []CartItem             `json:"items" validate:"required,min=1,dive"`
	ShippingAddress map[string]interface{} `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
	Subtotal        float64                `json:"subtotal" validate:"min=0"`
	ShippingCost    float64                `json:"shippingCost" validate:"min=0"`
	Total           float64                `json:"total" validate:"min=0"`
	Notes           string                 `json:"notes,omitempty"`
	IsGuest         bool                   `json:"isGuest,omitempty"`
	GuestEmail      string                 `json:"guestEmail,omitempty" validate:"omitempty,email"`
	GuestPhone      string                 `json:"guestPhone,omitempty"`
}

type UpdateOrderStatusRequest struct {
	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	Status        string    `json:"status,omitempty" validate:"omitempty,order_status"`
	PaymentStatus string    `json:"paymentStatus,omitempty"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	Status        *models.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *models.PaymentStatus `json:"payment_status,omitempty"`
}

// InsufficientStockError carries the itemized detail the checkout UI renders
// when an order is rejected with HTTP 409.
type InsufficientStockError struct {
	Items []StockLine
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for one or more items"
}

func NewOrderService(db *gorm.DB, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		numbers:             NewOrderNumberGenerator(),
		notificationService: notificationService,
	}
}

// TotalsConsistent checks the invariants subtotal == sum(line totals) and
// subtotal + shipping == total, with a one-cent tolerance for float rounding.
func TotalsConsistent(lineTotals []float64, subtotal, shipping, total float64) bool {
	var sum float64
	for _, t := range lineTotals {
		sum += t
	}
	return math.Abs(sum-subtotal) < 0.01 && math.Abs(subtotal+shipping-total) < 0.01
}

// CreateOrder turns a verified cart into an order aggregate. Header, line
// items and the stock decrements all commit in one transaction; the decrement
// is a conditional UPDATE so that two concurrent submissions for the last
// unit cannot both succeed; the loser rolls back and gets the 409 path.
func (s *OrderService) CreateOrder(userID *uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if userID == nil && req.GuestEmail == "" {
		return nil, errors.New("guest orders require an email address")
	}

	order := &models.Order{
		OrderNumber:     s.numbers.Next(),
		UserID:          userID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		Total:           req.Total,
		ShippingAddress: models.JSONB(req.ShippingAddress),
		Notes:           req.Notes,
	}
	if userID == nil {
		order.GuestEmail = req.GuestEmail
		order.GuestPhone = req.GuestPhone
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			ids = append(ids, item.ProductID)
		}

		var products []models.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return fmt.Errorf("failed to fetch products: %w", err)
		}

		byID := make(map[uuid.UUID]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		// Snapshot prices from the catalog, not from the client
		items := make([]models.OrderItem, 0, len(req.Items))
		lineTotals := make([]float64, 0, len(req.Items))
		for _, line := range req.Items {
			p, ok := byID[line.ProductID]
			if !ok || !p.IsActive {
				return &InsufficientStockError{Items: []StockLine{{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: 0,
					Size:      line.Size,
				}}}
			}

			lineTotal := p.Price * float64(line.Quantity)
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  line.Quantity,
				Size:      line.Size,
				Color:     line.Color,
				Price:     p.Price,
				Total:     lineTotal,
			})
			lineTotals = append(lineTotals, lineTotal)
		}

		if !TotalsConsistent(lineTotals, req.Subtotal, req.ShippingCost, req.Total) {
			return errors.New("order totals do not match catalog prices")
		}

		// The tolerance only guards the client's arithmetic; what gets
		// stored is the recomputed sum, so persisted totals match the
		// lines exactly.
		var lineSum float64
		for _, t := range lineTotals {
			lineSum += t
		}
		order.Subtotal = lineSum
		order.Total = lineSum + req.ShippingCost

		// Atomic conditional decrement, one line at a time. Zero rows
		// affected means stock moved between verification and now.
		var insufficient []StockLine
		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				var current models.Product
				tx.Select("name", "stock").First(&current, item.ProductID)
				insufficient = append(insufficient, StockLine{
					ProductID:   item.ProductID,
					ProductName: current.Name,
					Requested:   item.Quantity,
					Available:   current.Stock,
					Size:        item.Size,
				})
			}
		}
		if len(insufficient) > 0 {
			return &InsufficientStockError{Items: insufficient}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.db.Preload("User").Preload("Items").First(order, order.ID)

	// Confirmation mail and in-app notification are fire-and-forget
	if s.notificationService != nil {
		s.notificationService.SendOrderConfirmation(order)
	}

	return order, nil
}

func (s *OrderService) GetUserOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID).Preload("Items")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) GetOrder(id uuid.UUID, userID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("User").Preload("Items").Preload("Items.Product").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Customers only see their own orders; admins pass userID == nil
	if userID != nil && (order.UserID == nil || *order.UserID != *userID) {
		return nil, errors.New("order not found")
	}

	return &order, nil
}

// CancelOrder is the customer-facing cancellation: allowed while the order
// has not shipped. Restocks every line.
func (s *OrderService) CancelOrder(id uuid.UUID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.UserID == nil || *order.UserID != userID {
			return errors.New("order not found")
		}

		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusProcessing {
			return fmt.Errorf("order in status %s can no longer be cancelled", order.Status)
		}

		if err := order.Transition(models.OrderStatusCancelled); err != nil {
			return err
		}
		if err := tx.Model(&order).Update("status", order.Status).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		return restockItems(tx, order.Items)
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateStatus is the admin transition. Status and payment status may be
// changed independently or together; an invalid transition rejects the whole
// request. Cancelling restocks the order's lines.
func (s *OrderService) UpdateStatus(req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Status == "" && req.PaymentStatus == "" {
		return nil, errors.New("nothing to update")
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").Preload("Items").First(&order, req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		updates := make(map[string]interface{})
		justCancelled := false

		if req.Status != "" {
			target := models.OrderStatus(req.Status)
			if err := order.Transition(target); err != nil {
				return err
			}
			updates["status"] = target
			justCancelled = target == models.OrderStatusCancelled
		}

		if req.PaymentStatus != "" {
			ps := models.PaymentStatus(req.PaymentStatus)
			switch ps {
			case models.PaymentStatusPending, models.PaymentStatusPaid,
				models.PaymentStatusFailed, models.PaymentStatusRefunded:
				order.PaymentStatus = ps
				updates["payment_status"] = ps
			default:
				return fmt.Errorf("invalid payment status %q", req.PaymentStatus)
			}
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		// Restock only when this call performed the cancellation; later
		// updates to an already-cancelled order must leave stock alone.
		if justCancelled {
			return restockItems(tx, order.Items)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *OrderService) SearchOrders(params OrderSearchParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("User").Preload("Items")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("order_number ILIKE ? OR guest_email ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total", "status", "order_number"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func restockItems(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to restock product: %w", err)
		}
	}
	return nil
}
