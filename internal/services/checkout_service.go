// internal/services/checkout_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// CheckoutService performs the read-only stock verification the storefront
// runs before an order is submitted. The authoritative check happens again
// inside the order-creation transaction; this pass exists to tell the
// customer early which cart lines cannot be fulfilled.
type CheckoutService struct {
	db *gorm.DB
}

type VerifyStockRequest struct {
	Items []CartItem `json:"items" validate:"required,min=1,dive"`
}

type CartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

type StockLine struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Requested   int       `json:"requested"`
	Available   int       `json:"available"`
	Size        string    `json:"size,omitempty"`
}

type VerifyStockResult struct {
	Available         bool        `json:"available"`
	Items             []StockLine `json:"items"`
	InsufficientItems []StockLine `json:"insufficientItems"`
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db}
}

func (s *CheckoutService) VerifyStock(req *VerifyStockRequest) (*VerifyStockResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	var products []models.Product
	if err := s.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	result := EvaluateStock(req.Items, byID)
	return &result, nil
}

// EvaluateStock compares requested quantities against current stock. A
// missing or deactivated product counts as zero available. Pure function so
// the decision table is testable without a database.
func EvaluateStock(items []CartItem, products map[uuid.UUID]*models.Product) VerifyStockResult {
	result := VerifyStockResult{
		Available:         true,
		Items:             make([]StockLine, 0, len(items)),
		InsufficientItems: []StockLine{},
	}

	for _, item := range items {
		line := StockLine{
			ProductID: item.ProductID,
			Requested: item.Quantity,
			Size:      item.Size,
		}

		if p, ok := products[item.ProductID]; ok && p.IsActive {
			line.ProductName = p.Name
			line.Available = p.Stock
		}

		result.Items = append(result.Items, line)

		if line.Available < line.Requested {
			result.Available = false
			result.InsufficientItems = append(result.InsufficientItems, line)
		}
	}

	return result
}
