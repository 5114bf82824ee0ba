// internal/services/product_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

const productCacheTTL = 5 * time.Minute

// ProductService owns the catalog. Single-product reads go through an
// optional redis cache; every write path invalidates the cached entry.
type ProductService struct {
	db    *gorm.DB
	cache *redis.Client
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategorySlug    string   `json:"category,omitempty"`
	MinPrice        *float64 `json:"min_price,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	IsNew           *bool    `json:"is_new,omitempty"`
	InStockOnly     bool     `json:"in_stock,omitempty"`
	IncludeInactive bool     `json:"-"`
}

type CreateProductRequest struct {
	Name              string     `json:"name" validate:"required,min=2,max=200"`
	Slug              string     `json:"slug" validate:"required,slug"`
	Description       string     `json:"description,omitempty"`
	Price             float64    `json:"price" validate:"required,gt=0"`
	OriginalPrice     *float64   `json:"originalPrice,omitempty" validate:"omitempty,gt=0"`
	CategoryID        *uuid.UUID `json:"categoryId,omitempty"`
	Images            []string   `json:"images,omitempty"`
	Sizes             []string   `json:"sizes,omitempty"`
	Colors            []string   `json:"colors,omitempty"`
	Features          []string   `json:"features,omitempty"`
	Stock             int        `json:"stock" validate:"min=0"`
	LowStockThreshold *int       `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
	IsNew             bool       `json:"isNew,omitempty"`
	IsActive          *bool      `json:"isActive,omitempty"`
}

type UpdateProductRequest struct {
	Name              *string    `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Slug              *string    `json:"slug,omitempty" validate:"omitempty,slug"`
	Description       *string    `json:"description,omitempty"`
	Price             *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	OriginalPrice     *float64   `json:"originalPrice,omitempty"`
	CategoryID        *uuid.UUID `json:"categoryId,omitempty"`
	Images            []string   `json:"images,omitempty"`
	Sizes             []string   `json:"sizes,omitempty"`
	Colors            []string   `json:"colors,omitempty"`
	Features          []string   `json:"features,omitempty"`
	Stock             *int       `json:"stock,omitempty" validate:"omitempty,min=0"`
	LowStockThreshold *int       `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
	IsNew             *bool      `json:"isNew,omitempty"`
	IsActive          *bool      `json:"isActive,omitempty"`
}

type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Delta     int       `json:"delta,omitempty"`
	Stock     *int      `json:"stock,omitempty" validate:"omitempty,min=0"`
}

func NewProductService(db *gorm.DB, cache *redis.Client) *ProductService {
	return &ProductService{db: db, cache: cache}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (s *ProductService) cacheGet(ctx context.Context, id uuid.UUID) *models.Product {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("Product cache read failed")
		}
		return nil
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	return &p
}

func (s *ProductService) cacheSet(ctx context.Context, p *models.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, productCacheKey(p.ID), raw, productCacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("Product cache write failed")
	}
}

func (s *ProductService) cacheInvalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		logrus.WithError(err).Warn("Product cache invalidation failed")
	}
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Category")

	if !params.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if params.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", params.CategorySlug)
	}
	if params.MinPrice != nil {
		query = query.Where("products.price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("products.price <= ?", *params.MaxPrice)
	}
	if params.IsNew != nil {
		query = query.Where("products.is_new = ?", *params.IsNew)
	}
	if params.InStockOnly {
		query = query.Where("products.stock > 0")
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "price", "name", "rating", "stock"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p := s.cacheGet(ctx, id); p != nil {
		return p, nil
	}

	var product models.Product
	if err := s.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.cacheSet(ctx, &product)
	return &product, nil
}

func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Product
	if err := s.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return nil, errors.New("a product with this slug already exists")
	}

	product := &models.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		CategoryID:    req.CategoryID,
		Images:        pq.StringArray(req.Images),
		Sizes:         pq.StringArray(req.Sizes),
		Colors:        pq.StringArray(req.Colors),
		Features:      pq.StringArray(req.Features),
		Stock:         req.Stock,
		IsNew:         req.IsNew,
		IsActive:      true,
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		var existing models.Product
		if err := s.db.Where("slug = ? AND id != ?", *req.Slug, id).First(&existing).Error; err == nil {
			return nil, errors.New("a product with this slug already exists")
		}
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.OriginalPrice != nil {
		updates["original_price"] = *req.OriginalPrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Sizes != nil {
		updates["sizes"] = pq.StringArray(req.Sizes)
	}
	if req.Colors != nil {
		updates["colors"] = pq.StringArray(req.Colors)
	}
	if req.Features != nil {
		updates["features"] = pq.StringArray(req.Features)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.IsNew != nil {
		updates["is_new"] = *req.IsNew
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
		s.cacheInvalidate(ctx, id)
	}

	return &product, nil
}

// DeleteProduct removes a product that was never ordered. Products with
// order history are deactivated instead, so past order items keep a valid
// reference.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var referenced int64
	if err := s.db.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&referenced).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if referenced > 0 {
		if err := s.db.Model(&product).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate product: %w", err)
		}
	} else {
		if err := s.db.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
	}

	s.cacheInvalidate(ctx, id)
	return nil
}

// AdjustStock applies either a relative delta or an absolute stock value.
// The relative path uses a conditional update so it can never drive stock
// negative under concurrency.
func (s *ProductService) AdjustStock(ctx context.Context, req *AdjustStockRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.Stock == nil && req.Delta == 0 {
		return nil, errors.New("nothing to adjust")
	}

	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("product not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if req.Stock != nil {
			if err := tx.Model(&product).Update("stock", *req.Stock).Error; err != nil {
				return fmt.Errorf("failed to update stock: %w", err)
			}
			product.Stock = *req.Stock
			return nil
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock + ? >= 0", req.ProductID, req.Delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", req.Delta))
		if res.Error != nil {
			return fmt.Errorf("failed to update stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("adjustment would make stock negative")
		}
		product.Stock += req.Delta
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, req.ProductID)
	return &product, nil
}

// LowStockProducts lists active products at or below their threshold,
// shortest supply first.
func (s *ProductService) LowStockProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Where("is_active = ? AND stock <= low_stock_threshold", true).
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *ProductService) CreateCategory(name, slug string) (*models.Category, error) {
	category := &models.Category{Name: name, Slug: slug}
	if err := utils.ValidateVar(slug, "slug"); err != nil {
		return nil, errors.New("invalid category slug")
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *ProductService) DeleteCategory(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Products keep existing without a category
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("category not found")
		}
		return nil
	})
	return err
}
