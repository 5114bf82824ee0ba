// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// AdminService aggregates the figures behind the back-office dashboard.
type AdminService struct {
	db *gorm.DB
}

type DashboardStats struct {
	Orders    OrderStats     `json:"orders"`
	Revenue   RevenueStats   `json:"revenue"`
	Customers CustomerStats  `json:"customers"`
	Catalog   CatalogStats   `json:"catalog"`
	Recent    []models.Order `json:"recentOrders"`
	TopSold   []TopProduct   `json:"topProducts"`
}

type OrderStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Shipped    int64 `json:"shipped"`
	Delivered  int64 `json:"delivered"`
	Cancelled  int64 `json:"cancelled"`
	Today      int64 `json:"today"`
}

type RevenueStats struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
	Today     float64 `json:"today"`
}

type CustomerStats struct {
	Total        int64 `json:"total"`
	NewThisMonth int64 `json:"newThisMonth"`
}

type CatalogStats struct {
	ActiveProducts int64 `json:"activeProducts"`
	LowStock       int64 `json:"lowStock"`
	OutOfStock     int64 `json:"outOfStock"`
}

type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitsSold int64   `json:"unitsSold"`
	Revenue   float64 `json:"revenue"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	orders := s.db.Model(&models.Order{})
	if err := orders.Count(&stats.Orders.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	statusCounts := []struct {
		Status models.OrderStatus
		Count  int64
	}{}
	if err := s.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, sc := range statusCounts {
		switch sc.Status {
		case models.OrderStatusPending:
			stats.Orders.Pending = sc.Count
		case models.OrderStatusProcessing:
			stats.Orders.Processing = sc.Count
		case models.OrderStatusShipped:
			stats.Orders.Shipped = sc.Count
		case models.OrderStatusDelivered:
			stats.Orders.Delivered = sc.Count
		case models.OrderStatusCancelled:
			stats.Orders.Cancelled = sc.Count
		}
	}

	if err := s.db.Model(&models.Order{}).
		Where("created_at >= ?", startOfDay).
		Count(&stats.Orders.Today).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	// Cancelled orders do not count as revenue
	revenueBase := "status != ?"
	if err := s.db.Model(&models.Order{}).
		Where(revenueBase, models.OrderStatusCancelled).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := s.db.Model(&models.Order{}).
		Where(revenueBase+" AND created_at >= ?", models.OrderStatusCancelled, startOfMonth).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue.ThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	if err := s.db.Model(&models.Order{}).
		Where(revenueBase+" AND created_at >= ?", models.OrderStatusCancelled, startOfDay).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue.Today).Error; err != nil {
		return nil, fmt.Errorf("failed to sum today's revenue: %w", err)
	}

	if err := s.db.Model(&models.User{}).
		Where("role = ?", models.UserRoleCustomer).
		Count(&stats.Customers.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := s.db.Model(&models.User{}).
		Where("role = ? AND created_at >= ?", models.UserRoleCustomer, startOfMonth).
		Count(&stats.Customers.NewThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count new customers: %w", err)
	}

	if err := s.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&stats.Catalog.ActiveProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&models.Product{}).
		Where("is_active = ? AND stock <= low_stock_threshold AND stock > 0", true).
		Count(&stats.Catalog.LowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}
	if err := s.db.Model(&models.Product{}).
		Where("is_active = ? AND stock = 0", true).
		Count(&stats.Catalog.OutOfStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock products: %w", err)
	}

	if err := s.db.Preload("Items").
		Order("created_at DESC").
		Limit(10).
		Find(&stats.Recent).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent orders: %w", err)
	}

	if err := s.db.Model(&models.OrderItem{}).
		Select("order_items.product_id::text as product_id, order_items.name, SUM(order_items.quantity) as units_sold, SUM(order_items.total) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status != ?", models.OrderStatusCancelled).
		Group("order_items.product_id, order_items.name").
		Order("units_sold DESC").
		Limit(5).
		Scan(&stats.TopSold).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top products: %w", err)
	}

	return stats, nil
}

func (s *AdminService) GetAuditLogs(params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("action ILIKE ? OR resource_type ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
