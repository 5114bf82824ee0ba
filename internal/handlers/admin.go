// internal/handlers/admin.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmdboutique/storefront-backend/internal/models"
	"github.com/cmdboutique/storefront-backend/internal/services"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// AdminHandler is the back office: dashboard, order management, catalog and
// inventory administration.
type AdminHandler struct {
	adminService        *services.AdminService
	orderService        *services.OrderService
	productService      *services.ProductService
	paymentService      *services.PaymentService
	notificationService *services.NotificationService
}

func NewAdminHandler(
	adminService *services.AdminService,
	orderService *services.OrderService,
	productService *services.ProductService,
	paymentService *services.PaymentService,
	notificationService *services.NotificationService,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		orderService:        orderService,
		productService:      productService,
		paymentService:      paymentService,
		notificationService: notificationService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.OrderSearchParams{
		PaginationParams: params,
	}

	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		if !orderStatus.Valid() {
			utils.BadRequestResponse(c, "Invalid order status filter", nil)
			return
		}
		searchParams.Status = &orderStatus
	}

	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		ps := models.PaymentStatus(paymentStatus)
		searchParams.PaymentStatus = &ps
	}

	orders, total, err := h.orderService.SearchOrders(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.GetOrder(id, nil)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, order)
}

// PUT /admin/orders
func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		if strings.Contains(err.Error(), "validation failed") {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(errors.Unwrap(err)))
			return
		}
		if strings.Contains(err.Error(), "cannot change") ||
			strings.Contains(err.Error(), "invalid") ||
			strings.Contains(err.Error(), "nothing to update") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Status changes only touch the order row; customer email is the
	// separate send-email action below.
	utils.SuccessResponse(c, order)
}

type SendOrderEmailRequest struct {
	OrderID           uuid.UUID `json:"orderId" binding:"required"`
	EmailType         string    `json:"emailType" binding:"required,oneof=status shipping"`
	TrackingNumber    string    `json:"trackingNumber,omitempty"`
	Carrier           string    `json:"carrier,omitempty"`
	EstimatedDelivery string    `json:"estimatedDelivery,omitempty"`
}

// POST /admin/orders/send-email
func (h *AdminHandler) SendOrderEmail(c *gin.Context) {
	var req SendOrderEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.GetOrder(req.OrderID, nil)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	switch req.EmailType {
	case "shipping":
		h.notificationService.SendShippingNotice(order, req.TrackingNumber, req.Carrier, req.EstimatedDelivery)
	default:
		h.notificationService.SendStatusUpdate(order)
	}

	utils.SuccessResponse(c, gin.H{"message": "Email queued"})
}

// POST /admin/orders/refund
func (h *AdminHandler) RefundOrder(c *gin.Context) {
	var req services.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.paymentService.RefundOrder(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Order")
			return
		}
		if strings.Contains(err.Error(), "only paid orders") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, order)
}

// GET /admin/products
func (h *AdminHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ProductSearchParams{
		PaginationParams: params,
		IncludeInactive:  true,
	}
	if category := c.Query("category"); category != "" {
		searchParams.CategorySlug = category
	}

	products, total, err := h.productService.SearchProducts(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, "SLUG_TAKEN", err.Error(), nil)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, product)
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, "SLUG_TAKEN", err.Error(), nil)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Product deleted"})
}

// POST /admin/categories
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Slug string `json:"slug" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, err := h.productService.CreateCategory(req.Name, req.Slug)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, category)
}

// DELETE /admin/categories/:id
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	if err := h.productService.DeleteCategory(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Category")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Category deleted"})
}

// GET /admin/inventory/low-stock
func (h *AdminHandler) GetLowStock(c *gin.Context) {
	products, err := h.productService.LowStockProducts()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, products)
}

// PUT /admin/inventory
func (h *AdminHandler) AdjustStock(c *gin.Context) {
	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		if strings.Contains(err.Error(), "negative") ||
			strings.Contains(err.Error(), "nothing to adjust") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, product)
}

type BroadcastRequest struct {
	Type    string `json:"type" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// POST /admin/notifications/broadcast
func (h *AdminHandler) BroadcastNotification(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	nType := models.NotificationType(req.Type)
	switch nType {
	case models.NotificationTypeOrder, models.NotificationTypePromo,
		models.NotificationTypeGeneral, models.NotificationTypeFavorite:
	default:
		utils.BadRequestResponse(c, "Invalid notification type", nil)
		return
	}

	created, err := h.notificationService.Broadcast(nType, req.Title, req.Message)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"created": created})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.adminService.GetAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}
