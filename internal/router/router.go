// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/cmdboutique/storefront-backend/internal/config"
	"github.com/cmdboutique/storefront-backend/internal/email"
	"github.com/cmdboutique/storefront-backend/internal/handlers"
	"github.com/cmdboutique/storefront-backend/internal/middleware"
	"github.com/cmdboutique/storefront-backend/internal/services"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Optional infrastructure: redis cache and the mail queue degrade to
	// nil / direct send when not configured.
	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	sender := email.NewSender(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUsername, cfg.Email.SMTPPassword,
		cfg.Email.FromEmail, cfg.Email.FromName,
	)

	var publisher *email.Publisher
	if cfg.AMQP.URL != "" {
		var err error
		publisher, err = email.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			logrus.WithError(err).Warn("Mail queue unavailable, emails will be sent directly")
		}
	}

	// Services
	notificationService := services.NewNotificationService(db, publisher, sender)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db, cache)
	checkoutService := services.NewCheckoutService(db)
	orderService := services.NewOrderService(db, notificationService)
	addressService := services.NewAddressService(db)
	favoriteService := services.NewFavoriteService(db)
	paymentService := services.NewPaymentService(db, cfg)
	contentService := services.NewContentService(db)
	adminService := services.NewAdminService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, orderService)
	orderHandler := handlers.NewOrderHandler(orderService)
	accountHandler := handlers.NewAccountHandler(addressService, favoriteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	contentHandler := handlers.NewContentHandler(contentService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService, orderService, productService, paymentService, notificationService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
			auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		// Public catalog
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/categories", productHandler.GetCategories)
		api.GET("/content/homepage", middleware.OptionalAuth(), contentHandler.GetHomepage)
		api.GET("/content/app-icons", contentHandler.GetAppIcons)

		// Checkout: guests allowed, account attached when a token is present
		checkout := api.Group("/checkout")
		checkout.Use(middleware.CheckoutRateLimit())
		{
			checkout.POST("/verify-stock", checkoutHandler.VerifyStock)
		}
		api.POST("/orders", middleware.CheckoutRateLimit(), middleware.OptionalAuth(), checkoutHandler.CreateOrder)

		// Customer area
		orders := api.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		account := api.Group("/account")
		account.Use(middleware.AuthRequired())
		{
			account.GET("/addresses", accountHandler.GetAddresses)
			account.POST("/addresses", accountHandler.CreateAddress)
			account.PUT("/addresses/:id", accountHandler.UpdateAddress)
			account.DELETE("/addresses/:id", accountHandler.DeleteAddress)
			account.PUT("/addresses/:id/default", accountHandler.SetDefaultAddress)

			account.GET("/payment-methods", accountHandler.GetPaymentMethods)
			account.POST("/payment-methods", accountHandler.CreatePaymentMethod)
			account.DELETE("/payment-methods/:id", accountHandler.DeletePaymentMethod)
			account.PUT("/payment-methods/:id/default", accountHandler.SetDefaultPaymentMethod)

			account.GET("/favorites", accountHandler.GetFavorites)
			account.POST("/favorites/:productId", accountHandler.AddFavorite)
			account.DELETE("/favorites/:productId", accountHandler.RemoveFavorite)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		payments := api.Group("/payments")
		payments.Use(middleware.OptionalAuth())
		{
			payments.POST("/intent", paymentHandler.CreateIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		// Back office
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AdminAuditLog(db))
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)

			admin.GET("/orders", adminHandler.GetOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PUT("/orders", adminHandler.UpdateOrder)
			admin.POST("/orders/send-email", adminHandler.SendOrderEmail)
			admin.POST("/orders/refund", adminHandler.RefundOrder)

			admin.GET("/products", adminHandler.GetProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.POST("/categories", adminHandler.CreateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.GET("/inventory/low-stock", adminHandler.GetLowStock)
			admin.PUT("/inventory", adminHandler.AdjustStock)

			admin.POST("/content/homepage", contentHandler.CreateHomepageBlock)
			admin.PUT("/content/homepage/:id", contentHandler.UpdateHomepageBlock)
			admin.DELETE("/content/homepage/:id", contentHandler.DeleteHomepageBlock)
			admin.GET("/content/app-icons", contentHandler.GetAllAppIcons)
			admin.POST("/content/app-icons", contentHandler.CreateAppIcon)
			admin.DELETE("/content/app-icons/:id", contentHandler.DeleteAppIcon)

			admin.GET("/settings", contentHandler.GetSettings)
			admin.PUT("/settings", contentHandler.UpdateSetting)

			admin.POST("/uploads", middleware.UploadRateLimit(), contentHandler.UploadImage)

			admin.POST("/notifications/broadcast", adminHandler.BroadcastNotification)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r
}
