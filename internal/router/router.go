// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/bangazon/bangazon-backend/internal/config"
	"github.com/bangazon/bangazon-backend/internal/handlers"
	"github.com/bangazon/bangazon-backend/internal/i18n"
	"github.com/bangazon/bangazon-backend/internal/middleware"
	"github.com/bangazon/bangazon-backend/internal/services"
	"github.com/bangazon/bangazon-backend/internal/utils"
)

const version = "1.0.0"

// Initialize wires services, handlers and middleware. Background work started
// here stops when ctx is cancelled.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	paymentTypeService := services.NewPaymentTypeService(db)
	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db, storageService)
	orderService := services.NewOrderService(db, paymentTypeService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, cfg.Storage.MaxImageSize)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentTypeHandler := handlers.NewPaymentTypeHandler(paymentTypeService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = cfg.Storage.MaxImageSize

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(limiter.Middleware())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	// Local image storage is served directly outside production
	if !storageService.UsesS3() && !cfg.IsProduction() && strings.HasPrefix(cfg.Storage.PublicBaseURL, "/") {
		r.Static(cfg.Storage.PublicBaseURL, cfg.Storage.UploadDir)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND",
			i18n.T(utils.GetLangFromContext(c), i18n.KeyRouteNotFound), nil)
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/new", productHandler.GetProductForm)
			products.GET("/types", productHandler.GetProductTypes)
			products.GET("/mine", middleware.AuthRequired(), productHandler.GetMyProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)

			products.POST("", middleware.AuthRequired(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), productHandler.DeleteProduct)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.GetCompletedOrders)
			orders.GET("/cart", orderHandler.GetCart)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/checkout", orderHandler.GetCheckoutForm)
			orders.PUT("/:id/checkout", orderHandler.Checkout)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}

		// Payment type routes
		paymentTypes := v1.Group("/payment-types")
		paymentTypes.Use(middleware.AuthRequired())
		{
			paymentTypes.GET("", paymentTypeHandler.GetPaymentTypes)
		}
	}

	return r, nil
}
