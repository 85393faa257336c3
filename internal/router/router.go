package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/controller"
	"github.com/ikkim/minishop-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	userController         *controller.UserController
	goodsController        *controller.GoodsController
	cartController         *controller.CartController
	addressController      *controller.AddressController
	orderController        *controller.OrderController
	notificationController *controller.NotificationController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	goodsController *controller.GoodsController,
	cartController *controller.CartController,
	addressController *controller.AddressController,
	orderController *controller.OrderController,
	notificationController *controller.NotificationController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		userController:         userController,
		goodsController:        goodsController,
		cartController:         cartController,
		addressController:      addressController,
		orderController:        orderController,
		notificationController: notificationController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.config.Server.GinMode != "" {
		gin.SetMode(r.config.Server.GinMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "minishop API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()

	v1 := router.Group("/api/v1")
	{
		user := v1.Group("/user")
		{
			user.POST("/login", r.authController.Login)
			user.POST("/logout", authenticated, r.authController.Logout)
			user.GET("/profile", authenticated, r.userController.GetProfile)
			user.PUT("/profile", authenticated, r.userController.UpdateProfile)
			user.POST("/avatar", authenticated, r.userController.UploadAvatar)
		}

		v1.GET("/categories", r.goodsController.ListCategories)

		goods := v1.Group("/goods")
		{
			goods.GET("", r.goodsController.ListGoods)
			goods.GET("/:id", r.goodsController.GetGoods)
		}

		cart := v1.Group("/cart", authenticated)
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.RemoveItems)
			cart.PUT("/selected", r.cartController.SelectAll)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
		}

		addresses := v1.Group("/addresses", authenticated)
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.GET("/:id", r.addressController.GetAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
		}

		orders := v1.Group("/orders", authenticated)
		{
			orders.GET("/pre", r.orderController.PreOrder)
			orders.GET("/pre/now", r.orderController.PreOrderNow)
			orders.GET("/pre/repurchase/:id", r.orderController.RepurchasePreview)
			orders.POST("", r.orderController.SubmitOrder)
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/export", r.orderController.ExportOrders)
			orders.GET("/:id", r.orderController.GetOrderDetail)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
			orders.POST("/:id/pay", r.orderController.PayOrder)
		}

		v1.GET("/ws", authenticated, r.notificationController.Connect)
	}

	return router
}

// corsConfig allows every origin when none are configured or "*" is listed
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
