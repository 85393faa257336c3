package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/minishop-backend/config"
	"github.com/ikkim/minishop-backend/internal/app/controller"
	"github.com/ikkim/minishop-backend/internal/app/repository"
	"github.com/ikkim/minishop-backend/internal/app/service"
	"github.com/ikkim/minishop-backend/internal/db"
	"github.com/ikkim/minishop-backend/internal/middleware"
	"github.com/ikkim/minishop-backend/internal/router"
	"github.com/ikkim/minishop-backend/internal/scheduler"
	"github.com/ikkim/minishop-backend/internal/storage"
	ws "github.com/ikkim/minishop-backend/internal/websocket"
	"github.com/ikkim/minishop-backend/pkg/logger"
	pkgredis "github.com/ikkim/minishop-backend/pkg/redis"
	"github.com/ikkim/minishop-backend/pkg/wechat"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting minishop backend server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations, seeding categories on an empty catalog
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis session store
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize redis", err)
	}
	defer func() {
		if err := pkgredis.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()
	sessionStore := pkgredis.NewSessionStore(pkgredis.GetClient(), pkgredis.DefaultSessionPrefix, cfg.JWT.TokenExpiry)

	wechatClient, err := wechat.NewClient(wechat.Config{
		AppID:     cfg.WeChat.AppID,
		AppSecret: cfg.WeChat.AppSecret,
		BaseURL:   cfg.WeChat.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize wechat client", err)
	}

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	gdb := db.GetDB()
	userRepo := repository.NewUserRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	goodsRepo := repository.NewGoodsRepository(gdb)
	cartRepo := repository.NewCartRepository(gdb)
	addressRepo := repository.NewAddressRepository(gdb)
	orderRepo := repository.NewOrderRepository(gdb)
	jobRepo := repository.NewOrderCancelJobRepository(gdb)

	// Initialize services
	authService := service.NewAuthService(userRepo, wechatClient, sessionStore, service.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenExpiry:   cfg.JWT.TokenExpiry,
		DefaultAvatar: cfg.User.DefaultAvatar,
		AccountPrefix: cfg.User.AccountPrefix,
	})
	userService := service.NewUserService(userRepo, s3Storage, cfg.S3.AvatarFolder)
	goodsService := service.NewGoodsService(categoryRepo, goodsRepo)
	cartService := service.NewCartService(cartRepo, goodsRepo)
	addressService := service.NewAddressService(gdb, addressRepo)
	orderService := service.NewOrderService(
		gdb,
		orderRepo,
		jobRepo,
		goodsRepo,
		cartRepo,
		addressRepo,
		hub,
		service.OrderConfig{PayTimeout: cfg.Order.PayTimeout},
	)

	cancelScheduler := scheduler.NewOrderCancelScheduler(orderService, cfg.Order.CancelPollSpec)
	if err := cancelScheduler.Start(); err != nil {
		logger.Fatal("Failed to start order cancel scheduler", err)
	}

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(userService)
	goodsController := controller.NewGoodsController(goodsService)
	cartController := controller.NewCartController(cartService)
	addressController := controller.NewAddressController(addressService)
	orderController := controller.NewOrderController(orderService)
	notificationController := controller.NewNotificationController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, authService)

	r := router.NewRouter(
		authController,
		userController,
		goodsController,
		cartController,
		addressController,
		orderController,
		notificationController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	cancelScheduler.Stop()
	stop()

	logger.Info("Server stopped successfully")
}
