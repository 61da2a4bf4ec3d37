package main

import (
	"context"
	"log"
	"time"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/config"
	"storefront-api/internal/core/database"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/server"
	orderadapter "storefront-api/internal/features/orders/adapters"
	orderhandler "storefront-api/internal/features/orders/handler"
	orderservice "storefront-api/internal/features/orders/service"
	"storefront-api/internal/features/payments/esewa"

	"go.uber.org/zap"
)

// @title Storefront API
// @version 1.0
// @description E-commerce order, checkout, and eSewa payment API.
// @contact.name API Support
// @contact.email support@storefront.local
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	// Connect MongoDB (orders, product stock)
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		l.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer database.Disconnect(context.Background(), db)
	l.Info("MongoDB connection verified", zap.String("database", cfg.Mongo.Database))

	// Connect Redis (carts)
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Redis setup failed", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis ping failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	// Wire Repositories & Gateway clients
	orderRepo := orderadapter.NewMongoOrderRepository(db)
	stockStore := orderadapter.NewMongoStockStore(db)
	cartRepo := orderadapter.NewRedisCartRepository(redisCache)
	intentBuilder := esewa.NewIntentBuilder(cfg.Esewa, cfg.FrontendURL)
	statusClient := esewa.NewStatusClient(cfg.Esewa, 10*time.Second)

	// Wire Order Service & Handler
	orderService := orderservice.NewOrderService(orderRepo, stockStore, cartRepo, intentBuilder, statusClient)
	orderHandler := orderhandler.NewOrderHandler(orderService, cfg.Esewa.SecretKey, cfg.FrontendURL)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/api/shop/order/create", orderHandler.CreateOrder)
	srv.App.Post("/api/shop/order/capture", orderHandler.CapturePayment)
	srv.App.Get("/api/shop/order/list/:userId", orderHandler.ListOrders)
	srv.App.Get("/api/shop/order/details/:id", orderHandler.OrderDetails)
	srv.App.Post("/api/shop/order/esewa-callback", orderHandler.EsewaCallback)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
