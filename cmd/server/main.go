package main

import (
	"staff_orders/internal/config"
	"staff_orders/internal/database"
	"staff_orders/internal/handlers"
	"staff_orders/internal/repository"
	"staff_orders/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}

	// Initialize repositories and services
	orderRepo := repository.NewOrderRepository(db)
	orderService := services.NewOrderService(orderRepo)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Setup routes
	router := gin.Default()
	router.Use(cors.Default())
	orderHandler.RegisterRoutes(router)

	// Start server
	logrus.Infof("server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
