package main

import (
	"net/http"

	"garage-service/internal/handler"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/config"
	"garage-service/pkg/database"
	"garage-service/pkg/jwtutil"
	"garage-service/pkg/logger"
	"garage-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (.env is optional, env vars take over)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting garage-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database and run the schema migration
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Seed the default manager account
	if err := database.SeedDefaults(database.GetDB(), log); err != nil {
		log.Error("Failed to seed default users", zap.Error(err))
	}

	// Upload storage for work order images
	handler.InitUploads(&appConfig.Upload)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes
	e.POST("/auth/register", handler.Register)
	e.POST("/auth/login", handler.Login)

	// Car routes
	carAPI := e.Group("/cars", mid.AuthMiddleware)
	carAPI.GET("", handler.ListCars)
	carAPI.GET("/:id", handler.GetCar)
	carAPI.POST("", handler.CreateCar)
	carAPI.POST("/delete/:id", handler.DeleteCar)

	// Part routes
	partAPI := e.Group("/parts", mid.AuthMiddleware)
	partAPI.GET("", handler.ListParts)
	partAPI.POST("", handler.CreatePart)
	partAPI.POST("/delete/:id", handler.DeletePart)

	// Work order routes
	orderAPI := e.Group("/work-orders", mid.AuthMiddleware)
	orderAPI.GET("", handler.ListWorkOrders)
	orderAPI.GET("/:id", handler.GetWorkOrder)
	orderAPI.POST("", handler.CreateWorkOrder)
	orderAPI.POST("/assign/:id", handler.AssignMechanic)
	orderAPI.POST("/status/:id", handler.UpdateStatus)
	orderAPI.POST("/complete/:id", handler.CompleteWorkOrder)
	orderAPI.POST("/use_part/:id", handler.UsePart)
	orderAPI.POST("/:id/images", handler.UploadOrderImages)

	// User routes
	userAPI := e.Group("/users", mid.AuthMiddleware)
	userAPI.GET("/mechanics", handler.ListMechanics)
	userAPI.POST("", handler.CreateUser)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
