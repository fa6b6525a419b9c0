package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school/config"
	courseController "school/controllers/course"
	orderController "school/controllers/order"
	"school/database"
	"school/kv"
	"school/logger"
	"school/middleware"
	authRoutes "school/routers/authRoutes"
	courseRoutes "school/routers/courseRoutes"
	orderRoutes "school/routers/orderRoutes"
	superAdminRoutes "school/routers/superAdmin"
	userProfileRoutes "school/routers/userRoutes"
	"school/services/enrollments"
	"school/services/payments"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	if err := logger.Init(cfg.AppEnv); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Log.Sync()

	if err := database.ConnectDb(cfg); err != nil {
		logger.Log.Fatal("database connection failed", "error", err)
	}

	if err := kv.Init(context.Background(), cfg.RedisURL); err != nil {
		logger.Log.Warn("redis unavailable, rate limiting disabled", "error", err)
	}

	policy := enrollments.Policy{
		MaxAttempts: cfg.OutboxMaxAttempts,
		BatchSize:   cfg.OutboxBatchSize,
	}
	payments.DispatchPolicy = policy
	courseController.OutboxPolicy = policy
	orderController.Gateway = payments.NewMercadoPago(payments.MercadoPagoConfig{
		AccessToken:     cfg.MercadoPagoAccessToken,
		BaseURL:         cfg.MercadoPagoBaseURL,
		NotificationURL: cfg.MercadoPagoNotificationURL,
		Timeout:         time.Duration(cfg.MercadoPagoTimeoutSeconds) * time.Second,
	})

	scheduler, err := enrollments.StartScheduler(database.Database.Db, cfg.OutboxSchedule, policy)
	if err != nil {
		logger.Log.Fatal("start enrollment scheduler", "error", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	orderRoutes.SetupOrderRoutes(app)

	go func() {
		logger.Log.Info("server is running", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Log.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Warn("server shutdown", "error", err)
	}
	<-scheduler.Stop().Done()
	if err := kv.Close(); err != nil {
		logger.Log.Warn("close redis", "error", err)
	}
	if err := database.Close(); err != nil {
		logger.Log.Warn("close database", "error", err)
	}
}
