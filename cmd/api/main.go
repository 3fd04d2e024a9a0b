package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"exam-grader/internal/adapter"
	"exam-grader/internal/adapter/pdftext"
	"exam-grader/internal/adapter/tablereader"
	"exam-grader/internal/cache"
	"exam-grader/internal/config"
	"exam-grader/internal/domain"
	"exam-grader/internal/handler"
	"exam-grader/internal/logger"
	"exam-grader/internal/matcher"
	"exam-grader/internal/middleware"
	"exam-grader/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Cache is optional: without a Redis address every extraction runs
	// fresh, which is correct, just slower.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Extraction cache enabled", zap.String("redis", cfg.Redis.Address))
	} else {
		cacheAdapter = adapter.NewNoopCache()
		appLogger.Info("No Redis address configured, extraction cache disabled")
	}

	examService := service.NewExamService(
		cfg,
		pdftext.NewExtractor(),
		tablereader.NewReader(),
		cacheAdapter,
		matcher.New(cfg.Matcher.Threshold),
	)
	examHandler := handler.NewExamHandler(examService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	examHandler.RegisterRoutes(app.Group("/api"))

	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("test_dir", cfg.Dirs.Tests),
			zap.String("key_dir", cfg.Dirs.Keys),
		)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited")
}
