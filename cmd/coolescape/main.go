package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/coolescape/coolescape/internal/api/http"
	"github.com/coolescape/coolescape/internal/cache"
	"github.com/coolescape/coolescape/internal/config"
	"github.com/coolescape/coolescape/internal/district"
	"github.com/coolescape/coolescape/internal/scheduler"
	"github.com/coolescape/coolescape/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Static district reference table, loaded once for the process lifetime.
	registry, err := district.Load(cfg.DistrictsFile)
	if err != nil {
		log.Fatalf("failed to load districts: %v", err)
	}
	log.Printf("loaded %d districts from %s", registry.Len(), cfg.DistrictsFile)

	// Shared result cache: Redis when configured, in-memory otherwise.
	var resultCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		resultCache = redisCache
		log.Println("using redis result cache")
	} else {
		resultCache = cache.NewMemory()
		log.Println("using in-memory result cache")
	}

	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := weather.NewClient(httpClient, cfg.ForecastBaseURL)
	service := weather.NewService(client, resultCache, registry, cfg.CacheTTL)

	// Optional scheduler that keeps the district cache warm.
	sched := scheduler.New(cfg.PrewarmInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "coolescape",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "coolescape",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, registry)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
