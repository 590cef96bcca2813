package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/config"
	"github.com/Abraxas-365/saenggibu/pkg/errx/errxfiber"
	"github.com/Abraxas-365/saenggibu/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	// 1. Logger and config
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	cfg := config.Load()

	logx.Info("Starting student record OCR server...")

	// 2. Dependency container
	container := NewContainer(cfg)
	defer container.Cleanup()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := container.StartBackgroundServices(workerCtx)

	// 3. Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "saenggibu",
		DisableStartupMessage: true,
		ErrorHandler:          errxfiber.ErrorHandler(cfg.Server.Debug),
		BodyLimit:             cfg.Server.BodyLimit,
		IdleTimeout:           120 * time.Second,
	})

	// 4. Middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, DELETE, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 5. Health and info
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	// 6. Routes
	container.RecordHandlers.RegisterRoutes(app)
	logx.Info("Record routes registered: /api/v1/records/*")

	app.Use(notFoundHandler)

	// 7. Serve until signalled
	go func() {
		logx.Info(strings.Repeat("=", 60))
		logx.Infof("Server listening on port %s", cfg.Server.Port)
		logx.Infof("Health check: http://localhost:%s/health", cfg.Server.Port)
		logx.Info(strings.Repeat("=", 60))

		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, stopWorkers, workersDone, cfg.Jobx.ShutdownTimeout)
}

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "saenggibu",
			"version": container.Config.Server.Version,
			"ocr":     container.Recognizer != nil,
		}

		degrade := func(name string, err error) {
			if err != nil {
				health[name] = "unhealthy"
				health[name+"_error"] = err.Error()
				health["status"] = "degraded"
				return
			}
			health[name] = "healthy"
		}

		if container.DB != nil {
			degrade("db", container.DB.PingContext(c.Context()))
		}
		if container.Redis != nil {
			degrade("redis", container.Redis.Ping(c.Context()).Err())
		}
		if c.QueryBool("check_storage", false) {
			_, err := container.FileSystem.Exists(c.Context(), ".health-check")
			degrade("storage", err)
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     "saenggibu",
			"version":     cfg.Server.Version,
			"description": "Student record OCR table extraction",
			"endpoints": fiber.Map{
				"health":  "GET /health",
				"parse":   "POST /api/v1/records/parse",
				"upload":  "POST /api/v1/records",
				"list":    "GET /api/v1/records",
				"get":     "GET /api/v1/records/:id",
				"reparse": "POST /api/v1/records/:id/reparse",
				"delete":  "DELETE /api/v1/records/:id",
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	requestID, _ := c.Locals("requestid").(string)
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": requestID,
	})
}

// gracefulShutdown stops accepting requests, then lets in-flight jobs drain.
func gracefulShutdown(app *fiber.App, stopWorkers context.CancelFunc, workersDone <-chan struct{}, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	select {
	case <-workersDone:
	case <-time.After(timeout):
		logx.Warn("Job workers did not stop before timeout")
	}

	logx.Info("Server exited")
}
