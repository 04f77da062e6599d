package api

import (
	"context"
	"time"

	"expense-tracker/internal/api/handlers"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/auth"
	"expense-tracker/pkg/config"
	"expense-tracker/pkg/metrics"
	"expense-tracker/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// multipart overhead on top of the largest accepted receipt
const bodyLimitSlack = 2 << 20

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDeps struct {
	ReceiptHandler *handlers.ReceiptHandler
	ExpenseHandler *handlers.ExpenseHandler
	JWTManager     *auth.JWTManager
	DB             Pinger
	Metrics        *metrics.OCRMetrics
	Server         config.ServerConfig
	MaxUploadBytes int64
}

func SetupRouter(deps RouterDeps, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    int(deps.MaxUploadBytes) + bodyLimitSlack,
		ReadTimeout:  deps.Server.ReadTimeout,
		WriteTimeout: deps.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			message := err.Error()
			if code == fiber.StatusRequestEntityTooLarge {
				message = service.MsgFileTooLarge
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	if reg := deps.Metrics.Registry(); reg != nil {
		promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
		if err != nil {
			appLogger.Warn("HTTP metrics disabled", zap.Error(err))
		} else {
			app.Use(promMiddleware.Handler())
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return c.JSON(fiber.Map{"status": "healthy"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := deps.DB.PingContext(ctx); err != nil {
			appLogger.Warn("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "database unavailable",
			})
		}
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(deps.JWTManager, appLogger))

	receipts := protected.Group("/receipts")
	receipts.Post("/extract", deps.ReceiptHandler.ExtractReceipt)
	receipts.Post("/add-expense", deps.ReceiptHandler.AddExpenseFromReceipt)

	expenses := protected.Group("/expenses")
	expenses.Get("", deps.ExpenseHandler.ListExpenses)
	expenses.Post("", deps.ExpenseHandler.AddExpense)
	expenses.Get("/export", deps.ExpenseHandler.ExportExpenses)

	return app
}
