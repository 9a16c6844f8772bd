package api

import (
	"receipt-vault/docs"
	"receipt-vault/internal/api/handlers"
	"receipt-vault/pkg/auth"
	"receipt-vault/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	receiptHandler *handlers.ReceiptHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Importing the docs package registers the documentation via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public)
	app.Post("/auth/token", authHandler.Token)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	receipts := protected.Group("/receipts")
	receipts.Post("", receiptHandler.Create)
	receipts.Get("", receiptHandler.List)
	receipts.Get("/search", receiptHandler.Search)
	receipts.Get("/:id", receiptHandler.Get)
	receipts.Patch("/:id", receiptHandler.Update)
	receipts.Delete("/:id", receiptHandler.Delete)

	protected.Get("/summary/:month", receiptHandler.Summary)
	protected.Post("/query", receiptHandler.Query)

	return app
}
