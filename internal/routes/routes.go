package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/alarab-orderbot/internal/handlers"
)

// Handlers bundles everything the router serves
type Handlers struct {
	Health   *handlers.HealthHandler
	WhatsApp *handlers.WhatsAppHandler
	Orders   *handlers.OrderHandler
	Sessions *handlers.SessionsHandler
	Version  string
	// TestRoutes enables /test/whatsapp and /test/sessions (development only)
	TestRoutes bool
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers) {
	endpoints := fiber.Map{
		"health":  "/health",
		"orders":  "/api/orders",
		"webhook": "/webhook/whatsapp",
	}
	if h.TestRoutes {
		endpoints["test_whatsapp"] = "/test/whatsapp"
		endpoints["test_sessions"] = "/test/sessions"
	}

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Welcome to Al Arab Order Bot!",
			"version":   h.Version,
			"endpoints": endpoints,
		})
	})

	app.Get("/health", h.Health.Check)

	// API routes
	api := app.Group("/api")
	orders := api.Group("/orders")
	orders.Get("/", h.Orders.ListOrders)
	orders.Get("/:id", h.Orders.GetOrder)
	orders.Patch("/:id/status", h.Orders.UpdateStatus)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	webhooks.Post("/whatsapp", h.WhatsApp.HandleWebhook)

	// ========== TEST ROUTES (Development Only) ==========
	if h.TestRoutes {
		dev := app.Group("/test")
		dev.Post("/whatsapp", h.WhatsApp.HandleTestWebhook)
		dev.Get("/sessions", h.Sessions.ListSessions)
	}
}
