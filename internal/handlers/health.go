package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

// Integrations lists which outside services are wired in
type Integrations struct {
	Twilio bool `json:"twilio"`
	OpenAI bool `json:"openai"`
	Sheets bool `json:"sheets"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version      string
	store        storage.Store
	sessions     *services.SessionManager
	integrations Integrations
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, store storage.Store, sessions *services.SessionManager, integrations Integrations) *HealthHandler {
	return &HealthHandler{
		Version:      version,
		store:        store,
		sessions:     sessions,
		integrations: integrations,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "OK"
	code := fiber.StatusOK
	storageStatus := "ok"

	orders, err := h.store.CountOrders(c.UserContext())
	if err != nil {
		status = "DEGRADED"
		code = fiber.StatusServiceUnavailable
		storageStatus = err.Error()
	}

	stats := h.sessions.GetSessionStats()
	return c.Status(code).JSON(fiber.Map{
		"status":          status,
		"service":         "Al Arab Order Bot",
		"version":         h.Version,
		"storage":         storageStatus,
		"orders":          orders,
		"active_sessions": stats.ActiveSessions,
		"sessions":        stats.SessionsByStep,
		"integrations":    h.integrations,
	})
}
