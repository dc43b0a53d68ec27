package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/handlers"
	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
	"github.com/Ananth-NQI/alarab-orderbot/internal/sheets"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

type nopProcessor struct{}

func (nopProcessor) HandleMessage(context.Context, services.InboundMessage) error { return nil }

func setupApp(testRoutes bool) *fiber.App {
	logger, _ := test.NewNullLogger()
	store := storage.NewMemoryStore()
	sessions := services.NewSessionManager()
	orders := services.NewOrderStatusService(store, services.LogSender{Log: logger}, sheets.NoopMirror{Log: logger}, logger)

	app := fiber.New()
	SetupRoutes(app, Handlers{
		Health:     handlers.NewHealthHandler("test", store, sessions, handlers.Integrations{}),
		WhatsApp:   handlers.NewWhatsAppHandler(nopProcessor{}, logger),
		Orders:     handlers.NewOrderHandler(orders, logger),
		Sessions:   handlers.NewSessionsHandler(sessions, services.NewLanguageResolver(config.LanguageKeywords{})),
		Version:    "test",
		TestRoutes: testRoutes,
	})
	return app
}

func TestSetupRoutes(t *testing.T) {
	app := setupApp(true)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", fiber.StatusOK},
		{http.MethodGet, "/health", "", fiber.StatusOK},
		{http.MethodGet, "/api/orders?whatsapp=%2B92300", "", fiber.StatusOK},
		{http.MethodGet, "/api/orders/7", "", fiber.StatusNotFound},
		{http.MethodPost, "/webhook/whatsapp", "From=whatsapp%3A%2B92300&Body=menu", fiber.StatusOK},
		{http.MethodPost, "/test/whatsapp", `{"from":"+92300","message":"menu"}`, fiber.StatusOK},
		{http.MethodGet, "/test/sessions", "", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if strings.HasPrefix(tt.body, "{") {
				req.Header.Set("Content-Type", "application/json")
			} else if tt.body != "" {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSetupRoutes_NoTestRoutesInProduction(t *testing.T) {
	cfg, err := config.FromEnv(func(key string) string {
		return map[string]string{"ENVIRONMENT": "production", "DB_HOST": "10.0.0.5"}[key]
	})
	require.NoError(t, err)
	app := setupApp(cfg.IsDevelopment())

	req := httptest.NewRequest(http.MethodPost, "/test/whatsapp", strings.NewReader(`{"from":"+92300","message":"menu"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/test/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
