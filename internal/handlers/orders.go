package handlers

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
	"github.com/Ananth-NQI/alarab-orderbot/internal/utils"
)

// OrderHandler exposes orders to restaurant staff
type OrderHandler struct {
	orders   *services.OrderStatusService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderStatusService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
		log:      log,
	}
}

// ListOrders returns the orders placed from one WhatsApp number, newest first
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	number := utils.NormalizeWhatsAppNumber(c.Query("whatsapp"))
	if number == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "whatsapp query parameter is required",
		})
	}

	orders, err := h.orders.ListOrders(c.UserContext(), number)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch orders")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch orders",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

// GetOrder returns a single order
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order ID",
		})
	}

	order, err := h.orders.GetOrder(c.UserContext(), id)
	if err != nil {
		return h.orderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

// UpdateStatus changes an order's status and notifies the customer
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := orderID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order ID",
		})
	}

	var req models.OrderStatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), id, req.Status, req.Notes)
	if err != nil {
		return h.orderError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.log.WithError(err).Error("Order request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process order",
	})
}

func orderID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid order id")
	}
	return uint(id), nil
}
