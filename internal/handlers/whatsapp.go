package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
)

// MessageProcessor runs the conversation for one inbound message
type MessageProcessor interface {
	HandleMessage(ctx context.Context, msg services.InboundMessage) error
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	engine MessageProcessor
	log    logrus.FieldLogger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(engine MessageProcessor, log logrus.FieldLogger) *WhatsAppHandler {
	return &WhatsAppHandler{
		engine: engine,
		log:    log,
	}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"` // whatsapp:+923001234567
	To          string `form:"To"`
	Body        string `form:"Body"`
	MessageType string `form:"MessageType"`
	NumMedia    string `form:"NumMedia"`

	// Set when the customer shares a location pin
	Latitude  string `form:"Latitude"`
	Longitude string `form:"Longitude"`
	Address   string `form:"Address"`
	Label     string `form:"Label"`
}

// IsLocation reports whether the payload carries a shared location.
func (p TwilioWebhookPayload) IsLocation() bool {
	return p.MessageType == "location" || (p.Latitude != "" && p.Longitude != "")
}

// InboundMessage converts the payload for the conversation engine.
func (p TwilioWebhookPayload) InboundMessage() services.InboundMessage {
	if !p.IsLocation() {
		return services.InboundMessage{From: p.From, Kind: services.MessageText, Text: p.Body}
	}
	lat, _ := strconv.ParseFloat(strings.TrimSpace(p.Latitude), 64)
	long, _ := strconv.ParseFloat(strings.TrimSpace(p.Longitude), 64)
	return services.InboundMessage{
		From: p.From,
		Kind: services.MessageLocation,
		Location: services.Location{
			Name:      p.Label,
			Address:   p.Address,
			Latitude:  lat,
			Longitude: long,
		},
	}
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.log.WithError(err).Warn("Error parsing webhook")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Delivery status callbacks carry no sender text or location
	if payload.From == "" || (payload.Body == "" && !payload.IsLocation()) {
		return c.SendStatus(fiber.StatusOK)
	}

	h.log.WithFields(logrus.Fields{
		"whatsapp":    payload.From,
		"message_sid": payload.MessageSid,
	}).Info("📱 WhatsApp message received")

	if err := h.engine.HandleMessage(c.UserContext(), payload.InboundMessage()); err != nil {
		h.log.WithError(err).Error("Error processing message")
	}

	// Acknowledge webhook receipt
	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload is a WhatsApp message for local testing without Twilio
type TestWebhookPayload struct {
	From     string             `json:"from"`
	Message  string             `json:"message"`
	Location *services.Location `json:"location,omitempty"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}
	if strings.TrimSpace(payload.From) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from is required",
		})
	}

	msg := services.InboundMessage{From: payload.From, Kind: services.MessageText, Text: payload.Message}
	if payload.Location != nil {
		msg = services.InboundMessage{From: payload.From, Kind: services.MessageLocation, Location: *payload.Location}
	}

	h.log.WithField("whatsapp", payload.From).Info("📱 Test message received")
	if err := h.engine.HandleMessage(c.UserContext(), msg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
