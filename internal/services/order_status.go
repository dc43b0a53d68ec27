package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

// ErrInvalidStatus is returned for a status outside the order lifecycle.
var ErrInvalidStatus = errors.New("invalid order status")

// OrderStatusService moves orders through their lifecycle on behalf of staff
type OrderStatusService struct {
	store  storage.Store
	sender Sender
	mirror Mirror
	log    logrus.FieldLogger
}

// NewOrderStatusService creates a new order status service
func NewOrderStatusService(store storage.Store, sender Sender, mirror Mirror, log logrus.FieldLogger) *OrderStatusService {
	return &OrderStatusService{store: store, sender: sender, mirror: mirror, log: log}
}

// UpdateStatus stores the new status, tells the customer and mirrors it to
// the sheet. Notification and mirroring are best-effort.
func (s *OrderStatusService) UpdateStatus(ctx context.Context, orderID uint, status, notes string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = status
	if notes = strings.TrimSpace(notes); notes != "" {
		order.Notes = strings.TrimSpace(order.Notes + " " + notes)
	}
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}

	log := s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"whatsapp": order.WhatsAppNumber,
		"status":   status,
	})
	log.Info("Order status updated")

	if err := s.sender.SendText(order.WhatsAppNumber, StatusMessage(status)); err != nil {
		log.WithError(err).Warn("Failed to notify customer of status change")
	}
	if err := s.mirror.UpdateStatus(ctx, order.WhatsAppNumber, order.CreatedAt, status); err != nil {
		log.WithError(err).Warn("Failed to mirror status to sheet")
	}
	return order, nil
}

// GetOrder returns a single order.
func (s *OrderStatusService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListOrders returns the orders of a WhatsApp number, newest first.
func (s *OrderStatusService) ListOrders(ctx context.Context, whatsappNumber string) ([]*models.Order, error) {
	return s.store.GetOrdersByWhatsApp(ctx, whatsappNumber)
}
