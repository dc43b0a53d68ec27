package storage

import (
	"context"
	"errors"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// ErrNotFound is returned when no record matches the lookup
var ErrNotFound = errors.New("storage: not found")

// Store defines the interface for storage operations
type Store interface {
	// Order operations
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetLatestOrder(ctx context.Context, whatsappNumber string) (*models.Order, error)
	GetLatestActiveOrder(ctx context.Context, whatsappNumber string) (*models.Order, error)
	GetOrdersByWhatsApp(ctx context.Context, whatsappNumber string) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
	CountOrders(ctx context.Context) (int64, error)

	// Conversation transcript
	AppendConversation(ctx context.Context, msg *models.ConversationMessage) error
	GetConversation(ctx context.Context, whatsappNumber string, limit int) ([]*models.ConversationMessage, error)
}
