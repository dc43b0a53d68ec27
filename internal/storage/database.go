package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// DatabaseStore persists orders and transcripts with gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store on top of an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the tables used by the store.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Order{},
		&models.ConversationMessage{},
	)
}

func (d *DatabaseStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := d.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (d *DatabaseStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := d.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (d *DatabaseStore) GetLatestOrder(ctx context.Context, whatsappNumber string) (*models.Order, error) {
	var order models.Order
	err := d.db.WithContext(ctx).
		Where("whatsapp_number = ?", whatsappNumber).
		Order("created_at DESC, id DESC").
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (d *DatabaseStore) GetLatestActiveOrder(ctx context.Context, whatsappNumber string) (*models.Order, error) {
	var order models.Order
	err := d.db.WithContext(ctx).
		Where("whatsapp_number = ? AND status <> ?", whatsappNumber, models.OrderStatusCancelled).
		Order("created_at DESC, id DESC").
		First(&order).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (d *DatabaseStore) GetOrdersByWhatsApp(ctx context.Context, whatsappNumber string) ([]*models.Order, error) {
	var orders []*models.Order
	err := d.db.WithContext(ctx).
		Where("whatsapp_number = ?", whatsappNumber).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (d *DatabaseStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	res := d.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status": order.Status,
		"notes":  order.Notes,
	})
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (d *DatabaseStore) AppendConversation(ctx context.Context, msg *models.ConversationMessage) error {
	if err := d.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

// GetConversation returns up to limit of the most recent messages, oldest first.
func (d *DatabaseStore) GetConversation(ctx context.Context, whatsappNumber string, limit int) ([]*models.ConversationMessage, error) {
	var msgs []*models.ConversationMessage
	q := d.db.WithContext(ctx).
		Where("whatsapp_number = ?", whatsappNumber).
		Order("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
