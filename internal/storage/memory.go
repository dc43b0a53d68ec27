package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// MemoryStore holds all data in memory for local runs and tests
type MemoryStore struct {
	orders        map[uint]*models.Order
	conversations []*models.ConversationMessage

	// Mutexes for thread safety
	orderMu        sync.RWMutex
	conversationMu sync.RWMutex

	// Counters for ID generation
	orderCounter        uint
	conversationCounter uint

	now func() time.Time
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[uint]*models.Order),
		now:    time.Now,
	}
}

// Order operations
func (m *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	m.orderCounter++
	stored := *order
	stored.ID = m.orderCounter
	if stored.Reference == "" {
		stored.Reference = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = models.OrderStatusPending
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = m.now()
	}
	stored.UpdatedAt = stored.CreatedAt

	m.orders[stored.ID] = &stored
	*order = stored
	return order, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	order, exists := m.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *order
	return &c, nil
}

func (m *MemoryStore) GetLatestOrder(ctx context.Context, whatsappNumber string) (*models.Order, error) {
	return m.latest(whatsappNumber, func(*models.Order) bool { return true })
}

func (m *MemoryStore) GetLatestActiveOrder(ctx context.Context, whatsappNumber string) (*models.Order, error) {
	return m.latest(whatsappNumber, func(o *models.Order) bool {
		return o.Status != models.OrderStatusCancelled
	})
}

func (m *MemoryStore) latest(whatsappNumber string, keep func(*models.Order) bool) (*models.Order, error) {
	orders, _ := m.GetOrdersByWhatsApp(context.Background(), whatsappNumber)
	for _, o := range orders {
		if keep(o) {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

// GetOrdersByWhatsApp returns the number's orders, newest first.
func (m *MemoryStore) GetOrdersByWhatsApp(ctx context.Context, whatsappNumber string) ([]*models.Order, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()

	var orders []*models.Order
	for _, o := range m.orders {
		if o.WhatsAppNumber == whatsappNumber {
			c := *o
			orders = append(orders, &c)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *MemoryStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()

	if _, exists := m.orders[order.ID]; !exists {
		return ErrNotFound
	}
	order.UpdatedAt = m.now()
	c := *order
	m.orders[order.ID] = &c
	return nil
}

func (m *MemoryStore) CountOrders(ctx context.Context) (int64, error) {
	m.orderMu.RLock()
	defer m.orderMu.RUnlock()
	return int64(len(m.orders)), nil
}

// Conversation operations
func (m *MemoryStore) AppendConversation(ctx context.Context, msg *models.ConversationMessage) error {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	m.conversationCounter++
	c := *msg
	c.ID = m.conversationCounter
	if c.Timestamp.IsZero() {
		c.Timestamp = m.now()
	}
	m.conversations = append(m.conversations, &c)
	return nil
}

// GetConversation returns up to limit of the most recent messages, oldest first.
func (m *MemoryStore) GetConversation(ctx context.Context, whatsappNumber string, limit int) ([]*models.ConversationMessage, error) {
	m.conversationMu.RLock()
	defer m.conversationMu.RUnlock()

	var msgs []*models.ConversationMessage
	for _, msg := range m.conversations {
		if msg.WhatsAppNumber == whatsappNumber {
			c := *msg
			msgs = append(msgs, &c)
		}
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
