package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a confirmed WhatsApp order
type Order struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Reference      string    `json:"reference" gorm:"size:36;uniqueIndex"`
	Name           string    `json:"name" gorm:"size:255"`
	Address        string    `json:"address" gorm:"size:500"`
	Phone          string    `json:"phone" gorm:"size:50"`
	PaymentType    string    `json:"payment_type" gorm:"size:100"`
	WhatsAppNumber string    `json:"whatsapp_number" gorm:"column:whatsapp_number;size:50;index"`
	Items          string    `json:"items" gorm:"size:1000"`
	Notes          string    `json:"notes" gorm:"size:255"`
	Status         string    `json:"status" gorm:"size:20;default:'pending'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OrderStatus constants
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirm"
	OrderStatusDispatched = "dispatched"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// NotAvailable stands in for optional order details the customer never gave.
const NotAvailable = "N/A"

// ValidOrderStatus reports whether status is one of the known order statuses.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderStatusUpdate is the body of a staff status change
type OrderStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending confirm dispatched delivered cancelled"`
	Notes  string `json:"notes" validate:"max=255"`
}

// BeforeCreate fills in the public reference and default status.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.Reference == "" {
		o.Reference = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

// Column limits of the orders table. Extracted values are free text and are
// clipped to fit.
const (
	maxNameLen        = 255
	maxAddressLen     = 500
	maxPhoneLen       = 50
	maxPaymentTypeLen = 100
	maxItemsLen       = 1000
)

// OrderDraft is the projection of a completed session that gets persisted
type OrderDraft struct {
	WhatsAppNumber string
	Name           string
	Address        string
	Phone          string
	Items          string
	PaymentType    string
}

// DraftFromSession projects s into an order draft, defaulting the optional
// name and payment type to N/A.
func DraftFromSession(whatsappNumber string, s *Session) OrderDraft {
	return OrderDraft{
		WhatsAppNumber: whatsappNumber,
		Name:           clip(orNotAvailable(s.Name), maxNameLen),
		Address:        clip(s.Address, maxAddressLen),
		Phone:          clip(s.Phone, maxPhoneLen),
		Items:          clip(s.Items, maxItemsLen),
		PaymentType:    clip(orNotAvailable(s.PaymentType), maxPaymentTypeLen),
	}
}

// Order builds the pending order record for the draft.
func (d OrderDraft) Order(now time.Time) *Order {
	return &Order{
		Reference:      uuid.NewString(),
		Name:           d.Name,
		Address:        d.Address,
		Phone:          d.Phone,
		PaymentType:    d.PaymentType,
		WhatsAppNumber: d.WhatsAppNumber,
		Items:          d.Items,
		Status:         OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// clip cuts v to at most n characters.
func clip(v string, n int) string {
	r := []rune(v)
	if len(r) <= n {
		return v
	}
	return string(r[:n])
}

func orNotAvailable(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}
