package models

import "time"

// Step is the position of a conversation in the ordering flow
type Step int

const (
	StepGreeting Step = iota
	StepOrderInterest
	StepCollectingDetails
	StepConfirmingOrder
)

var stepNames = map[Step]string{
	StepGreeting:          "greeting",
	StepOrderInterest:     "order_interest",
	StepCollectingDetails: "collecting_details",
	StepConfirmingOrder:   "confirming_order",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// CanAdvanceTo reports whether moving from s to next keeps the flow moving forward.
func (s Step) CanAdvanceTo(next Step) bool {
	_, known := stepNames[next]
	return known && next > s
}

// Field is one of the order details collected from the customer
type Field string

const (
	FieldName        Field = "name"
	FieldAddress     Field = "address"
	FieldPhone       Field = "phone"
	FieldItems       Field = "items"
	FieldPaymentType Field = "payment_type"
)

// ExtractionOrder is the order in which fields are extracted from a message.
var ExtractionOrder = []Field{FieldName, FieldAddress, FieldPhone, FieldItems, FieldPaymentType}

// RequiredOrder is the order in which missing fields are prompted for.
// Payment type is never required.
var RequiredOrder = []Field{FieldName, FieldItems, FieldAddress, FieldPhone}

// Session holds the order being collected for one WhatsApp number
type Session struct {
	Step        Step      `json:"step"`
	Name        string    `json:"name,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Items       string    `json:"items,omitempty"`
	PaymentType string    `json:"payment_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}

// NewSession returns an empty session at the greeting step.
func NewSession(now time.Time) *Session {
	return &Session{
		Step:       StepGreeting,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Clone returns a copy that can be mutated without touching s.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

// Advance moves the session to next. Backward or repeated moves are refused.
func (s *Session) Advance(next Step) bool {
	if !s.Step.CanAdvanceTo(next) {
		return false
	}
	s.Step = next
	return true
}

// Value returns the current value of field.
func (s *Session) Value(field Field) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldAddress:
		return s.Address
	case FieldPhone:
		return s.Phone
	case FieldItems:
		return s.Items
	case FieldPaymentType:
		return s.PaymentType
	}
	return ""
}

// Has reports whether field has been collected.
func (s *Session) Has(field Field) bool {
	return s.Value(field) != ""
}

// Fill sets field to value unless it is already set. It returns true when
// the value was stored.
func (s *Session) Fill(field Field, value string) bool {
	if value == "" || s.Has(field) {
		return false
	}
	switch field {
	case FieldName:
		s.Name = value
	case FieldAddress:
		s.Address = value
	case FieldPhone:
		s.Phone = value
	case FieldItems:
		s.Items = value
	case FieldPaymentType:
		s.PaymentType = value
	default:
		return false
	}
	return true
}

// MissingRequired lists the required fields not yet collected, highest priority first.
func (s *Session) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredOrder {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// MissingAny reports whether any field, required or not, is still unset.
func (s *Session) MissingAny() bool {
	for _, f := range ExtractionOrder {
		if !s.Has(f) {
			return true
		}
	}
	return false
}
