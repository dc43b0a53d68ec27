package models

import "time"

// Language is the reply language locked for a WhatsApp number
type Language string

const (
	LanguageEnglish   Language = "English"
	LanguageUrdu      Language = "Urdu"
	LanguageRomanUrdu Language = "Roman Urdu"
)

// DefaultLanguage is used when no keyword identifies the customer's language.
const DefaultLanguage = LanguageRomanUrdu

// Role identifies who authored a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the recent conversation history
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationMessage is the persisted transcript of a chat
type ConversationMessage struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	WhatsAppNumber string    `json:"whatsapp_number" gorm:"column:whatsapp_number;size:50;index"`
	Sender         string    `json:"sender" gorm:"size:10"` // "user" or "bot"
	Message        string    `json:"message" gorm:"size:1000"`
	Timestamp      time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

// Sender constants for ConversationMessage
const (
	SenderUser = "user"
	SenderBot  = "bot"
)
