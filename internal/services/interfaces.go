package services

import (
	"context"
	"time"

	"github.com/Ananth-NQI/alarab-orderbot/internal/ai"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// Sender delivers outbound WhatsApp messages
type Sender interface {
	SendText(to, message string) error
	SendDocument(to, documentURL, caption string) error
}

// Extractor pulls one order field out of free text
type Extractor interface {
	ExtractField(ctx context.Context, text string, field models.Field, lang models.Language) (string, error)
}

// Classifier decides whether a message confirms the order
type Classifier interface {
	ClassifyConfirmation(ctx context.Context, text string) (bool, error)
}

// Replier generates contextual replies
type Replier interface {
	GenerateReply(ctx context.Context, req ai.ReplyRequest) (string, error)
}

// Mirror copies orders to the staff spreadsheet
type Mirror interface {
	MirrorOrder(ctx context.Context, order *models.Order, status string) error
	UpdateStatus(ctx context.Context, whatsappNumber string, createdAt time.Time, status string) error
}
