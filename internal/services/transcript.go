package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

// ConversationLog saves every inbound and outbound message. Recording is
// best-effort: failures are logged and never block the conversation.
type ConversationLog struct {
	store storage.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewConversationLog creates a transcript backed by store.
func NewConversationLog(store storage.Store, log logrus.FieldLogger) *ConversationLog {
	return &ConversationLog{store: store, log: log, now: time.Now}
}

// Record saves one message.
func (c *ConversationLog) Record(ctx context.Context, whatsappNumber, sender, message string) {
	err := c.store.AppendConversation(ctx, &models.ConversationMessage{
		WhatsAppNumber: whatsappNumber,
		Sender:         sender,
		Message:        message,
		Timestamp:      c.now(),
	})
	if err != nil {
		c.log.WithError(err).WithField("whatsapp", whatsappNumber).Warn("Failed to record conversation message")
	}
}

// RecordingSender records every message it delivers as a bot message
type RecordingSender struct {
	next       Sender
	transcript Transcript
}

// NewRecordingSender wraps next so outbound messages land in the transcript.
func NewRecordingSender(next Sender, transcript Transcript) *RecordingSender {
	return &RecordingSender{next: next, transcript: transcript}
}

// SendText sends and records a text message.
func (r *RecordingSender) SendText(to, message string) error {
	if err := r.next.SendText(to, message); err != nil {
		return err
	}
	r.transcript.Record(context.Background(), to, models.SenderBot, message)
	return nil
}

// SendDocument sends a document and records its caption.
func (r *RecordingSender) SendDocument(to, documentURL, caption string) error {
	if err := r.next.SendDocument(to, documentURL, caption); err != nil {
		return err
	}
	r.transcript.Record(context.Background(), to, models.SenderBot, "[document] "+caption)
	return nil
}
