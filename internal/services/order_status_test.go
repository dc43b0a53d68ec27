package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

func TestOrderStatusService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	sender := &fakeSender{}
	mirror := &fakeMirror{}
	logger, _ := test.NewNullLogger()
	svc := NewOrderStatusService(store, sender, mirror, logger)

	created := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	order, err := store.CreateOrder(ctx, &models.Order{WhatsAppNumber: "+92300", Items: "1 biryani", CreatedAt: created})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusDispatched, "rider Asif")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDispatched, updated.Status)
	assert.Equal(t, "rider Asif", updated.Notes)

	assert.Equal(t, []string{"Aapka order dispatch ho gaya hai! 🛵"}, sender.texts())
	require.Len(t, mirror.updated, 1)
	assert.True(t, created.Equal(mirror.updated[0].CreatedAt))

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDispatched, got.Status)

	list, err := svc.ListOrders(ctx, "+92300")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOrderStatusService_Errors(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	mirror := &fakeMirror{err: errors.New("sheet offline")}
	sender := &fakeSender{textErr: errors.New("twilio down")}
	svc := NewOrderStatusService(store, sender, mirror, logger)

	_, err := svc.UpdateStatus(ctx, 1, "baking", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 42, models.OrderStatusDelivered, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	order, err := store.CreateOrder(ctx, &models.Order{WhatsAppNumber: "+92300"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusDelivered, "")
	assert.NoError(t, err, "notification and sheet failures do not fail the update")
}

type fakeMessageAPI struct {
	params []*twilioApi.CreateMessageParams
	err    error
	resp   *twilioApi.ApiV2010Message
}

func (f *fakeMessageAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioService_Send(t *testing.T) {
	api := &fakeMessageAPI{}
	logger, _ := test.NewNullLogger()
	svc := &TwilioService{api: api, from: "whatsapp:+14155238886", log: logger}

	require.NoError(t, svc.SendText("+923001234567", "Salam"))
	require.NoError(t, svc.SendDocument("whatsapp:+923001234567", "https://example.com/menu.pdf", "Menu"))

	require.Len(t, api.params, 2)
	assert.Equal(t, "whatsapp:+923001234567", *api.params[0].To)
	assert.Equal(t, "whatsapp:+14155238886", *api.params[0].From)
	assert.Equal(t, "Salam", *api.params[0].Body)
	assert.Equal(t, "whatsapp:+923001234567", *api.params[1].To)
	assert.Equal(t, []string{"https://example.com/menu.pdf"}, *api.params[1].MediaUrl)
}

func TestTwilioService_Errors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	api := &fakeMessageAPI{err: errors.New("401 unauthorized")}
	svc := &TwilioService{api: api, from: "whatsapp:+1", log: logger}
	assert.Error(t, svc.SendText("+92300", "hi"))

	code, msg := 63016, "outside the allowed window"
	api = &fakeMessageAPI{resp: &twilioApi.ApiV2010Message{ErrorCode: &code, ErrorMessage: &msg}}
	svc = &TwilioService{api: api, from: "whatsapp:+1", log: logger}
	assert.EqualError(t, svc.SendText("+92300", "hi"), "twilio error 63016: outside the allowed window")

	_, err := NewTwilioService(config.TwilioConfig{AccountSID: "AC123"}, logger)
	assert.Error(t, err)
}

func TestRecordingSender(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	transcript := NewConversationLog(store, logger)
	inner := &fakeSender{}
	sender := NewRecordingSender(inner, transcript)

	transcript.Record(ctx, "+92300", models.SenderUser, "menu")
	require.NoError(t, sender.SendText("+92300", "Yeh raha hamara menu!"))
	require.NoError(t, sender.SendDocument("+92300", "https://example.com/menu.pdf", "Al Arab Restaurant Menu"))

	inner.textErr = errors.New("down")
	assert.Error(t, sender.SendText("+92300", "lost"))

	msgs, err := store.GetConversation(ctx, "+92300", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3, "failed sends are not recorded")
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, models.SenderBot, msgs[1].Sender)
	assert.Equal(t, "[document] Al Arab Restaurant Menu", msgs[2].Message)
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := LogSender{Log: logger}

	require.NoError(t, sender.SendText("+92300", "Salam"))
	require.NoError(t, sender.SendDocument("+92300", "https://example.com/menu.pdf", "Menu"))
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "https://example.com/menu.pdf", hook.LastEntry().Data["document"])
}
