package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/utils"
)

// messageCreator is the part of the Twilio REST API used to send messages
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioService struct {
	api  messageCreator
	from string // Your Twilio WhatsApp number
	log  logrus.FieldLogger
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig, log logrus.FieldLogger) (*TwilioService, error) {
	if !cfg.Configured() {
		return nil, errors.New("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		api:  client.Api,
		from: utils.WhatsAppAddress(cfg.WhatsAppFrom),
		log:  log,
	}, nil
}

// SendText sends a WhatsApp message via Twilio
func (t *TwilioService) SendText(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(utils.WhatsAppAddress(to))
	params.SetBody(message)

	return t.create(params, to)
}

// SendDocument sends a media message, e.g. the menu PDF, with a caption
func (t *TwilioService) SendDocument(to, documentURL, caption string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(utils.WhatsAppAddress(to))
	params.SetMediaUrl([]string{documentURL})
	if caption != "" {
		params.SetBody(caption)
	}

	return t.create(params, to)
}

func (t *TwilioService) create(params *twilioApi.CreateMessageParams, to string) error {
	resp, err := t.api.CreateMessage(params)
	if err != nil {
		t.log.WithError(err).WithField("whatsapp", to).Error("❌ Failed to send WhatsApp message")
		return err
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	t.log.WithFields(logrus.Fields{"whatsapp": to, "sid": sid}).Info("✅ WhatsApp message sent!")
	return nil
}

// LogSender stands in for Twilio in local development and only logs
type LogSender struct {
	Log logrus.FieldLogger
}

func (l LogSender) SendText(to, message string) error {
	l.Log.WithField("whatsapp", to).Infof("📤 Response (not sent - Twilio not configured): %s", message)
	return nil
}

func (l LogSender) SendDocument(to, documentURL, caption string) error {
	l.Log.WithFields(logrus.Fields{"whatsapp": to, "document": documentURL}).
		Infof("📤 Document (not sent - Twilio not configured): %s", caption)
	return nil
}
