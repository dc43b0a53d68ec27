package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/ai"
	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
	"github.com/Ananth-NQI/alarab-orderbot/internal/utils"
)

// cancelNote is appended to an order cancelled from WhatsApp.
const cancelNote = "[User cancelled or reported prank]"

// MessageKind distinguishes free text from a shared location pin
type MessageKind int

const (
	MessageText MessageKind = iota
	MessageLocation
)

// Location is a WhatsApp location payload
type Location struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DeliveryAddress is the address stored on the order for this pin.
func (l Location) DeliveryAddress() string {
	if addr := strings.TrimSpace(strings.TrimSpace(l.Address) + " " + strings.TrimSpace(l.Name)); addr != "" {
		return addr
	}
	if l.Latitude == 0 && l.Longitude == 0 {
		return ""
	}
	return strconv.FormatFloat(l.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', 6, 64)
}

// InboundMessage is one message received from a customer
type InboundMessage struct {
	From     string
	Kind     MessageKind
	Text     string
	Location Location
}

// Transcript records conversation messages
type Transcript interface {
	Record(ctx context.Context, whatsappNumber, sender, message string)
}

// EngineOptions wires the engine's collaborators
type EngineOptions struct {
	Sessions   *SessionManager
	Languages  *LanguageResolver
	History    *History
	Store      storage.Store
	Sender     Sender
	Extractor  Extractor
	Classifier Classifier
	Replier    Replier
	Mirror     Mirror
	Transcript Transcript
	Content    *config.Content
	MenuURL    string
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

// Engine runs the ordering conversation for every WhatsApp number
type Engine struct {
	sessions   *SessionManager
	languages  *LanguageResolver
	history    *History
	store      storage.Store
	sender     Sender
	extractor  Extractor
	classifier Classifier
	replier    Replier
	mirror     Mirror
	transcript Transcript
	content    *config.Content
	menuURL    string
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewEngine creates the conversation engine
func NewEngine(opts EngineOptions) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		sessions:   opts.Sessions,
		languages:  opts.Languages,
		history:    opts.History,
		store:      opts.Store,
		sender:     opts.Sender,
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		replier:    opts.Replier,
		mirror:     opts.Mirror,
		transcript: opts.Transcript,
		content:    opts.Content,
		menuURL:    opts.MenuURL,
		log:        opts.Logger,
		now:        opts.Now,
	}
}

// HandleMessage processes one inbound message. Messages from the same number
// are handled one at a time.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) error {
	number := utils.NormalizeWhatsAppNumber(msg.From)
	if number == "" {
		return errors.New("inbound message without sender")
	}

	unlock := e.sessions.Lock(number)
	defer unlock()

	log := e.log.WithField("whatsapp", number)

	switch msg.Kind {
	case MessageLocation:
		e.handleLocation(ctx, log, number, msg.Location)
	default:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			log.Debug("Ignoring empty message")
			return nil
		}
		e.handleText(ctx, log, number, text)
	}
	return nil
}

func (e *Engine) handleText(ctx context.Context, log logrus.FieldLogger, number, text string) {
	e.record(ctx, number, models.SenderUser, text)
	lang := e.languages.Resolve(number, text)
	kw := e.content.Keywords

	if kw.MenuRequest(text) {
		e.sendMenu(log, number)
		return
	}
	if kw.CancelRequest(text) {
		e.cancelOrder(ctx, log, number)
		return
	}

	session, exists := e.sessions.GetSession(number)
	if !exists && kw.ReceiptRequest(text) {
		e.sendReceipt(ctx, log, number)
		return
	}
	if !exists {
		session = models.NewSession(e.now())
	}

	log = log.WithField("step", session.Step.String())
	var done bool
	switch session.Step {
	case models.StepGreeting:
		e.greeting(ctx, log, number, session, text, lang)
	case models.StepOrderInterest:
		e.orderInterest(ctx, log, number, session, text, lang)
	case models.StepCollectingDetails:
		e.collectDetails(ctx, log, number, session, text, lang)
	case models.StepConfirmingOrder:
		done = e.confirmOrder(ctx, log, number, session, text)
	default:
		log.Warn("Unknown session step, starting over")
		session = models.NewSession(e.now())
	}

	if done {
		e.sessions.DeleteSession(number)
		return
	}
	e.sessions.SaveSession(number, session)
}

// greeting moves silently to OrderInterest on food talk, otherwise chats.
func (e *Engine) greeting(ctx context.Context, log logrus.FieldLogger, number string, s *models.Session, text string, lang models.Language) {
	if e.content.Keywords.OrderIntentRequest(text) {
		s.Advance(models.StepOrderInterest)
		log.Info("Order interest detected")
		return
	}
	e.send(log, number, e.reply(ctx, log, number, text, lang, models.StepGreeting))
}

// orderInterest moves silently to CollectingDetails on agreement, otherwise encourages.
func (e *Engine) orderInterest(ctx context.Context, log logrus.FieldLogger, number string, s *models.Session, text string, lang models.Language) {
	if e.content.Keywords.AffirmativeReply(text) {
		s.Advance(models.StepCollectingDetails)
		log.Info("Collecting order details")
		return
	}
	e.send(log, number, e.reply(ctx, log, number, text, lang, models.StepOrderInterest))
}

// fieldResult is the outcome of extracting one field
type fieldResult struct {
	field models.Field
	value string
	err   error
}

// extractPass tries every unset field against text.
func (e *Engine) extractPass(ctx context.Context, s *models.Session, text string, lang models.Language) []fieldResult {
	var results []fieldResult
	for _, field := range models.ExtractionOrder {
		if s.Has(field) {
			continue
		}
		value, err := e.extractor.ExtractField(ctx, text, field, lang)
		results = append(results, fieldResult{field: field, value: strings.TrimSpace(value), err: err})
	}
	return results
}

// apply stores the extracted values and reports whether any extraction failed.
func apply(log logrus.FieldLogger, s *models.Session, results []fieldResult, source string) bool {
	failed := false
	for _, r := range results {
		if r.err != nil {
			log.WithError(r.err).WithFields(logrus.Fields{"field": r.field, "source": source}).Warn("Field extraction failed")
			failed = true
			continue
		}
		if s.Fill(r.field, r.value) {
			log.WithFields(logrus.Fields{"field": r.field, "source": source}).Debug("Field extracted")
		}
	}
	return failed
}

// collectDetails fills the order from the message and the last bot reply,
// then asks for one missing field or sends the summary.
func (e *Engine) collectDetails(ctx context.Context, log logrus.FieldLogger, number string, s *models.Session, text string, lang models.Language) {
	failed := apply(log, s, e.extractPass(ctx, s, text, lang), "message")

	// the bot's own last reply is mined too; it may carry values the model invented
	if s.MissingAny() {
		if last, ok := e.history.LastAssistant(number); ok {
			if apply(log, s, e.extractPass(ctx, s, last, lang), "assistant") {
				failed = true
			}
		}
	}

	if failed {
		e.send(log, number, MustRender(TplClarify, nil))
		return
	}

	if missing := s.MissingRequired(); len(missing) > 0 {
		// keeps the conversation history current; the reply itself is not sent
		e.reply(ctx, log, number, text, lang, models.StepCollectingDetails)
		log.WithField("field", missing[0]).Info("Prompting for missing field")
		e.send(log, number, FieldPrompt(missing[0]))
		return
	}

	e.send(log, number, MustRender(TplOrderSummary, map[string]string{
		"name":         orNotAvailable(s.Name),
		"items":        s.Items,
		"address":      s.Address,
		"phone":        s.Phone,
		"payment_type": orNotAvailable(s.PaymentType),
	}))
	s.Advance(models.StepConfirmingOrder)
	log.Info("Order summary sent")
}

// confirmOrder places the order on an explicit confirmation. It reports
// whether the session is finished.
func (e *Engine) confirmOrder(ctx context.Context, log logrus.FieldLogger, number string, s *models.Session, text string) bool {
	confirmed, err := e.classifier.ClassifyConfirmation(ctx, text)
	if err != nil {
		log.WithError(err).Warn("Confirmation check failed, treating as not confirmed")
		confirmed = false
	}
	if !confirmed {
		e.send(log, number, MustRender(TplConfirmRetry, nil))
		return false
	}

	now := e.now()
	draft := models.DraftFromSession(number, s)
	order := draft.Order(now)

	if _, err := e.store.CreateOrder(ctx, order); err != nil {
		log.WithError(err).Error("❌ Failed to save order")
	} else {
		log.WithField("order_id", order.ID).Info("✅ Order saved")
	}
	if err := e.mirror.MirrorOrder(ctx, order, models.OrderStatusPending); err != nil {
		log.WithError(err).Warn("Failed to mirror order to sheet")
	}

	e.send(log, number, MustRender(TplOrderConfirmed, map[string]string{
		"restaurant": e.content.Restaurant.Name,
		"address":    draft.Address,
	}))
	if receipt, ok := GenerateReceipt(e.receiptData(ReceiptFromDraft(draft)), now); ok {
		e.send(log, number, receipt)
	}
	return true
}

// reply asks the reply generator for a message, falling back to a fixed text.
func (e *Engine) reply(ctx context.Context, log logrus.FieldLogger, number, text string, lang models.Language, step models.Step) string {
	e.history.Append(number, models.RoleUser, text)

	reply, err := e.replier.GenerateReply(ctx, ai.ReplyRequest{
		History:  e.history.Recent(number),
		Language: lang,
		Step:     step,
	})
	if err != nil {
		log.WithError(err).Warn("Reply generation failed")
		return MustRender(TplReplyFallback, nil)
	}
	e.history.Append(number, models.RoleAssistant, reply)
	return reply
}

func (e *Engine) sendMenu(log logrus.FieldLogger, number string) {
	if e.menuURL != "" {
		e.send(log, number, MustRender(TplMenuAttached, nil))
		err := e.sender.SendDocument(number, e.menuURL, e.content.Restaurant.MenuCaption)
		if err == nil {
			return
		}
		log.WithError(err).Warn("Menu document not delivered, sending text menu")
	}
	e.send(log, number, MustRender(TplMenuFallback, nil))
	e.send(log, number, strings.TrimSpace(e.content.Restaurant.MenuText))
}

// cancelOrder cancels the latest open order and drops any order in progress.
func (e *Engine) cancelOrder(ctx context.Context, log logrus.FieldLogger, number string) {
	discarded := e.sessions.DeleteSession(number)
	if discarded {
		log.Info("Order in progress discarded")
	}

	order, err := e.store.GetLatestActiveOrder(ctx, number)
	if errors.Is(err, storage.ErrNotFound) {
		if discarded {
			e.send(log, number, MustRender(TplOrderCancelled, nil))
		} else {
			e.send(log, number, MustRender(TplNoActiveOrder, nil))
		}
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to look up order to cancel")
		return
	}

	order.Status = models.OrderStatusCancelled
	order.Notes = strings.TrimSpace(order.Notes + " " + cancelNote)
	if err := e.store.UpdateOrder(ctx, order); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("Failed to cancel order")
		return
	}
	if err := e.mirror.UpdateStatus(ctx, number, order.CreatedAt, models.OrderStatusCancelled); err != nil {
		log.WithError(err).Warn("Failed to mirror cancellation to sheet")
	}

	log.WithField("order_id", order.ID).Info("Order cancelled by customer")
	e.send(log, number, MustRender(TplOrderCancelled, nil))
}

func (e *Engine) sendReceipt(ctx context.Context, log logrus.FieldLogger, number string) {
	order, err := e.store.GetLatestOrder(ctx, number)
	if errors.Is(err, storage.ErrNotFound) {
		e.send(log, number, MustRender(TplNoRecentOrder, nil))
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to look up order for receipt")
		return
	}

	if receipt, ok := GenerateReceipt(e.receiptData(ReceiptFromOrder(order)), e.now()); ok {
		e.send(log, number, receipt)
		return
	}
	e.send(log, number, MustRender(TplReceiptNotReady, nil))
}

// receiptData stamps the configured restaurant name on a receipt.
func (e *Engine) receiptData(data ReceiptData) ReceiptData {
	data.Restaurant = e.content.Restaurant.Name
	return data
}

// handleLocation stores the pin as the delivery address.
func (e *Engine) handleLocation(ctx context.Context, log logrus.FieldLogger, number string, loc Location) {
	address := loc.DeliveryAddress()
	if address == "" {
		log.Debug("Ignoring empty location")
		return
	}
	e.record(ctx, number, models.SenderUser, fmt.Sprintf("[location] %s", address))

	session, exists := e.sessions.GetSession(number)
	if !exists {
		session = models.NewSession(e.now())
		session.Advance(models.StepCollectingDetails)
	}
	session.Address = address
	e.sessions.SaveSession(number, session)

	log.WithField("step", session.Step.String()).Info("📍 Location received")
	e.send(log, number, MustRender(TplLocationReceived, map[string]string{"address": address}))
}

// send delivers text once; failures are logged and not retried.
func (e *Engine) send(log logrus.FieldLogger, number, text string) {
	if err := e.sender.SendText(number, text); err != nil {
		log.WithError(err).Error("Failed to send WhatsApp message")
	}
}

func (e *Engine) record(ctx context.Context, number, sender, message string) {
	if e.transcript != nil {
		e.transcript.Record(ctx, number, sender, message)
	}
}

func orNotAvailable(v string) string {
	if v == "" {
		return models.NotAvailable
	}
	return v
}
