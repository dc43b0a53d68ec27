package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/alarab-orderbot/internal/ai"
	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
	"github.com/Ananth-NQI/alarab-orderbot/internal/storage"
)

var errOracleDown = errors.New("oracle unavailable")

type sentMessage struct {
	To       string
	Text     string
	Document string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	docErr  error
	textErr error
}

func (f *fakeSender) SendText(to, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.textErr != nil {
		return f.textErr
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: message})
	return nil
}

func (f *fakeSender) SendDocument(to, documentURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return f.docErr
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: caption, Document: documentURL})
	return nil
}

// texts returns the text of everything sent so far and resets the log
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	f.sent = nil
	return out
}

type extractCall struct {
	Text  string
	Field models.Field
	Lang  models.Language
}

// fakeExtractor answers from a per-text table
type fakeExtractor struct {
	mu     sync.Mutex
	values map[string]map[models.Field]string
	errs   map[models.Field]error
	calls  []extractCall
	delay  time.Duration

	inFlight    int
	maxInFlight int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		values: make(map[string]map[models.Field]string),
		errs:   make(map[models.Field]error),
	}
}

func (f *fakeExtractor) on(text string, values map[models.Field]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[text] = values
}

func (f *fakeExtractor) ExtractField(_ context.Context, text string, field models.Field, lang models.Language) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, extractCall{Text: text, Field: field, Lang: lang})
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delay
	err := f.errs[field]
	value := f.values[text][field]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err != nil {
		return "", err
	}
	return value, nil
}

func (f *fakeExtractor) callsFor(text string) []models.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fields []models.Field
	for _, c := range f.calls {
		if c.Text == text {
			fields = append(fields, c.Field)
		}
	}
	return fields
}

type fakeClassifier struct {
	mu        sync.Mutex
	confirmed bool
	err       error
	calls     int
}

func (f *fakeClassifier) ClassifyConfirmation(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.confirmed, f.err
}

type fakeReplier struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []ai.ReplyRequest
}

func (f *fakeReplier) GenerateReply(_ context.Context, req ai.ReplyRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type mirrorCall struct {
	Number    string
	CreatedAt time.Time
	Status    string
	Order     *models.Order
}

type fakeMirror struct {
	mu       sync.Mutex
	mirrored []mirrorCall
	updated  []mirrorCall
	err      error
}

func (f *fakeMirror) MirrorOrder(_ context.Context, order *models.Order, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mirrored = append(f.mirrored, mirrorCall{Number: order.WhatsAppNumber, CreatedAt: order.CreatedAt, Status: status, Order: order})
	return f.err
}

func (f *fakeMirror) UpdateStatus(_ context.Context, number string, createdAt time.Time, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, mirrorCall{Number: number, CreatedAt: createdAt, Status: status})
	return f.err
}

// failingStore refuses to save orders
type failingStore struct {
	storage.Store
	createCalls int
}

func (f *failingStore) CreateOrder(context.Context, *models.Order) (*models.Order, error) {
	f.createCalls++
	return nil, errors.New("database unavailable")
}

type engineFixture struct {
	engine     *Engine
	sender     *fakeSender
	extractor  *fakeExtractor
	classifier *fakeClassifier
	replier    *fakeReplier
	mirror     *fakeMirror
	store      storage.Store
	sessions   *SessionManager
	languages  *LanguageResolver
	history    *History
	hook       *test.Hook
	now        time.Time
}

type fixtureOption func(*EngineOptions)

func withStore(store storage.Store) fixtureOption {
	return func(o *EngineOptions) { o.Store = store }
}

func withMenuURL(url string) fixtureOption {
	return func(o *EngineOptions) { o.MenuURL = url }
}

func withRestaurantName(name string) fixtureOption {
	return func(o *EngineOptions) {
		content := *o.Content
		content.Restaurant.Name = name
		o.Content = &content
	}
}

func newEngineFixture(t *testing.T, opts ...fixtureOption) *engineFixture {
	t.Helper()

	content, err := config.DefaultContent()
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &engineFixture{
		sender:     &fakeSender{},
		extractor:  newFakeExtractor(),
		classifier: &fakeClassifier{},
		replier:    &fakeReplier{reply: "Assalam o Alaikum! Al Arab Restaurant mein khush aamdeed 🍗"},
		mirror:     &fakeMirror{},
		store:      storage.NewMemoryStore(),
		sessions:   NewSessionManager(),
		languages:  NewLanguageResolver(content.Keywords.Language),
		history:    NewHistory(MaxHistoryTurns),
		hook:       hook,
		now:        time.Date(2026, 6, 12, 20, 15, 0, 0, time.UTC),
	}

	eo := EngineOptions{
		Sessions:   f.sessions,
		Languages:  f.languages,
		History:    f.history,
		Store:      f.store,
		Sender:     f.sender,
		Extractor:  f.extractor,
		Classifier: f.classifier,
		Replier:    f.replier,
		Mirror:     f.mirror,
		Content:    content,
		Logger:     logger,
		Now:        func() time.Time { return f.now },
	}
	for _, opt := range opts {
		opt(&eo)
	}
	f.store = eo.Store
	f.engine = NewEngine(eo)
	return f
}

func (f *engineFixture) send(t *testing.T, number, text string) []string {
	t.Helper()
	require.NoError(t, f.engine.HandleMessage(context.Background(), InboundMessage{From: number, Text: text}))
	return f.sender.texts()
}

func (f *engineFixture) sendLocation(t *testing.T, number string, loc Location) []string {
	t.Helper()
	require.NoError(t, f.engine.HandleMessage(context.Background(), InboundMessage{From: number, Kind: MessageLocation, Location: loc}))
	return f.sender.texts()
}

func (f *engineFixture) session(number string) (*models.Session, bool) {
	return f.sessions.GetSession(number)
}

// seedSession puts number straight into step with the given fields
func (f *engineFixture) seedSession(number string, step models.Step, fields map[models.Field]string) {
	s := models.NewSession(f.now)
	s.Step = step
	for field, value := range fields {
		s.Fill(field, value)
	}
	f.sessions.SaveSession(number, s)
}

func (f *engineFixture) hasLog(level logrus.Level, message string) bool {
	for _, e := range f.hook.AllEntries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}
