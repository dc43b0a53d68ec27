package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// fakeOracle serves chat completions with canned answers
type fakeOracle struct {
	mu      sync.Mutex
	answers []string
	prompts []string
	delay   time.Duration
	status  int
}

func (f *fakeOracle) handler(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[0].Content)
	}
	answer := ""
	if len(f.answers) > 0 {
		answer = f.answers[0]
		f.answers = f.answers[1:]
	}
	delay, status := f.delay, f.status
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func (f *fakeOracle) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func setupClient(t *testing.T, oracle *fakeOracle, timeout time.Duration) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", oracle.handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL + "/v1",
		Timeout: timeout,
	})
}

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field models.Field
		want  string
	}{
		{"plain string", `{"name": "Ali"}`, models.FieldName, "Ali"},
		{"fenced json", "```json\n{\"address\": \"Block 15, Johar\"}\n```", models.FieldAddress, "Block 15, Johar"},
		{"null value", `{"phone": null}`, models.FieldPhone, ""},
		{"null as text", `{"phone": "null"}`, models.FieldPhone, ""},
		{"missing key", `{"other": "x"}`, models.FieldName, ""},
		{"number", `{"phone": 3001234567}`, models.FieldPhone, "3001234567"},
		{"string list", `{"items": ["biryani", "raita"]}`, models.FieldItems, "biryani, raita"},
		{"item objects", `{"items": [{"name": "Zinger Burger", "quantity": 2}, {"item": "Fries"}]}`, models.FieldItems, "2 x Zinger Burger, 1 x Fries"},
		{"single object", `{"items": {"name": "Shawarma", "quantity": "3"}}`, models.FieldItems, "3 x Shawarma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldValue(tt.raw, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldValue_Malformed(t *testing.T) {
	for _, raw := range []string{"Ali", `{"name": }`, "[1, 2]"} {
		_, err := ParseFieldValue(raw, models.FieldName)
		assert.ErrorIs(t, err, ErrMalformedOutput, raw)
	}
}

func TestFieldExtractor_ExtractField(t *testing.T) {
	oracle := &fakeOracle{answers: []string{`{"name": "Ahmed"}`}}
	extractor := NewFieldExtractor(setupClient(t, oracle, time.Second), "Al Arab Restaurant")

	got, err := extractor.ExtractField(context.Background(), "mera naam Ahmed hai", models.FieldName, models.LanguageRomanUrdu)
	require.NoError(t, err)
	assert.Equal(t, "Ahmed", got)

	prompt := oracle.lastPrompt()
	assert.Contains(t, prompt, "Al Arab Restaurant")
	assert.Contains(t, prompt, "Roman Urdu")
	assert.Contains(t, prompt, `{"name": "value"}`)
	assert.Contains(t, prompt, "mera naam Ahmed hai")
}

func TestFieldExtractor_Malformed(t *testing.T) {
	oracle := &fakeOracle{answers: []string{"sorry, I cannot do that"}}
	extractor := NewFieldExtractor(setupClient(t, oracle, time.Second), "Al Arab Restaurant")

	_, err := extractor.ExtractField(context.Background(), "hi", models.FieldPhone, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestConfirmationClassifier(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"yes", true},
		{" Yes. ", true},
		{"no", false},
		{"yes, the user confirmed", false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			oracle := &fakeOracle{answers: []string{tt.answer}}
			classifier := NewConfirmationClassifier(setupClient(t, oracle, time.Second))

			got, err := classifier.ClassifyConfirmation(context.Background(), "g han")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, oracle.lastPrompt(), "'g han'")
		})
	}
}

func TestReplyGenerator(t *testing.T) {
	oracle := &fakeOracle{answers: []string{"Assalam o Alaikum! Al Arab Restaurant mein khush aamdeed 🍗"}}
	restaurant := config.Restaurant{
		Name:         "Al Arab Restaurant",
		BrandContext: "You are the official WhatsApp assistant for Al Arab Restaurant.",
		Guardrail:    "Sirf restaurant ke sawal.",
	}
	gen := NewReplyGenerator(setupClient(t, oracle, time.Second), restaurant)

	reply, err := gen.GenerateReply(context.Background(), ReplyRequest{
		History: []models.Turn{
			{Role: models.RoleUser, Content: "salam"},
		},
		Language: models.LanguageEnglish,
		Step:     models.StepGreeting,
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "Al Arab Restaurant")

	prompt := oracle.lastPrompt()
	assert.Contains(t, prompt, "Sirf restaurant ke sawal.")
	assert.Contains(t, prompt, "Greet the user warmly")
	assert.Contains(t, prompt, "Reply in English.")
	assert.Contains(t, prompt, "user: salam")
}

func TestBuildReplyPrompt_DefaultsLanguage(t *testing.T) {
	prompt := BuildReplyPrompt(config.Restaurant{BrandContext: "ctx"}, ReplyRequest{Step: models.StepCollectingDetails})
	assert.Contains(t, prompt, "Reply in Roman Urdu.")
	assert.Contains(t, prompt, "do NOT ask again")
}

func TestClient_Errors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		oracle := &fakeOracle{answers: []string{"yes"}, delay: 500 * time.Millisecond}
		classifier := NewConfirmationClassifier(setupClient(t, oracle, 20*time.Millisecond))

		start := time.Now()
		_, err := classifier.ClassifyConfirmation(context.Background(), "haan")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 400*time.Millisecond)
	})

	t.Run("server error", func(t *testing.T) {
		oracle := &fakeOracle{status: http.StatusInternalServerError}
		gen := NewReplyGenerator(setupClient(t, oracle, time.Second), config.Restaurant{})

		_, err := gen.GenerateReply(context.Background(), ReplyRequest{})
		assert.Error(t, err)
	})

	t.Run("empty answer", func(t *testing.T) {
		oracle := &fakeOracle{answers: []string{"   "}}
		gen := NewReplyGenerator(setupClient(t, oracle, time.Second), config.Restaurant{})

		_, err := gen.GenerateReply(context.Background(), ReplyRequest{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
