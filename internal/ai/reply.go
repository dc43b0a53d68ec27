package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// ReplyRequest is the input to a contextual reply
type ReplyRequest struct {
	History  []models.Turn
	Language models.Language
	Step     models.Step
}

// ReplyGenerator writes branded conversational replies
type ReplyGenerator struct {
	client     *Client
	restaurant config.Restaurant
}

// NewReplyGenerator creates a generator steered by the restaurant content.
func NewReplyGenerator(client *Client, restaurant config.Restaurant) *ReplyGenerator {
	return &ReplyGenerator{client: client, restaurant: restaurant}
}

// GenerateReply returns the model's reply for the conversation so far.
func (g *ReplyGenerator) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	return g.client.complete(ctx, BuildReplyPrompt(g.restaurant, req))
}

// stepInstructions steer the tone for each step. None of them asks the
// model to collect order fields; fixed prompts do that.
var stepInstructions = map[models.Step]string{
	models.StepGreeting: "Greet the user warmly, ask about their mood or what they feel like eating today.\n" +
		"Don't ask for order details yet.\n",
	models.StepOrderInterest: "User is interested in ordering. Suggest popular dishes or ask if they'd like to place an order.\n" +
		"Don't ask for details yet, just encourage them.\n",
	models.StepCollectingDetails: "User wants to place an order. Politely acknowledge what they shared.\n" +
		"If user has already provided any order details, do NOT ask again, just politely confirm.\n",
}

// BuildReplyPrompt assembles the system prompt for a contextual reply.
func BuildReplyPrompt(restaurant config.Restaurant, req ReplyRequest) string {
	var b strings.Builder

	if restaurant.Guardrail != "" {
		b.WriteString(strings.TrimSpace(restaurant.Guardrail))
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimSpace(restaurant.BrandContext))
	b.WriteString("\n")
	b.WriteString(stepInstructions[req.Step])

	lang := req.Language
	if lang == "" {
		lang = models.DefaultLanguage
	}
	fmt.Fprintf(&b, "Reply in %s.\n", lang)

	for _, turn := range req.History {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	return b.String()
}
