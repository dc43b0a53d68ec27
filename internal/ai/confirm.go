package ai

import (
	"context"
	"fmt"
	"strings"
)

const confirmPromptTmpl = `User ne yeh message bheja hai: '%s'
Kya yeh message order confirmation hai? Sirf 'yes' ya 'no' mein jawab dein. Agar user ne order confirm kiya hai (chahe kisi bhi style mein, jaise 'haan', 'theek hai', 'ok', 'confirm', 'yes', 'g han', etc.), to 'yes' likhein. Agar nahi, to 'no' likhein.
Sirf 'yes' ya 'no' return karein, koi aur text nahi.`

// ConfirmationClassifier decides whether a message confirms the order summary
type ConfirmationClassifier struct {
	client *Client
}

// NewConfirmationClassifier creates a classifier.
func NewConfirmationClassifier(client *Client) *ConfirmationClassifier {
	return &ConfirmationClassifier{client: client}
}

// ClassifyConfirmation returns true only for an explicit "yes" from the model.
func (c *ConfirmationClassifier) ClassifyConfirmation(ctx context.Context, text string) (bool, error) {
	answer, err := c.client.complete(ctx, fmt.Sprintf(confirmPromptTmpl, text))
	if err != nil {
		return false, err
	}
	answer = strings.Trim(strings.ToLower(strings.TrimSpace(answer)), ".!'\"")
	return answer == "yes", nil
}
