package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

const extractPromptTmpl = `Aap %s ke WhatsApp order assistant hain. User ka message %s mein ho sakta hai. Sirf aur sirf %s nikaal kar valid JSON mein do. Agar na ho to null return karo.
Example output: {"%s": "value"}
Message: %s
`

var codeFence = regexp.MustCompile("(?m)^```(?:json)?|```$")

// FieldExtractor pulls a single order field out of free text
type FieldExtractor struct {
	client     *Client
	restaurant string
}

// NewFieldExtractor creates an extractor speaking for restaurant.
func NewFieldExtractor(client *Client, restaurant string) *FieldExtractor {
	return &FieldExtractor{client: client, restaurant: restaurant}
}

// ExtractField returns the value of field found in text, or "" when the
// message does not contain it.
func (e *FieldExtractor) ExtractField(ctx context.Context, text string, field models.Field, lang models.Language) (string, error) {
	prompt := fmt.Sprintf(extractPromptTmpl, e.restaurant, lang, field, field, text)

	raw, err := e.client.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return ParseFieldValue(raw, field)
}

// ParseFieldValue decodes the model's JSON answer for field. Code fences
// around the JSON are tolerated.
func ParseFieldValue(raw string, field models.Field) (string, error) {
	clean := strings.TrimSpace(codeFence.ReplaceAllString(strings.TrimSpace(raw), ""))

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return "", fmt.Errorf("%w: %v (raw content: %.200s)", ErrMalformedOutput, err, raw)
	}

	value, ok := obj[string(field)]
	if !ok {
		return "", nil
	}
	return flatten(value)
}

// flatten turns a JSON value into the text stored on the session.
func flatten(value json.RawMessage) (string, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || string(value) == "null" {
		return "", nil
	}

	switch value[0] {
	case '"':
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
			return "", nil
		}
		return s, nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(value, &list); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		parts := make([]string, 0, len(list))
		for _, item := range list {
			part, err := flattenItem(item)
			if err != nil {
				return "", err
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, ", "), nil
	case '{':
		return flattenItem(value)
	default:
		// numbers and booleans, e.g. a phone number returned unquoted
		return string(value), nil
	}
}

// flattenItem renders an ordered item such as {"name": "biryani", "quantity": 2}.
func flattenItem(item json.RawMessage) (string, error) {
	item = bytes.TrimSpace(item)
	if len(item) == 0 || item[0] != '{' {
		return flatten(item)
	}

	var obj struct {
		Name     string          `json:"name"`
		Item     string          `json:"item"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(item, &obj); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	name := strings.TrimSpace(obj.Name)
	if name == "" {
		name = strings.TrimSpace(obj.Item)
	}
	if name == "" {
		return string(item), nil
	}

	qty := strings.Trim(string(bytes.TrimSpace(obj.Quantity)), `"`)
	if _, err := strconv.Atoi(qty); err != nil || qty == "" {
		qty = "1"
	}
	return qty + " x " + name, nil
}
