package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_content.yaml
var defaultContent []byte

// Content is the restaurant specific conversation data
type Content struct {
	Restaurant Restaurant `yaml:"restaurant"`
	Keywords   Keywords   `yaml:"keywords"`
}

// Restaurant carries the branding used in replies and the fallback menu
type Restaurant struct {
	Name         string `yaml:"name" validate:"required"`
	MenuCaption  string `yaml:"menu_caption" validate:"required"`
	BrandContext string `yaml:"brand_context" validate:"required"`
	Guardrail    string `yaml:"guardrail"`
	MenuText     string `yaml:"menu_text" validate:"required"`
}

// Keywords holds the keyword sets that drive the deterministic rules
type Keywords struct {
	Menu        []string         `yaml:"menu" validate:"required,min=1,dive,required"`
	Cancel      []string         `yaml:"cancel" validate:"required,min=1,dive,required"`
	Receipt     []string         `yaml:"receipt" validate:"required,min=1,dive,required"`
	OrderIntent []string         `yaml:"order_intent" validate:"required,min=1,dive,required"`
	Affirmative []string         `yaml:"affirmative" validate:"required,min=1,dive,required"`
	Language    LanguageKeywords `yaml:"language"`
}

// LanguageKeywords lists the cues used to lock a reply language
type LanguageKeywords struct {
	English   []string `yaml:"english" validate:"required,min=1,dive,required"`
	Urdu      []string `yaml:"urdu" validate:"required,min=1,dive,required"`
	RomanUrdu []string `yaml:"roman_urdu" validate:"required,min=1,dive,required"`
}

// DefaultContent returns the embedded Al Arab Restaurant content.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// LoadContent reads content from path, or the embedded default when path is empty.
func LoadContent(path string) (*Content, error) {
	if path == "" {
		return DefaultContent()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return ParseContent(data)
}

// ParseContent decodes and validates YAML content.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	c.Keywords.normalize()
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &c, nil
}

func (k *Keywords) normalize() {
	for _, set := range []*[]string{
		&k.Menu, &k.Cancel, &k.Receipt, &k.OrderIntent, &k.Affirmative,
		&k.Language.English, &k.Language.Urdu, &k.Language.RomanUrdu,
	} {
		for i, w := range *set {
			(*set)[i] = strings.ToLower(strings.TrimSpace(w))
		}
	}
}

// MenuRequest reports whether text asks for the menu.
func (k Keywords) MenuRequest(text string) bool {
	return ContainsAny(text, k.Menu)
}

// CancelRequest reports whether the whole message is a cancel word.
func (k Keywords) CancelRequest(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, w := range k.Cancel {
		if t == w {
			return true
		}
	}
	return false
}

// ReceiptRequest reports whether text asks for a receipt or order status.
func (k Keywords) ReceiptRequest(text string) bool {
	return ContainsAny(text, k.Receipt)
}

// OrderIntentRequest reports whether text shows interest in ordering food.
func (k Keywords) OrderIntentRequest(text string) bool {
	return ContainsAny(text, k.OrderIntent)
}

// AffirmativeReply reports whether text agrees to place an order.
func (k Keywords) AffirmativeReply(text string) bool {
	return ContainsAny(text, k.Affirmative)
}

// ContainsAny is a case-insensitive substring test of text against words.
func ContainsAny(text string, words []string) bool {
	t := strings.ToLower(text)
	for _, w := range words {
		if w != "" && strings.Contains(t, w) {
			return true
		}
	}
	return false
}
