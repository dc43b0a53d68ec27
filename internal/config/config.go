// Package config loads process settings from the environment and the
// conversation content (keywords, branding, menu text) from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig wraps every validation failure returned by Load and LoadContent.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the process settings
type Config struct {
	Port           string `validate:"required,numeric"`
	Environment    string `validate:"required"`
	UseMemoryStore bool

	Database DatabaseConfig
	Twilio   TwilioConfig
	OpenAI   OpenAIConfig
	Sheets   SheetsConfig

	MenuDocumentURL string `validate:"omitempty,url"`
	ContentFile     string
	SessionIdleTTL  time.Duration `validate:"gte=0"`
	LogLevel        string        `validate:"required,oneof=trace debug info warn warning error"`
	LogFormat       string        `validate:"required,oneof=text json"`
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host                   string
	Port                   string
	User                   string
	Password               string
	Name                   string
	SSLMode                string
	InstanceConnectionName string // Cloud SQL socket, production only
}

// TwilioConfig holds the WhatsApp transport credentials
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string // Format: "whatsapp:+14155238886"
}

// Configured reports whether all Twilio credentials are present.
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.WhatsAppFrom != ""
}

// OpenAIConfig holds the language oracle settings
type OpenAIConfig struct {
	APIKey  string
	Model   string        `validate:"required"`
	BaseURL string        `validate:"omitempty,url"`
	Timeout time.Duration `validate:"gt=0"`
}

// SheetsConfig holds the Google Sheets mirror settings
type SheetsConfig struct {
	SheetID            string
	ServiceAccountJSON string
}

// Configured reports whether the spreadsheet mirror can be enabled.
func (s SheetsConfig) Configured() bool {
	return s.SheetID != "" && s.ServiceAccountJSON != ""
}

// Load reads .env files (when present) and the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		// Missing .env files are fine, the environment may already be set
		_ = godotenv.Load(envFiles...)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv as the variable source.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	openAITimeout, err := time.ParseDuration(env("OPENAI_TIMEOUT", "8s"))
	if err != nil {
		return nil, fmt.Errorf("%w: OPENAI_TIMEOUT: %v", ErrInvalidConfig, err)
	}
	idleTTL, err := time.ParseDuration(env("SESSION_IDLE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("%w: SESSION_IDLE_TTL: %v", ErrInvalidConfig, err)
	}
	useMemory, err := strconv.ParseBool(env("USE_MEMORY_STORE", "false"))
	if err != nil {
		return nil, fmt.Errorf("%w: USE_MEMORY_STORE: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		Port:           env("PORT", "8080"),
		Environment:    env("ENVIRONMENT", "development"),
		UseMemoryStore: useMemory,
		Database: DatabaseConfig{
			Host:                   env("DB_HOST", "localhost"),
			Port:                   env("DB_PORT", "5432"),
			User:                   env("DB_USER", "postgres"),
			Password:               env("DB_PASS", ""),
			Name:                   env("DB_NAME", "alarab"),
			SSLMode:                env("DB_SSLMODE", "disable"),
			InstanceConnectionName: env("INSTANCE_CONNECTION_NAME", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:   env("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    env("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom: env("TWILIO_WHATSAPP_FROM", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:  env("OPENAI_API_KEY", ""),
			Model:   env("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: env("OPENAI_BASE_URL", ""),
			Timeout: openAITimeout,
		},
		Sheets: SheetsConfig{
			SheetID:            env("GOOGLE_SHEET_ID", ""),
			ServiceAccountJSON: env("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		},
		MenuDocumentURL: env("MENU_DOCUMENT_URL", ""),
		ContentFile:     env("CONTENT_FILE", ""),
		SessionIdleTTL:  idleTTL,
		LogLevel:        strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(env("LOG_FORMAT", "text")),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// IsDevelopment reports whether ENVIRONMENT is "development". Only then are
// the unauthenticated test endpoints mounted.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// IsProduction reports whether the service runs on Cloud Run / Cloud SQL.
func (c *Config) IsProduction() bool {
	return c.Database.InstanceConnectionName != ""
}
