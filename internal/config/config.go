package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Stripe holds the payment vendor configuration.
type Stripe struct {
	SecretKey         string
	WebhookSecret     string
	ProPriceID        string
	EnterprisePriceID string
	// InsecureWebhooks allows parsing webhook events without signature
	// verification when no signing secret is set. Local development only.
	InsecureWebhooks bool
}

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port     string
	DBPath   string
	BaseURL  string
	LogLevel string

	RapidAPIKey  string
	GeminiAPIKey string
	Stripe       Stripe

	AdminUsername     string
	AdminPasswordHash string
}

// Load reads configuration from the environment (and a .env file when
// present). The three vendor credentials are required; their absence is a
// startup failure, not a per-request error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:         fallback(os.Getenv("CLIPCHAT_PORT"), "8080"),
		DBPath:       fallback(os.Getenv("CLIPCHAT_DB_PATH"), "clipchat.db"),
		BaseURL:      strings.TrimSpace(os.Getenv("CLIPCHAT_BASE_URL")),
		LogLevel:     os.Getenv("CLIPCHAT_LOG_LEVEL"),
		RapidAPIKey:  strings.TrimSpace(os.Getenv("RAPIDAPI_KEY")),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Stripe: Stripe{
			SecretKey:         strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
			WebhookSecret:     strings.TrimSpace(os.Getenv("STRIPE_WEBHOOK_SECRET")),
			ProPriceID:        os.Getenv("STRIPE_PRO_PRICE_ID"),
			EnterprisePriceID: os.Getenv("STRIPE_ENTERPRISE_PRICE_ID"),
			InsecureWebhooks:  os.Getenv("CLIPCHAT_INSECURE_WEBHOOKS") == "1",
		},
		AdminUsername:     strings.TrimSpace(os.Getenv("CLIPCHAT_ADMIN_USERNAME")),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("CLIPCHAT_ADMIN_PASSWORD_HASH")),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)
	}

	if cfg.RapidAPIKey == "" {
		return Config{}, errors.New("RAPIDAPI_KEY is required")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.Stripe.SecretKey == "" {
		return Config{}, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.Stripe.WebhookSecret == "" && !cfg.Stripe.InsecureWebhooks {
		return Config{}, errors.New("STRIPE_WEBHOOK_SECRET is required unless CLIPCHAT_INSECURE_WEBHOOKS=1")
	}

	return cfg, nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
