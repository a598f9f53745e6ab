package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	GeminiModel       string `mapstructure:"gemini_model"`
	GeminiBaseURL     string `mapstructure:"gemini_base_url"`
	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`
	ScrapeUserAgent   string `mapstructure:"scrape_user_agent"`
	ReportFooter      string `mapstructure:"report_footer"`

	FetchTimeoutSeconds   int64         `mapstructure:"fetch_timeout_seconds"`
	ScrapeTimeoutSeconds  int64         `mapstructure:"scrape_timeout_seconds"`
	ModelTimeoutSeconds   int64         `mapstructure:"model_timeout_seconds"`
	WebhookTimeoutSeconds int64         `mapstructure:"webhook_timeout_seconds"`
	DeliveryDelayMs       int64         `mapstructure:"delivery_delay_ms"`
	FetchTimeout          time.Duration `mapstructure:"-"`
	ScrapeTimeout         time.Duration `mapstructure:"-"`
	ModelTimeout          time.Duration `mapstructure:"-"`
	WebhookTimeout        time.Duration `mapstructure:"-"`
	DeliveryDelay         time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("app_name", "samvad-news-briefing")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("discord_webhook_url", "")
	v.SetDefault("scrape_user_agent", defaultUserAgent)
	v.SetDefault("report_footer", "Strategy Team Agent via Gemini")
	v.SetDefault("fetch_timeout_seconds", 15)
	v.SetDefault("scrape_timeout_seconds", 10)
	v.SetDefault("model_timeout_seconds", 60)
	v.SetDefault("webhook_timeout_seconds", 15)
	v.SetDefault("delivery_delay_ms", 1000)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/reports.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations.
func (c *Config) finalize() error {
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.DiscordWebhookURL = strings.TrimSpace(c.DiscordWebhookURL)
	c.GeminiModel = strings.TrimSpace(c.GeminiModel)

	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}

	seconds := []struct {
		name string
		raw  int64
		dst  *time.Duration
	}{
		{"fetch_timeout_seconds", c.FetchTimeoutSeconds, &c.FetchTimeout},
		{"scrape_timeout_seconds", c.ScrapeTimeoutSeconds, &c.ScrapeTimeout},
		{"model_timeout_seconds", c.ModelTimeoutSeconds, &c.ModelTimeout},
		{"webhook_timeout_seconds", c.WebhookTimeoutSeconds, &c.WebhookTimeout},
		{"storage_ttl_seconds", c.StorageTTLSeconds, &c.StorageTTL},
		{"storage_cleanup_interval_seconds", c.StorageCleanupSeconds, &c.StorageCleanupInterval},
	}
	for _, s := range seconds {
		if s.raw <= 0 {
			return fmt.Errorf("invalid %s (must be positive seconds)", s.name)
		}
		*s.dst = time.Duration(s.raw) * time.Second
	}

	if c.DeliveryDelayMs < 0 {
		return fmt.Errorf("invalid delivery_delay_ms (must not be negative)")
	}
	c.DeliveryDelay = time.Duration(c.DeliveryDelayMs) * time.Millisecond

	return nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.DiscordWebhookURL = mask(c.DiscordWebhookURL)
	return c
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
