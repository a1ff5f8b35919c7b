package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// MessageKinds lists the values accepted by rate_limit.exclude_kinds.
var MessageKinds = []string{"command", "text", "voice", "audio", "document", "photo", "sticker", "other"}

// RateLimitConfig holds settings for rate limiting.
type RateLimitConfig struct {
	IntervalMS   int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeKinds []string `yaml:"exclude_kinds" envconfig:"RATE_LIMIT_EXCLUDE_KINDS"`
}

// DialogConfig tunes the decision engine.
type DialogConfig struct {
	HistorySize        int     `yaml:"history_size" envconfig:"DIALOG_HISTORY_SIZE"`
	ToyMatchThreshold  float64 `yaml:"toy_match_threshold"`
	IntentThreshold    float64 `yaml:"intent_threshold"`
	RetrievalThreshold float64 `yaml:"retrieval_threshold"`
	PromoProbability   float64 `yaml:"promo_probability"`
	RetrievalPromo     float64 `yaml:"retrieval_promo_probability"`
	// Seed pins the random source; 0 seeds from the clock.
	Seed uint64 `yaml:"seed" envconfig:"DIALOG_SEED"`
}

// Lemmatizer kinds accepted in DataConfig.Lemmatizer.
const (
	LemmatizerNone       = "none"
	LemmatizerDictionary = "dictionary"
	LemmatizerSnowball   = "snowball"
)

// DataConfig points to the content files loaded at startup.
type DataConfig struct {
	Catalog    string `yaml:"catalog" envconfig:"DATA_CATALOG"`
	Phrasebook string `yaml:"phrasebook" envconfig:"DATA_PHRASEBOOK"`
	Dialogues  string `yaml:"dialogues" envconfig:"DATA_DIALOGUES"`
	Sentiment  string `yaml:"sentiment" envconfig:"DATA_SENTIMENT"`
	Lemmas     string `yaml:"lemmas" envconfig:"DATA_LEMMAS"`
	Lemmatizer string `yaml:"lemmatizer" envconfig:"DATA_LEMMATIZER"`
	// Model is a prebuilt model artifact; empty means fit from the data files at startup.
	Model string `yaml:"model" envconfig:"DATA_MODEL"`
}

// DatabaseConfig holds connection settings of the optional Postgres stats sink.
// An empty Host disables the sink.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	Migrations     string `yaml:"migrations" envconfig:"DB_MIGRATIONS"`
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.Host) != ""
}

// OpsConfig configures the operational HTTP server.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

// Config aggregates the whole application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Dialog    DialogConfig    `yaml:"dialog"`
	Data      DataConfig      `yaml:"data"`
	Database  DatabaseConfig  `yaml:"database"`
	Ops       OpsConfig       `yaml:"ops"`
}

// CoreConfig satisfies the runner's config carrier.
func (c *Config) CoreConfig() *Config { return c }

// Load reads configuration from a YAML file, an optional .env file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults. The Telegram token is only
// checked by RequireTelegram, so the console mode can run without one.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	for i, v := range cfg.RateLimit.ExcludeKinds {
		key := strings.ToLower(strings.TrimSpace(v))
		if key != "" && !slices.Contains(MessageKinds, key) {
			return fmt.Errorf("invalid rate_limit.exclude_kinds value %q; allowed: %s", v, strings.Join(MessageKinds, ", "))
		}
		cfg.RateLimit.ExcludeKinds[i] = key
	}

	if err := normalizeDialog(&cfg.Dialog); err != nil {
		return err
	}
	if err := normalizeDatabase(&cfg.Database); err != nil {
		return err
	}
	return normalizeData(&cfg.Data)
}

// RequireTelegram reports whether the config can drive the Telegram transport.
func RequireTelegram(cfg *Config) error {
	if cfg == nil || strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	return nil
}

func normalizeDialog(d *DialogConfig) error {
	if d.HistorySize == 0 {
		d.HistorySize = 5
	}
	if d.HistorySize < 0 {
		return fmt.Errorf("dialog.history_size must be >= 0")
	}
	if d.ToyMatchThreshold == 0 {
		d.ToyMatchThreshold = 85
	}
	if d.ToyMatchThreshold < 0 || d.ToyMatchThreshold > 100 {
		return fmt.Errorf("dialog.toy_match_threshold must be within [0, 100]")
	}
	if d.IntentThreshold == 0 {
		d.IntentThreshold = 0.65
	}
	if d.RetrievalThreshold == 0 {
		d.RetrievalThreshold = 0.5
	}
	for name, v := range map[string]float64{
		"dialog.intent_threshold":    d.IntentThreshold,
		"dialog.retrieval_threshold": d.RetrievalThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1]", name)
		}
	}
	// Negative probabilities switch promotions off; zero picks the default.
	if d.PromoProbability == 0 {
		d.PromoProbability = 0.2
	}
	if d.RetrievalPromo == 0 {
		d.RetrievalPromo = 0.3
	}
	if d.PromoProbability > 1 || d.RetrievalPromo > 1 {
		return fmt.Errorf("dialog promo probabilities must be <= 1")
	}
	return nil
}

func normalizeDatabase(d *DatabaseConfig) error {
	if !d.Enabled() {
		return nil
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("database.name is required when database.host is set")
	}
	if d.Port == "" {
		d.Port = "5432"
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxConnections <= 0 {
		d.MaxConnections = 4
	}
	if d.Migrations == "" {
		d.Migrations = "migrations"
	}
	return nil
}

func normalizeData(d *DataConfig) error {
	if strings.TrimSpace(d.Catalog) == "" {
		d.Catalog = "data/catalog.yaml"
	}
	if strings.TrimSpace(d.Phrasebook) == "" {
		d.Phrasebook = "data/phrasebook.yaml"
	}
	if strings.TrimSpace(d.Dialogues) == "" {
		d.Dialogues = "data/dialogues.txt"
	}
	if strings.TrimSpace(d.Sentiment) == "" {
		d.Sentiment = "data/sentiment.yaml"
	}
	kind := strings.ToLower(strings.TrimSpace(d.Lemmatizer))
	switch kind {
	case "":
		kind = LemmatizerDictionary
	case LemmatizerNone, LemmatizerDictionary, LemmatizerSnowball:
	default:
		return fmt.Errorf("invalid data.lemmatizer %q; allowed: none, dictionary, snowball", d.Lemmatizer)
	}
	if kind == LemmatizerDictionary && strings.TrimSpace(d.Lemmas) == "" {
		d.Lemmas = "data/lemmas.yaml"
	}
	d.Lemmatizer = kind
	return nil
}
