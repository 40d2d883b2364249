package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Payment   PaymentConfig
	Ledger    LedgerConfig
	Chat      ChatConfig
	Events    EventsConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// DSN is the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string { return c.Host + ":" + c.Port }

type JWTConfig struct {
	SecretKey string
}

type PaymentConfig struct {
	KeyID          string
	KeySecret      string
	WebhookSecret  string
	BaseURL        string
	Currency       string
	Timeout        time.Duration
	CreditStatuses string
	LedgerTimeout  time.Duration
}

type LedgerConfig struct {
	// Store is "postgres" or "memory".
	Store       string
	MaxAttempts int
	RetryBase   time.Duration
	RetryJitter time.Duration
}

type ChatConfig struct {
	APIKey             string
	BaseURL            string
	Timeout            time.Duration
	MessageCost        int64
	DefaultModel       string
	DefaultMaxTokens   int
	DefaultTemperature float64
}

type EventsConfig struct {
	// Bus is "redis", "nats" or "none".
	Bus     string
	NatsURL string
}

type ReconcileConfig struct {
	Enabled     bool
	Interval    time.Duration
	BatchSize   int
	MinAge      time.Duration
	Workers     int
	OrderExpiry time.Duration
}

var defaults = map[string]any{
	"app_env": "development",

	"port":                    "8080",
	"server_read_timeout":     15 * time.Second,
	"server_write_timeout":    30 * time.Second,
	"server_idle_timeout":     60 * time.Second,
	"server_request_timeout":  60 * time.Second,
	"server_shutdown_timeout": 30 * time.Second,
	"cors_allowed_origins":    "https://*,http://*",

	"database_host":              "localhost",
	"database_port":              "5432",
	"database_user":              "postgres",
	"database_password":          "password",
	"database_name":              "bhavisyaji",
	"database_ssl_mode":          "disable",
	"database_max_open_conns":    25,
	"database_max_idle_conns":    5,
	"database_conn_max_lifetime": 5 * time.Minute,
	"database_auto_migrate":      true,

	"redis_host":     "localhost",
	"redis_port":     "6379",
	"redis_password": "",
	"redis_db":       0,

	"razorpay_base_url":       "https://api.razorpay.com",
	"payment_currency":        "INR",
	"razorpay_timeout":        10 * time.Second,
	"payment_credit_statuses": "captured,paid",
	"webhook_ledger_timeout":  10 * time.Second,

	"ledger_store":        "postgres",
	"ledger_max_attempts": 3,
	"ledger_retry_base":   25 * time.Millisecond,
	"ledger_retry_jitter": 20 * time.Millisecond,

	"llm_base_url":             "https://api.openai.com",
	"llm_timeout":              30 * time.Second,
	"chat_message_cost":        1,
	"chat_default_model":       "gpt-3.5-turbo",
	"chat_default_max_tokens":  512,
	"chat_default_temperature": 0.7,

	"event_bus": "redis",
	"nats_url":  "nats://127.0.0.1:4222",

	"reconcile_enabled":      true,
	"reconcile_interval":     5 * time.Minute,
	"reconcile_batch":        50,
	"reconcile_min_age":      10 * time.Minute,
	"reconcile_workers":      5,
	"reconcile_order_expiry": 24 * time.Hour,
}

// Load reads envFile (if it exists) and the environment. Environment
// variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	v.AutomaticEnv()

	// Older deployments used these names.
	v.BindEnv("jwt_secret_key", "JWT_SECRET_KEY", "JWT_SECRET")
	v.BindEnv("llm_api_key", "LLM_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("razorpay_webhook_secret", "RAZORPAY_WEBHOOK_SECRET", "WEBHOOK_SECRET")

	cfg := &Config{
		Env: strings.ToLower(v.GetString("app_env")),
		Server: ServerConfig{
			Port:            v.GetString("port"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			IdleTimeout:     v.GetDuration("server_idle_timeout"),
			RequestTimeout:  v.GetDuration("server_request_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
			AllowedOrigins:  splitList(v.GetString("cors_allowed_origins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database_host"),
			Port:            v.GetString("database_port"),
			User:            v.GetString("database_user"),
			Password:        v.GetString("database_password"),
			Name:            v.GetString("database_name"),
			SSLMode:         v.GetString("database_ssl_mode"),
			MaxOpenConns:    v.GetInt("database_max_open_conns"),
			MaxIdleConns:    v.GetInt("database_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database_conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database_auto_migrate"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		JWT: JWTConfig{SecretKey: v.GetString("jwt_secret_key")},
		Payment: PaymentConfig{
			KeyID:          v.GetString("razorpay_key_id"),
			KeySecret:      v.GetString("razorpay_key_secret"),
			WebhookSecret:  v.GetString("razorpay_webhook_secret"),
			BaseURL:        v.GetString("razorpay_base_url"),
			Currency:       strings.ToUpper(v.GetString("payment_currency")),
			Timeout:        v.GetDuration("razorpay_timeout"),
			CreditStatuses: v.GetString("payment_credit_statuses"),
			LedgerTimeout:  v.GetDuration("webhook_ledger_timeout"),
		},
		Ledger: LedgerConfig{
			Store:       strings.ToLower(v.GetString("ledger_store")),
			MaxAttempts: v.GetInt("ledger_max_attempts"),
			RetryBase:   v.GetDuration("ledger_retry_base"),
			RetryJitter: v.GetDuration("ledger_retry_jitter"),
		},
		Chat: ChatConfig{
			APIKey:             v.GetString("llm_api_key"),
			BaseURL:            v.GetString("llm_base_url"),
			Timeout:            v.GetDuration("llm_timeout"),
			MessageCost:        v.GetInt64("chat_message_cost"),
			DefaultModel:       v.GetString("chat_default_model"),
			DefaultMaxTokens:   v.GetInt("chat_default_max_tokens"),
			DefaultTemperature: v.GetFloat64("chat_default_temperature"),
		},
		Events: EventsConfig{
			Bus:     strings.ToLower(v.GetString("event_bus")),
			NatsURL: v.GetString("nats_url"),
		},
		Reconcile: ReconcileConfig{
			Enabled:     v.GetBool("reconcile_enabled"),
			Interval:    v.GetDuration("reconcile_interval"),
			BatchSize:   v.GetInt("reconcile_batch"),
			MinAge:      v.GetDuration("reconcile_min_age"),
			Workers:     v.GetInt("reconcile_workers"),
			OrderExpiry: v.GetDuration("reconcile_order_expiry"),
		},
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Payment.WebhookSecret == "" {
		errs = append(errs, errors.New("RAZORPAY_WEBHOOK_SECRET is required"))
	}
	if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
		errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required"))
	}
	switch c.Ledger.Store {
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("DATABASE_HOST and DATABASE_NAME are required for the postgres ledger"))
		}
	case "memory":
		if c.IsProduction() {
			errs = append(errs, errors.New("LEDGER_STORE=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("LEDGER_STORE %q must be postgres or memory", c.Ledger.Store))
	}
	switch c.Events.Bus {
	case "redis", "none":
	case "nats":
		if c.Events.NatsURL == "" {
			errs = append(errs, errors.New("NATS_URL is required when EVENT_BUS=nats"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENT_BUS %q must be redis, nats or none", c.Events.Bus))
	}
	if c.Ledger.MaxAttempts < 1 {
		errs = append(errs, errors.New("LEDGER_MAX_ATTEMPTS must be at least 1"))
	}
	if c.Chat.MessageCost < 1 {
		errs = append(errs, errors.New("CHAT_MESSAGE_COST must be at least 1"))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
