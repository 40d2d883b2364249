package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Ledger.Store)
	assert.Equal(t, 3, cfg.Ledger.MaxAttempts)
	assert.Equal(t, "redis", cfg.Events.Bus)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, "captured,paid", cfg.Payment.CreditStatuses)
	assert.Equal(t, 10*time.Second, cfg.Payment.LedgerTimeout)
	assert.Equal(t, int64(1), cfg.Chat.MessageCost)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Chat.DefaultModel)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Reconcile.OrderExpiry)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LEDGER_STORE", "Memory")
	t.Setenv("LEDGER_MAX_ATTEMPTS", "5")
	t.Setenv("LEDGER_RETRY_BASE", "50ms")
	t.Setenv("EVENT_BUS", "nats")
	t.Setenv("CHAT_MESSAGE_COST", "2")
	t.Setenv("PAYMENT_CREDIT_STATUSES", "captured")
	t.Setenv("RECONCILE_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Ledger.Store)
	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Ledger.RetryBase)
	assert.Equal(t, "nats", cfg.Events.Bus)
	assert.Equal(t, int64(2), cfg.Chat.MessageCost)
	assert.Equal(t, "captured", cfg.Payment.CreditStatuses)
	assert.False(t, cfg.Reconcile.Enabled)
	assert.Equal(t, "jwt-secret", cfg.JWT.SecretKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_NAME=ledger_test\nPORT=9090\n"), 0o600))
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ledger_test", cfg.Database.Name)
	assert.Equal(t, "7070", cfg.Server.Port, "environment wins over the file")
}

func TestLoad_LegacyAliases(t *testing.T) {
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("WEBHOOK_SECRET", "whsec-legacy")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.JWT.SecretKey)
	assert.Equal(t, "sk-legacy", cfg.Chat.APIKey)
	assert.Equal(t, "whsec-legacy", cfg.Payment.WebhookSecret)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}, "JWT_SECRET_KEY"},
		{"missing webhook secret", map[string]string{"RAZORPAY_WEBHOOK_SECRET": ""}, "RAZORPAY_WEBHOOK_SECRET"},
		{"unknown store", map[string]string{"LEDGER_STORE": "sqlite"}, "LEDGER_STORE"},
		{"memory store in production", map[string]string{"LEDGER_STORE": "memory", "APP_ENV": "production"}, "not allowed in production"},
		{"unknown bus", map[string]string{"EVENT_BUS": "kafka"}, "EVENT_BUS"},
		{"zero attempts", map[string]string{"LEDGER_MAX_ATTEMPTS": "0"}, "LEDGER_MAX_ATTEMPTS"},
		{"zero message cost", map[string]string{"CHAT_MESSAGE_COST": "0"}, "CHAT_MESSAGE_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
