package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_EMAIL_VERIFICATION_KEY", "0123456789abcdef")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Order.PendingTTL)
	assert.Equal(t, "@every 1m", cfg.Order.SweepSchedule)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.VerificationCodeTTL)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("MAX_FAILED_LOGINS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_MissingSecrets(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"jwt", "JWT_SECRET"},
		{"verification key", "APP_EMAIL_VERIFICATION_KEY"},
		{"database password", "DB_PASSWORD"},
		{"stripe", "STRIPE_SECRET_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadVerificationKeyLength(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_EMAIL_VERIFICATION_KEY", "short")

	_, err := Load()
	assert.Error(t, err)
}
