package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"CARBONLINK_APP_NAME",
	"CARBONLINK_APP_ENV",
	"CARBONLINK_APP_PORT",
	"CARBONLINK_DATABASE_HOST",
	"CARBONLINK_DATABASE_PORT",
	"CARBONLINK_DATABASE_PASSWORD",
	"CARBONLINK_DATABASE_SSLMODE",
	"CARBONLINK_DATABASE_MAX_OPEN_CONNS",
	"CARBONLINK_DATABASE_MAX_IDLE_CONNS",
	"CARBONLINK_JWT_SECRET",
	"CARBONLINK_JWT_ALLOW_HEADER_IDENTITY",
	"CARBONLINK_PROVIDER_BASE_URL",
	"CARBONLINK_PROVIDER_MAX_IDENTIFIERS_PER_REQUEST",
	"CARBONLINK_RECONCILIATION_ENABLED",
	"CARBONLINK_RECONCILIATION_BATCH_SIZE",
	"CARBONLINK_RECONCILIATION_INTERVAL",
	"CARBONLINK_NOTIFICATION_CHANNEL",
	"CARBONLINK_EVENT_IDEMPOTENCY_ENABLED",
}

// withCleanEnv clears the config env vars for the test and restores them afterwards
func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "carbonlink-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "carbonlink", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 25, cfg.Reconciliation.BatchSize)
		assert.Equal(t, time.Hour, cfg.Reconciliation.Interval)
		assert.Equal(t, 35*time.Minute, cfg.Reconciliation.LockTTL)
		assert.Equal(t, 10, cfg.Provider.MaxIdentifiersPerRequest)
		assert.Equal(t, NotificationChannelLegacy, cfg.Notification.Channel)
		assert.True(t, cfg.Event.IdempotencyEnabled)
		assert.Equal(t, "carbonlink-backend", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with CARBONLINK prefix", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("CARBONLINK_APP_PORT", "9000")
		os.Setenv("CARBONLINK_DATABASE_HOST", "db.internal")
		os.Setenv("CARBONLINK_RECONCILIATION_BATCH_SIZE", "40")
		os.Setenv("CARBONLINK_RECONCILIATION_INTERVAL", "15m")
		os.Setenv("CARBONLINK_NOTIFICATION_CHANNEL", "inbox")
		os.Setenv("CARBONLINK_EVENT_IDEMPOTENCY_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 40, cfg.Reconciliation.BatchSize)
		assert.Equal(t, 15*time.Minute, cfg.Reconciliation.Interval)
		assert.Equal(t, NotificationChannelInbox, cfg.Notification.Channel)
		assert.False(t, cfg.Event.IdempotencyEnabled)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("CARBONLINK_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("CARBONLINK_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects oversized reconciliation batch", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("CARBONLINK_RECONCILIATION_BATCH_SIZE", "500")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciliation.batch_size")
	})

	t.Run("requires provider url when reconciliation is enabled", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("CARBONLINK_RECONCILIATION_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider.base_url")

		os.Setenv("CARBONLINK_PROVIDER_BASE_URL", "https://provider.example.com")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Reconciliation.Enabled)
	})

	t.Run("rejects unknown notification channel", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("CARBONLINK_NOTIFICATION_CHANNEL", "carrier-pigeon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notification.channel")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		os.Setenv("CARBONLINK_APP_ENV", "production")
		os.Setenv("CARBONLINK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("CARBONLINK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("CARBONLINK_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("CARBONLINK_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("CARBONLINK_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects header identity in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("CARBONLINK_JWT_ALLOW_HEADER_IDENTITY", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "allow_header_identity")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "pass%40word%23123")
		assert.Contains(t, dsn, "sslmode=disable")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
