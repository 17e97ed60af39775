package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notification channels
const (
	NotificationChannelLegacy = "legacy"
	NotificationChannelInbox  = "inbox"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Log            LogConfig
	Event          EventConfig
	HTTP           HTTPConfig
	Telemetry      TelemetryConfig
	Provider       ProviderConfig
	Reconciliation ReconciliationConfig
	Notification   NotificationConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret string
	Issuer string
	// AllowHeaderIdentity accepts X-User-ID / X-Company-ID headers when no token is sent.
	// Only honoured outside production.
	AllowHeaderIdentity bool
}

// EventConfig holds event processing configuration
type EventConfig struct {
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	DBTraceEnabled    bool
	DBLogFullSQL      bool
}

// ProviderConfig holds settings for the external financial-data provider
type ProviderConfig struct {
	BaseURL                  string
	APIKey                   string
	Timeout                  time.Duration
	MaxIdentifiersPerRequest int // provider's per-request identifier cap
	MaxConcurrentRequests    int
}

// ReconciliationConfig holds settings for the reconciliation job
type ReconciliationConfig struct {
	Enabled    bool
	BatchSize  int
	Interval   time.Duration
	RunTimeout time.Duration
	CursorKey  string
	LockTTL    time.Duration
}

// NotificationConfig selects how connection notifications are delivered
type NotificationConfig struct {
	Channel  string // legacy or inbox
	MailFrom string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with CARBONLINK_ prefix (e.g., CARBONLINK_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/carbonlink")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetDefault("event.idempotency_enabled", true)

	v.SetEnvPrefix("CARBONLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:              v.GetString("jwt.secret"),
			Issuer:              v.GetString("jwt.issuer"),
			AllowHeaderIdentity: v.GetBool("jwt.allow_header_identity"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			IdempotencyEnabled: v.GetBool("event.idempotency_enabled"),
			IdempotencyTTL:     v.GetDuration("event.idempotency_ttl"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
		Provider: ProviderConfig{
			BaseURL:                  v.GetString("provider.base_url"),
			APIKey:                   v.GetString("provider.api_key"),
			Timeout:                  v.GetDuration("provider.timeout"),
			MaxIdentifiersPerRequest: v.GetInt("provider.max_identifiers_per_request"),
			MaxConcurrentRequests:    v.GetInt("provider.max_concurrent_requests"),
		},
		Reconciliation: ReconciliationConfig{
			Enabled:    v.GetBool("reconciliation.enabled"),
			BatchSize:  v.GetInt("reconciliation.batch_size"),
			Interval:   v.GetDuration("reconciliation.interval"),
			RunTimeout: v.GetDuration("reconciliation.run_timeout"),
			CursorKey:  v.GetString("reconciliation.cursor_key"),
			LockTTL:    v.GetDuration("reconciliation.lock_ttl"),
		},
		Notification: NotificationConfig{
			Channel:  v.GetString("notification.channel"),
			MailFrom: v.GetString("notification.mail_from"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "carbonlink-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "carbonlink"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "carbonlink"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Event.IdempotencyTTL == 0 {
		cfg.Event.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 30 * time.Second
	}
	if cfg.Provider.MaxIdentifiersPerRequest == 0 {
		cfg.Provider.MaxIdentifiersPerRequest = 10
	}
	if cfg.Provider.MaxConcurrentRequests == 0 {
		cfg.Provider.MaxConcurrentRequests = 2
	}
	// Kept small: the provider becomes unreliable under large fan-out
	if cfg.Reconciliation.BatchSize == 0 {
		cfg.Reconciliation.BatchSize = 25
	}
	if cfg.Reconciliation.Interval == 0 {
		cfg.Reconciliation.Interval = time.Hour
	}
	if cfg.Reconciliation.RunTimeout == 0 {
		cfg.Reconciliation.RunTimeout = 30 * time.Minute
	}
	if cfg.Reconciliation.CursorKey == "" {
		cfg.Reconciliation.CursorKey = "recommendation_reconciliation_cursor"
	}
	if cfg.Reconciliation.LockTTL == 0 {
		cfg.Reconciliation.LockTTL = cfg.Reconciliation.RunTimeout + 5*time.Minute
	}
	if cfg.Notification.Channel == "" {
		cfg.Notification.Channel = NotificationChannelLegacy
	}
	if cfg.Notification.MailFrom == "" {
		cfg.Notification.MailFrom = "no-reply@carbonlink.io"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.JWT.AllowHeaderIdentity {
			return fmt.Errorf("jwt.allow_header_identity must be false in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Reconciliation.BatchSize < 1 || c.Reconciliation.BatchSize > 100 {
		return fmt.Errorf("reconciliation.batch_size must be between 1 and 100, got %d", c.Reconciliation.BatchSize)
	}
	if c.Provider.MaxIdentifiersPerRequest < 1 {
		return fmt.Errorf("provider.max_identifiers_per_request must be positive")
	}
	if c.Provider.MaxConcurrentRequests < 1 {
		return fmt.Errorf("provider.max_concurrent_requests must be positive")
	}
	if c.Reconciliation.Enabled && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required when reconciliation is enabled")
	}

	switch c.Notification.Channel {
	case NotificationChannelLegacy, NotificationChannelInbox:
	default:
		return fmt.Errorf("notification.channel must be %q or %q, got %q",
			NotificationChannelLegacy, NotificationChannelInbox, c.Notification.Channel)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
