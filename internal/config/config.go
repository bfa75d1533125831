package config

import (
	"time"

	"github.com/spf13/viper"
)

// InsufficientBalancePolicy decides what Consume does when a debit would
// take the prepaid balance below zero.
type InsufficientBalancePolicy string

const (
	PolicyReject        InsufficientBalancePolicy = "reject"
	PolicyAllowNegative InsufficientBalancePolicy = "allow_negative"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Cron          CronConfig
	Ledger        LedgerConfig
	Billing       BillingConfig
	Notifications NotificationConfig
	Resend        ResendConfig
	Twilio        TwilioConfig
	Google        GoogleConfig
	Payments      PaymentsConfig
}

type ServerConfig struct {
	Port string
}

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
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
}

type CronConfig struct {
	Secret      string
	LockTTL     time.Duration
	Concurrency int
}

type LedgerConfig struct {
	InsufficientBalancePolicy InsufficientBalancePolicy
	MaxLockRetries            uint64
}

type BillingConfig struct {
	SettingsCacheTTL time.Duration
	InvoiceDueDays   int
	LookbackMonths   int
}

type NotificationConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	BatchSize    int
}

type ResendConfig struct {
	APIKey string
	From   string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type PaymentsConfig struct {
	BaseURL  string
	TokenTTL time.Duration
}

var envBindings = map[string]string{
	"server.port":                        "PORT",
	"database.host":                      "DATABASE_HOST",
	"database.port":                      "DATABASE_PORT",
	"database.user":                      "DATABASE_USER",
	"database.password":                  "DATABASE_PASSWORD",
	"database.name":                      "DATABASE_NAME",
	"database.ssl_mode":                  "DATABASE_SSL_MODE",
	"redis.host":                         "REDIS_HOST",
	"redis.port":                         "REDIS_PORT",
	"redis.password":                     "REDIS_PASSWORD",
	"redis.db":                           "REDIS_DB",
	"jwt.secret_key":                     "JWT_SECRET_KEY",
	"cron.secret":                        "CRON_SECRET",
	"cron.lock_ttl":                      "CRON_LOCK_TTL",
	"cron.concurrency":                   "CRON_CONCURRENCY",
	"ledger.insufficient_balance_policy": "LEDGER_INSUFFICIENT_BALANCE_POLICY",
	"ledger.max_lock_retries":            "LEDGER_MAX_LOCK_RETRIES",
	"billing.settings_cache_ttl":         "BILLING_SETTINGS_CACHE_TTL",
	"billing.invoice_due_days":           "BILLING_INVOICE_DUE_DAYS",
	"billing.lookback_months":            "BILLING_LOOKBACK_MONTHS",
	"notifications.max_attempts":         "NOTIFICATIONS_MAX_ATTEMPTS",
	"notifications.retry_backoff":        "NOTIFICATIONS_RETRY_BACKOFF",
	"notifications.batch_size":           "NOTIFICATIONS_BATCH_SIZE",
	"resend.api_key":                     "RESEND_API_KEY",
	"resend.from":                        "RESEND_FROM",
	"twilio.account_sid":                 "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":                  "TWILIO_AUTH_TOKEN",
	"twilio.from":                        "TWILIO_FROM",
	"twilio.base_url":                    "TWILIO_BASE_URL",
	"google.client_id":                   "GOOGLE_CLIENT_ID",
	"google.client_secret":               "GOOGLE_CLIENT_SECRET",
	"payments.base_url":                  "PAYMENTS_BASE_URL",
	"payments.token_ttl":                 "PAYMENTS_TOKEN_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "trainerdesk")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cron.lock_ttl", 30*time.Minute)
	v.SetDefault("cron.concurrency", 4)

	v.SetDefault("ledger.insufficient_balance_policy", string(PolicyReject))
	v.SetDefault("ledger.max_lock_retries", 3)

	v.SetDefault("billing.settings_cache_ttl", time.Minute)
	v.SetDefault("billing.invoice_due_days", 14)
	v.SetDefault("billing.lookback_months", 3)

	v.SetDefault("notifications.max_attempts", 3)
	v.SetDefault("notifications.retry_backoff", 15*time.Minute)
	v.SetDefault("notifications.batch_size", 50)

	v.SetDefault("twilio.base_url", "https://api.twilio.com")
	v.SetDefault("payments.base_url", "http://localhost:8080/api/v1/pay")
	v.SetDefault("payments.token_ttl", 7*24*time.Hour)
}

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	setDefaults(v)

	// A missing .env is normal outside local development.
	_ = v.ReadInConfig()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	policy := InsufficientBalancePolicy(v.GetString("ledger.insufficient_balance_policy"))
	if policy != PolicyAllowNegative {
		policy = PolicyReject
	}

	return &Config{
		Server: ServerConfig{Port: v.GetString("server.port")},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{SecretKey: v.GetString("jwt.secret_key")},
		Cron: CronConfig{
			Secret:      v.GetString("cron.secret"),
			LockTTL:     v.GetDuration("cron.lock_ttl"),
			Concurrency: v.GetInt("cron.concurrency"),
		},
		Ledger: LedgerConfig{
			InsufficientBalancePolicy: policy,
			MaxLockRetries:            v.GetUint64("ledger.max_lock_retries"),
		},
		Billing: BillingConfig{
			SettingsCacheTTL: v.GetDuration("billing.settings_cache_ttl"),
			InvoiceDueDays:   v.GetInt("billing.invoice_due_days"),
			LookbackMonths:   v.GetInt("billing.lookback_months"),
		},
		Notifications: NotificationConfig{
			MaxAttempts:  v.GetInt("notifications.max_attempts"),
			RetryBackoff: v.GetDuration("notifications.retry_backoff"),
			BatchSize:    v.GetInt("notifications.batch_size"),
		},
		Resend: ResendConfig{
			APIKey: v.GetString("resend.api_key"),
			From:   v.GetString("resend.from"),
		},
		Twilio: TwilioConfig{
			AccountSID: v.GetString("twilio.account_sid"),
			AuthToken:  v.GetString("twilio.auth_token"),
			From:       v.GetString("twilio.from"),
			BaseURL:    v.GetString("twilio.base_url"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("google.client_id"),
			ClientSecret: v.GetString("google.client_secret"),
		},
		Payments: PaymentsConfig{
			BaseURL:  v.GetString("payments.base_url"),
			TokenTTL: v.GetDuration("payments.token_ttl"),
		},
	}
}
