package config

import (
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"strings"
	"ticketsale/internal/domain/sales"
	"ticketsale/internal/infrastructure/clients"
	"time"
)

const EnvProduction = "production"

type Config struct {
	Env      string
	LogLevel logrus.Level
	HTTPAddr string

	DatabaseURL  string
	RedisAddr    string
	OTLPEndpoint string

	JWTSecret string
	JWTTTL    time.Duration

	PaystackSecret  string
	PaystackBaseURL string
	OpaySecret      string
	FrontendURL     string

	Mail         clients.MailerConfig
	EmailTimeout time.Duration
	BufferDir    string
	AdminEmail   string

	WhatsApp    clients.WhatsAppConfig
	AdminPhones []string

	ReminderSpec     string
	ReminderLocation *time.Location
	ReminderAfter    time.Duration
	MaxWait          time.Duration

	KeepAliveEnabled bool
	KeepAliveURL     string

	TrustProxy bool
	Event      sales.EventDetails

	// Zero values fall back to the package defaults.
	TransferReferenceWindow time.Duration
	TransferTypeWindow      time.Duration
	EmailMaxRetries         int
}

func (c Config) Production() bool {
	return c.Env == EnvProduction
}

// Memory reports whether sales and admins are kept in process memory.
func (c Config) Memory() bool {
	return c.DatabaseURL == ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("PAYSTACK_BASE_URL", clients.DefaultPaystackURL)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_SECURE", false)
	v.SetDefault("EMAIL_TIMEOUT", "30s")
	v.SetDefault("EMAIL_BUFFER_DIR", "email_buffer")
	v.SetDefault("WHATSAPP_ENABLED", false)
	v.SetDefault("WHATSAPP_BASE_URL", clients.DefaultGraphAPIURL)
	v.SetDefault("REMINDER_CRON", "0 10 * * *")
	v.SetDefault("REMINDER_TIMEZONE", "Africa/Lagos")
	v.SetDefault("PAYMENT_REMINDER_HOURS", 24)
	v.SetDefault("MAX_WAIT_HOURS", 72)
	v.SetDefault("KEEP_ALIVE_ENABLED", false)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("EVENT_DATE", "December 22, 2024")
	v.SetDefault("EVENT_TIME", "5:00 PM")
	v.SetDefault("EVENT_VENUE", "National Theatre, Lagos")
}

// Load reads the configuration from the environment, on top of the optional
// YAML file at path. Environment variables win over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	level, err := logrus.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	location, err := time.LoadLocation(v.GetString("REMINDER_TIMEZONE"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REMINDER_TIMEZONE: %w", err)
	}

	cfg := Config{
		Env:          v.GetString("APP_ENV"),
		LogLevel:     level,
		HTTPAddr:     v.GetString("HTTP_ADDR"),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		RedisAddr:    v.GetString("REDIS_ADDR"),
		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		PaystackSecret:  v.GetString("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL: v.GetString("PAYSTACK_BASE_URL"),
		OpaySecret:      v.GetString("OPAY_PRIVATE_KEY"),
		FrontendURL:     v.GetString("FRONTEND_URL"),

		Mail: clients.MailerConfig{
			Host:     v.GetString("EMAIL_HOST"),
			Port:     v.GetInt("EMAIL_PORT"),
			Secure:   v.GetBool("EMAIL_SECURE"),
			User:     v.GetString("EMAIL_USER"),
			Password: v.GetString("EMAIL_PASSWORD"),
			From:     v.GetString("EMAIL_FROM"),
		},
		EmailTimeout: v.GetDuration("EMAIL_TIMEOUT"),
		BufferDir:    v.GetString("EMAIL_BUFFER_DIR"),
		AdminEmail:   v.GetString("ADMIN_EMAIL"),

		WhatsApp: clients.WhatsAppConfig{
			Enabled:       v.GetBool("WHATSAPP_ENABLED"),
			BaseURL:       v.GetString("WHATSAPP_BASE_URL"),
			Token:         v.GetString("WHATSAPP_TOKEN"),
			PhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
		},
		AdminPhones: splitList(v.GetString("ADMIN_WHATSAPP_NUMBERS")),

		ReminderSpec:     v.GetString("REMINDER_CRON"),
		ReminderLocation: location,
		ReminderAfter:    time.Duration(v.GetInt("PAYMENT_REMINDER_HOURS")) * time.Hour,
		MaxWait:          time.Duration(v.GetInt("MAX_WAIT_HOURS")) * time.Hour,

		KeepAliveEnabled: v.GetBool("KEEP_ALIVE_ENABLED"),
		KeepAliveURL:     v.GetString("KEEP_ALIVE_URL"),

		TrustProxy: v.GetBool("TRUST_PROXY"),

		TransferReferenceWindow: v.GetDuration("TRANSFER_REFERENCE_WINDOW"),
		TransferTypeWindow:      v.GetDuration("TRANSFER_TYPE_WINDOW"),
		EmailMaxRetries:         v.GetInt("EMAIL_MAX_RETRIES"),

		Event: sales.EventDetails{
			Date:  v.GetString("EVENT_DATE"),
			Time:  v.GetString("EVENT_TIME"),
			Venue: v.GetString("EVENT_VENUE"),
		},
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}
	if cfg.KeepAliveEnabled && cfg.KeepAliveURL == "" {
		return Config{}, errors.New("KEEP_ALIVE_URL is required when KEEP_ALIVE_ENABLED is set")
	}
	if cfg.Production() && cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
