// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Notifier names accepted in NOTIFIERS.
const (
	NotifierLog      = "log"
	NotifierSMTP     = "smtp"
	NotifierAMQP     = "amqp"
	NotifierTelegram = "telegram"
)

// Telemetry exporters accepted in OTEL_EXPORTER.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// Config holds all configuration for the application.
type Config struct {
	StorageBackend string
	DatabaseURL    string
	DBMaxConns     int32
	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	Location       *time.Location
	CurrencySymbol string

	Notifiers []string
	SMTP      SMTPConfig
	AMQP      AMQPConfig
	Telegram  TelegramConfig

	GeminiAPIKey string

	TelemetryExporter string
	ServiceName       string
}

// SMTPConfig holds mail delivery credentials. Nothing here has a baked-in
// default besides the port.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AMQPConfig selects the broker and routing for published alerts.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// TelegramConfig targets the chat that receives alert copies.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend:    envOr("STORAGE_BACKEND", BackendPostgres),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         envOr("LOG_FORMAT", "console"),
		Location:          time.UTC,
		CurrencySymbol:    envOr("CURRENCY_SYMBOL", "₹"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		TelemetryExporter: envOr("OTEL_EXPORTER", ExporterNone),
		ServiceName:       envOr("OTEL_SERVICE_NAME", "budget-tracker"),
	}

	var errs []string

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Sprintf("TIMEZONE %q is not a valid location", tz))
		} else {
			cfg.Location = loc
		}
	}

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS %q must be a positive number", v))
		} else {
			cfg.DBMaxConns = int32(n)
		}
	}

	cfg.Notifiers = parseList(envOr("NOTIFIERS", NotifierLog))

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     587,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			errs = append(errs, fmt.Sprintf("SMTP_PORT %q is not a valid port", portStr))
		} else {
			cfg.SMTP.Port = port
		}
	}

	cfg.AMQP = AMQPConfig{
		URL:      os.Getenv("AMQP_URL"),
		Exchange: envOr("AMQP_EXCHANGE", "budget.alerts"),
		Queue:    envOr("AMQP_QUEUE", "budget.alerts.notifications"),
	}

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatStr := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); chatStr != "" {
		chatID, err := strconv.ParseInt(strings.TrimSpace(chatStr), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("TELEGRAM_ALERT_CHAT_ID %q is not a number", chatStr))
		} else {
			cfg.Telegram.ChatID = chatID
		}
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return cfg, nil
}

// validate checks required and mutually dependent settings.
func (c *Config) validate() []string {
	var errs []string

	switch c.StorageBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND %q is not supported (postgres, memory)", c.StorageBackend))
	}

	for _, n := range c.Notifiers {
		switch n {
		case NotifierLog:
		case NotifierSMTP:
			if c.SMTP.Host == "" {
				errs = append(errs, "SMTP_HOST is required for the smtp notifier")
			}
			if c.SMTP.From == "" {
				errs = append(errs, "SMTP_FROM is required for the smtp notifier")
			}
		case NotifierAMQP:
			if c.AMQP.URL == "" {
				errs = append(errs, "AMQP_URL is required for the amqp notifier")
			}
		case NotifierTelegram:
			if c.Telegram.BotToken == "" {
				errs = append(errs, "TELEGRAM_BOT_TOKEN is required for the telegram notifier")
			}
			if c.Telegram.ChatID == 0 {
				errs = append(errs, "TELEGRAM_ALERT_CHAT_ID is required for the telegram notifier")
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown notifier %q", n))
		}
	}

	switch c.TelemetryExporter {
	case ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP:
	default:
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not supported", c.TelemetryExporter))
	}

	return errs
}

// HasNotifier reports whether name is in NOTIFIERS.
func (c *Config) HasNotifier(name string) bool {
	return slices.Contains(c.Notifiers, name)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
