package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Limites do timeout do webhook
const (
	MinWebhookTimeout = 10 * time.Second
	MaxWebhookTimeout = 30 * time.Second
)

// ErrMissingAPIKey indica que API_KEY não foi configurada
var ErrMissingAPIKey = errors.New("API_KEY is required")

type Config struct {
	App struct {
		Env             string
		Port            string
		Host            string
		ShutdownTimeout time.Duration
	}

	Auth struct {
		APIKey string
	}

	Session struct {
		Dir              string
		StoreDriver      string
		StoreDSN         string
		MaxAuthAttempts  int
		ResetDelay       time.Duration
		ReconnectDelay   time.Duration
		ReconnectTimeout time.Duration
		QRTerminal       bool
		WADebug          bool
	}

	Presence struct {
		ClearTimeout time.Duration
		MinTyping    time.Duration
		MaxTyping    time.Duration
	}

	Webhook struct {
		URL           string
		Secret        string
		Timeout       time.Duration
		MediaMaxBytes int64
	}

	Media struct {
		MaxBytes     int64
		FetchTimeout time.Duration
	}

	Database struct {
		URL       string
		Debug     bool
		Retention time.Duration
	}

	Broker struct {
		URL      string
		Exchange string
		Timeout  time.Duration
	}

	Metrics struct {
		Enabled   bool
		Namespace string
	}

	Logging struct {
		Level          string
		Output         string
		ConsoleFormat  string
		FileFormat     string
		FilePath       string
		FileMaxSize    int
		FileMaxBackups int
		FileMaxAge     int
		FileCompress   bool
		ConsoleColors  bool
	}

	RateLimit struct {
		Requests int
	}

	CORS struct {
		AllowedOrigins []string
	}
}

func LoadConfig() (*Config, error) {
	// Carregar .env se existir
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.Host = getEnv("APP_HOST", "0.0.0.0")
	cfg.App.ShutdownTimeout = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second)

	// Auth
	cfg.Auth.APIKey = getEnv("API_KEY", "")

	// Sessão WhatsApp
	cfg.Session.Dir = getEnv("SESSION_DIR", "./session")
	cfg.Session.StoreDriver = getEnv("SESSION_STORE_DRIVER", "sqlite3")
	cfg.Session.StoreDSN = getEnv("SESSION_STORE_DSN", "")
	cfg.Session.MaxAuthAttempts = getEnvAsInt("MAX_AUTH_ATTEMPTS", 5)
	cfg.Session.ResetDelay = getEnvAsDuration("SESSION_RESET_DELAY", 5*time.Second)
	cfg.Session.ReconnectDelay = getEnvAsDuration("SESSION_RECONNECT_DELAY", 10*time.Second)
	cfg.Session.ReconnectTimeout = getEnvAsDuration("SESSION_RECONNECT_TIMEOUT", 60*time.Second)
	cfg.Session.QRTerminal = getEnvAsBool("QR_TERMINAL", true)
	cfg.Session.WADebug = getEnvAsBool("WA_DEBUG", false)

	// Presença
	cfg.Presence.ClearTimeout = getEnvAsDuration("PRESENCE_CLEAR_TIMEOUT", 10*time.Second)
	cfg.Presence.MinTyping = getEnvAsDuration("PRESENCE_MIN_TYPING", 800*time.Millisecond)
	cfg.Presence.MaxTyping = getEnvAsDuration("PRESENCE_MAX_TYPING", 6000*time.Millisecond)

	// Webhook
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", "")
	cfg.Webhook.Secret = getEnv("WEBHOOK_SECRET", "")
	cfg.Webhook.Timeout = getEnvAsDuration("WEBHOOK_TIMEOUT", 15*time.Second)
	cfg.Webhook.MediaMaxBytes = int64(getEnvAsInt("WEBHOOK_MEDIA_MAX_BYTES", 10*1024*1024))

	// Mídia de saída
	cfg.Media.MaxBytes = int64(getEnvAsInt("MEDIA_MAX_BYTES", 16*1024*1024))
	cfg.Media.FetchTimeout = getEnvAsDuration("MEDIA_FETCH_TIMEOUT", 30*time.Second)

	// Database (journal de mensagens; opcional)
	cfg.Database.URL = getEnv("DATABASE_URL", "")
	cfg.Database.Debug = getEnvAsBool("DATABASE_DEBUG", false)
	cfg.Database.Retention = getEnvAsDuration("MESSAGE_RETENTION", 7*24*time.Hour)

	// Broker (espelho de eventos; opcional)
	cfg.Broker.URL = getEnv("AMQP_URL", "")
	cfg.Broker.Exchange = getEnv("AMQP_EXCHANGE", "wabridge.events")
	cfg.Broker.Timeout = getEnvAsDuration("AMQP_PUBLISH_TIMEOUT", 5*time.Second)

	// Métricas
	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", true)
	cfg.Metrics.Namespace = getEnv("METRICS_NAMESPACE", "wabridge")

	// Logging
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.Output = getEnv("LOG_OUTPUT", "console")
	cfg.Logging.ConsoleFormat = getEnv("LOG_CONSOLE_FORMAT", "console")
	cfg.Logging.FileFormat = getEnv("LOG_FILE_FORMAT", "json")
	cfg.Logging.FilePath = getEnv("LOG_FILE_PATH", "logs/wabridge.log")
	cfg.Logging.FileMaxSize = getEnvAsInt("LOG_FILE_MAX_SIZE", 100)
	cfg.Logging.FileMaxBackups = getEnvAsInt("LOG_FILE_MAX_BACKUPS", 3)
	cfg.Logging.FileMaxAge = getEnvAsInt("LOG_FILE_MAX_AGE", 28)
	cfg.Logging.FileCompress = getEnvAsBool("LOG_FILE_COMPRESS", true)
	cfg.Logging.ConsoleColors = getEnvAsBool("LOG_CONSOLE_COLORS", true)

	// Rate Limit
	cfg.RateLimit.Requests = getEnvAsInt("RATE_LIMIT_REQUESTS", 100)

	// CORS
	cfg.CORS.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejeita configurações inválidas e ajusta valores fora dos limites
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Session.MaxAuthAttempts <= 0 {
		return fmt.Errorf("MAX_AUTH_ATTEMPTS must be positive, got %d", c.Session.MaxAuthAttempts)
	}
	switch c.Session.StoreDriver {
	case "sqlite3":
	case "postgres":
		if c.Session.StoreDSN == "" {
			return fmt.Errorf("SESSION_STORE_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE_DRIVER %q", c.Session.StoreDriver)
	}
	if c.Presence.MinTyping <= 0 || c.Presence.MaxTyping < c.Presence.MinTyping {
		return fmt.Errorf("invalid presence typing range [%s, %s]", c.Presence.MinTyping, c.Presence.MaxTyping)
	}

	c.Webhook.Timeout = ClampWebhookTimeout(c.Webhook.Timeout)
	return nil
}

// ClampWebhookTimeout limita o timeout do webhook a [10s, 30s]
func ClampWebhookTimeout(d time.Duration) time.Duration {
	if d < MinWebhookTimeout {
		return MinWebhookTimeout
	}
	if d > MaxWebhookTimeout {
		return MaxWebhookTimeout
	}
	return d
}

// Address retorna host:porta do servidor HTTP
func (c *Config) Address() string {
	return c.App.Host + ":" + c.App.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration aceita "1500ms", "10s" ou um inteiro em milissegundos
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Implementação da interface ConfigProvider para integração com o logger
func (c *Config) GetLogLevel() string         { return c.Logging.Level }
func (c *Config) GetLogOutput() string        { return c.Logging.Output }
func (c *Config) GetLogConsoleFormat() string { return c.Logging.ConsoleFormat }
func (c *Config) GetLogFileFormat() string    { return c.Logging.FileFormat }
func (c *Config) GetLogFilePath() string      { return c.Logging.FilePath }
func (c *Config) GetLogFileMaxSize() int      { return c.Logging.FileMaxSize }
func (c *Config) GetLogFileMaxBackups() int   { return c.Logging.FileMaxBackups }
func (c *Config) GetLogFileMaxAge() int       { return c.Logging.FileMaxAge }
func (c *Config) GetLogFileCompress() bool    { return c.Logging.FileCompress }
func (c *Config) GetLogConsoleColors() bool   { return c.Logging.ConsoleColors }
