package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_KEY", "k")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Session.MaxAuthAttempts != 5 {
		t.Errorf("MaxAuthAttempts = %d, want 5", cfg.Session.MaxAuthAttempts)
	}
	if cfg.Session.ResetDelay != 5*time.Second || cfg.Session.ReconnectDelay != 10*time.Second {
		t.Errorf("delays = %s/%s, want 5s/10s", cfg.Session.ResetDelay, cfg.Session.ReconnectDelay)
	}
	if cfg.Webhook.Timeout != 15*time.Second {
		t.Errorf("Webhook.Timeout = %s, want 15s", cfg.Webhook.Timeout)
	}
	if cfg.Presence.MinTyping != 800*time.Millisecond || cfg.Presence.MaxTyping != 6*time.Second {
		t.Errorf("typing range = [%s, %s]", cfg.Presence.MinTyping, cfg.Presence.MaxTyping)
	}
	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("MAX_AUTH_ATTEMPTS", "3")
	t.Setenv("SESSION_RECONNECT_DELAY", "2500")
	t.Setenv("WEBHOOK_TIMEOUT", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Session.MaxAuthAttempts != 3 {
		t.Errorf("MaxAuthAttempts = %d, want 3", cfg.Session.MaxAuthAttempts)
	}
	if cfg.Session.ReconnectDelay != 2500*time.Millisecond {
		t.Errorf("ReconnectDelay = %s, want 2.5s", cfg.Session.ReconnectDelay)
	}
	if cfg.Webhook.Timeout != MaxWebhookTimeout {
		t.Errorf("Webhook.Timeout = %s, want clamped to %s", cfg.Webhook.Timeout, MaxWebhookTimeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	if _, err := LoadConfig(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("LoadConfig() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestValidatePostgresStoreNeedsDSN(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("SESSION_STORE_DRIVER", "postgres")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("LoadConfig() error = nil, want missing DSN error")
	}
}

func TestClampWebhookTimeout(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{time.Second, MinWebhookTimeout},
		{20 * time.Second, 20 * time.Second},
		{time.Minute, MaxWebhookTimeout},
	}
	for _, tt := range tests {
		if got := ClampWebhookTimeout(tt.in); got != tt.want {
			t.Errorf("ClampWebhookTimeout(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
