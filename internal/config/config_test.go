package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("SIGNING_SECRET", "sign")
	t.Setenv("SWEEP_INTERVAL", "15s")
	t.Setenv("NOTIFICATIONS_ENABLED", "false")
	t.Setenv("PUBLIC_BASE_URL", "https://vote.example.com/")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Worker.SweepInterval != 15*time.Second {
		t.Fatalf("expected 15s sweep interval, got %s", cfg.Worker.SweepInterval)
	}
	if cfg.Notify.Enabled {
		t.Fatalf("expected notifications disabled")
	}
	if cfg.Notify.BaseURL != "https://vote.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Notify.BaseURL)
	}
	if cfg.Notify.MaxAttempts != 7 {
		t.Fatalf("expected max attempts 7, got %d", cfg.Notify.MaxAttempts)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SIGNING_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing secrets to fail")
	}
}

func TestValidateQueueTransportNeedsRedis(t *testing.T) {
	cfg := &Config{
		Auth:   AuthConfig{JWTSecret: "a", SigningSecret: "b"},
		Mail:   MailConfig{Transport: "queue"},
		Worker: WorkerConfig{SweepInterval: time.Second, DeliveryInterval: time.Second, LeaseTTL: time.Minute},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected queue transport without redis to fail")
	}
	cfg.Redis.Addr = "localhost:6379"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDeliveryTimeoutFitsLease(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{JWTSecret: "a", SigningSecret: "b"},
		Mail: MailConfig{Transport: "log"},
		Worker: WorkerConfig{
			SweepInterval:    time.Hour,
			DeliveryInterval: time.Hour,
			DeliveryTimeout:  5 * time.Minute,
			LeaseTTL:         2 * time.Minute,
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected a delivery timeout beyond the lease to fail")
	}
	cfg.Worker.DeliveryTimeout = 30 * time.Second
	if err := cfg.Validate(); err != nil {
		t.Fatalf("intervals above the lease are capped at run time: %v", err)
	}
	cfg.Worker.LeaseTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero lease TTL to fail")
	}
}
