package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LeadDedupWindow != 300*time.Second {
		t.Errorf("expected default dedup window 300s, got %s", cfg.LeadDedupWindow)
	}
	if !cfg.UseMemoryQueue {
		t.Error("expected memory queue by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LEAD_DEDUP_WINDOW", "10")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.LeadDedupWindow != 10*time.Second {
		t.Errorf("expected bare seconds parsing, got %s", cfg.LeadDedupWindow)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
}

func TestLoadDurationFormats(t *testing.T) {
	t.Setenv("LEAD_DEDUP_WINDOW", "2m")
	if got := Load().LeadDedupWindow; got != 2*time.Minute {
		t.Errorf("expected 2m, got %s", got)
	}

	t.Setenv("LEAD_DEDUP_WINDOW", "not-a-duration")
	if got := Load().LeadDedupWindow; got != 300*time.Second {
		t.Errorf("expected fallback to default, got %s", got)
	}
}

func TestLoadHTTPEdgeKnobs(t *testing.T) {
	cfg := Load()
	if cfg.CORSAllowedOrigins != nil {
		t.Errorf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitPerSec != 0 {
		t.Errorf("expected rate limiting off by default, got %v", cfg.RateLimitPerSec)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.calder.example, https://widget.calder.example ,")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg = Load()
	want := []string{"https://app.calder.example", "https://widget.calder.example"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.CORSAllowedOrigins)
	}
	for i, origin := range want {
		if cfg.CORSAllowedOrigins[i] != origin {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], origin)
		}
	}
	if cfg.RateLimitPerSec != 2.5 {
		t.Errorf("expected rate 2.5, got %v", cfg.RateLimitPerSec)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("expected burst 10, got %d", cfg.RateLimitBurst)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{UseMemoryQueue: true, LeadDedupWindow: time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when no LLM provider configured")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.UseMemoryQueue = false
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when SQS queue URL missing")
	}

	cfg.ConversationQueueURL = "http://localhost:4566/000000000000/conv"
	cfg.LeadDedupWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive dedup window")
	}
}

func TestEmailConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.EmailConfigured() {
		t.Error("stub provider should report not configured")
	}

	cfg = &Config{EmailProvider: "sendgrid", SendGridAPIKey: "key", SendGridFromEmail: "ai@calder.example"}
	if !cfg.EmailConfigured() {
		t.Error("sendgrid with key and from should be configured")
	}

	cfg = &Config{EmailProvider: "ses"}
	if cfg.EmailConfigured() {
		t.Error("ses without from address should not be configured")
	}
}

func TestRoutingTable(t *testing.T) {
	cfg := &Config{
		RouteEnterpriseEmail: "enterprise@calder.example",
		RouteIndividualEmail: "support@calder.example",
	}
	table := cfg.RoutingTable()

	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table))
	}
	if table["enterprise"] != "enterprise@calder.example" {
		t.Errorf("unexpected enterprise route: %s", table["enterprise"])
	}
	if _, ok := table["smb"]; ok {
		t.Error("unconfigured smb tier should be absent")
	}
}
