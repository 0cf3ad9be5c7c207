package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	OrgName        string
	UseMemoryQueue bool
	WorkerCount    int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// LLM providers
	OpenAIAPIKey   string
	OpenAIModel    string
	BedrockModelID string

	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	AWSEndpointOverride  string
	ConversationQueueURL string

	// Email delivery
	EmailProvider     string // "sendgrid", "ses", or "" (stub)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// Static routing table: lead tier -> destination mailbox
	RouteEnterpriseEmail string
	RouteSMBEmail        string
	RouteIndividualEmail string

	// Dedup guard
	LeadDedupWindow time.Duration

	AdminJWTSecret string

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		OrgName:        getEnv("ORG_NAME", "Calder AI"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ConversationQueueURL: getEnv("CONVERSATION_QUEUE_URL", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", ""))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Calder AI"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Calder AI"),

		RouteEnterpriseEmail: getEnv("ROUTE_ENTERPRISE_EMAIL", ""),
		RouteSMBEmail:        getEnv("ROUTE_SMB_EMAIL", ""),
		RouteIndividualEmail: getEnv("ROUTE_INDIVIDUAL_EMAIL", ""),

		LeadDedupWindow: getEnvAsDuration("LEAD_DEDUP_WINDOW", 300*time.Second),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitPerSec:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 0),
	}
}

// Validate checks the invariants that must hold before any conversation
// begins. A missing LLM provider is the only unrecoverable condition: every
// other collaborator degrades to a stub.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" && c.BedrockModelID == "" {
		return errors.New("config: at least one of OPENAI_API_KEY or BEDROCK_MODEL_ID is required")
	}
	if !c.UseMemoryQueue && c.ConversationQueueURL == "" {
		return errors.New("config: CONVERSATION_QUEUE_URL is required when USE_MEMORY_QUEUE=false")
	}
	if c.LeadDedupWindow <= 0 {
		return errors.New("config: LEAD_DEDUP_WINDOW must be positive")
	}
	return nil
}

// EmailConfigured reports whether a real outbound email provider is set up.
func (c *Config) EmailConfigured() bool {
	switch c.EmailProvider {
	case "sendgrid":
		return c.SendGridAPIKey != "" && c.SendGridFromEmail != ""
	case "ses":
		return c.SESFromEmail != ""
	default:
		return false
	}
}

// RoutingTable builds the static tier -> recipient map. Tiers without a
// configured mailbox are absent from the map.
func (c *Config) RoutingTable() map[string]string {
	table := make(map[string]string, 3)
	if c.RouteEnterpriseEmail != "" {
		table["enterprise"] = c.RouteEnterpriseEmail
	}
	if c.RouteSMBEmail != "" {
		table["smb"] = c.RouteSMBEmail
	}
	if c.RouteIndividualEmail != "" {
		table["individual"] = c.RouteIndividualEmail
	}
	return table
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	// Bare numbers are seconds, matching the historical dedup window knob.
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
