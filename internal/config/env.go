package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	Port             string
	IngestSecret     string
	IngestFilter     string
	PromptConfigPath string
	Gemini           GeminiEnvConfig
	Tweet            TweetEnvConfig
	Pushover         PushoverEnvConfig
	SMTP             SMTPEnvConfig
	Dedupe           DedupeEnvConfig
	OTel             OTelEnvConfig
}

type GeminiEnvConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
}

type TweetEnvConfig struct {
	OEmbedBaseURL      string
	SyndicationBaseURL string
	HTTPTimeout        time.Duration
	UserAgent          string
}

type PushoverEnvConfig struct {
	Token       string
	UserKey     string
	Endpoint    string
	HTTPTimeout time.Duration
}

type SMTPEnvConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	From               string
	To                 string
	TLSMode            string
	InsecureSkipVerify bool
}

type DedupeEnvConfig struct {
	// Backend is one of "memory", "sqlite", "redis" or "off".
	Backend         string
	TTL             time.Duration
	SQLitePath      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string
	CleanupSchedule string
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	geminiModel := strings.TrimSpace(envString("GEMINI_MODEL", ""))
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	return EnvConfig{
		Port:             envString("PORT", "8080"),
		IngestSecret:     strings.TrimSpace(envString("INGEST_SECRET", "")),
		IngestFilter:     strings.TrimSpace(envString("INGEST_FILTER", "")),
		PromptConfigPath: strings.TrimSpace(envString("PROMPT_CONFIG", "")),
		Gemini: GeminiEnvConfig{
			APIKey:      strings.TrimSpace(envString("GEMINI_API_KEY", "")),
			BaseURL:     strings.TrimSpace(envString("GEMINI_BASE_URL", "")),
			Model:       geminiModel,
			Temperature: envFloatPtr("GEMINI_TEMPERATURE"),
		},
		Tweet: TweetEnvConfig{
			OEmbedBaseURL:      strings.TrimSpace(envString("TWEET_OEMBED_BASE_URL", "")),
			SyndicationBaseURL: strings.TrimSpace(envString("TWEET_SYNDICATION_BASE_URL", "")),
			HTTPTimeout:        envDuration("TWEET_HTTP_TIMEOUT", 15*time.Second),
			UserAgent:          envString("TWEET_USER_AGENT", "hillpulse/0.1"),
		},
		Pushover: PushoverEnvConfig{
			Token:       strings.TrimSpace(envString("PUSHOVER_TOKEN", "")),
			UserKey:     strings.TrimSpace(envString("PUSHOVER_USER", "")),
			Endpoint:    strings.TrimSpace(envString("PUSHOVER_ENDPOINT", "")),
			HTTPTimeout: envDuration("PUSHOVER_HTTP_TIMEOUT", 15*time.Second),
		},
		SMTP: SMTPEnvConfig{
			Host:               strings.TrimSpace(envString("SMTP_HOST", "")),
			Port:               envInt("SMTP_PORT", 587),
			User:               strings.TrimSpace(envString("SMTP_USER", "")),
			Password:           envString("SMTP_PASS", ""),
			From:               strings.TrimSpace(envString("SMTP_FROM", "")),
			To:                 strings.TrimSpace(envString("SMTP_TO", "")),
			TLSMode:            strings.TrimSpace(envString("SMTP_TLS_MODE", "")),
			InsecureSkipVerify: envBool("SMTP_TLS_INSECURE_SKIP_VERIFY", false),
		},
		Dedupe: DedupeEnvConfig{
			Backend:         strings.ToLower(strings.TrimSpace(envString("DEDUP_STORE", "memory"))),
			TTL:             envDuration("DEDUP_TTL", 24*time.Hour),
			SQLitePath:      strings.TrimSpace(envString("DEDUP_SQLITE_PATH", "hillpulse-seen.db")),
			RedisAddr:       strings.TrimSpace(envString("REDIS_ADDR", "localhost:6379")),
			RedisPassword:   envString("REDIS_PASS", ""),
			RedisDB:         envInt("REDIS_DB", 0),
			RedisKeyPrefix:  envString("DEDUP_REDIS_PREFIX", "hillpulse:seen:"),
			CleanupSchedule: envString("DEDUP_CLEANUP_SCHEDULE", "@hourly"),
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: strings.TrimSpace(envString("OTEL_SERVICE_NAME", "hillpulse")),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(strings.TrimSpace(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			Headers:     parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

func envString(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envFloatPtr(key string) *float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := parseDurationExtended(v)
	if err != nil {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func defaultInsecure(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return u.Scheme == "http"
	}
	return strings.HasPrefix(endpoint, "localhost:") ||
		strings.HasPrefix(endpoint, "127.0.0.1:") ||
		strings.HasPrefix(endpoint, "0.0.0.0:")
}
