package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"legallens-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string

	KnowledgeSource      string
	KnowledgePath        string
	HighSeverityKeywords []string
	AdminToken           string
	ReloadQueueURL       string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience. Real env wins.
	for _, p := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(p)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	source := normalizeKnowledgeSource(getEnv("KNOWLEDGE_SOURCE", "embedded"))
	dbURL := os.Getenv("DATABASE_URL")

	if source == "postgres" && dbURL == "" {
		telemetry.Warn("DATABASE_URL is required for the postgres knowledge source", nil)
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  env,
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:        getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:          dbURL,
		KnowledgeSource:      source,
		KnowledgePath:        getEnv("KNOWLEDGE_PATH", ""),
		HighSeverityKeywords: splitAndTrim(os.Getenv("RISK_HIGH_SEVERITY_KEYWORDS")),
		AdminToken:           strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		ReloadQueueURL:       strings.TrimSpace(os.Getenv("RA_SQS_QUEUE_URL")),
		RateLimitRPS:         getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 20),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// Unknown values are kept so the knowledge package can reject them loudly.
func normalizeKnowledgeSource(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
