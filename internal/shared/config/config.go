package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"calorievision-backend/internal/shared/telemetry"
)

const (
	defaultAnalysisDelay       = 3 * time.Second
	defaultComplexityThreshold = 100_000
	defaultMaxImageBytes       = 10 << 20
	defaultSessionTTL          = 30 * time.Minute
)

// Config holds application configuration.
type Config struct {
	Port                string
	CORSAllowOrigin     []string
	ObjectStoreType     string
	LocalStoreDir       string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	SSEKMSKeyID         string
	DatabaseURL         string
	Env                 string
	AnalysisDelay       time.Duration
	ComplexityThreshold int
	MaxImageBytes       int64
	SessionTTL          time.Duration
	RandomSeed          uint64
	ServiceName         string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:                getEnv("PORT", "8080"),
		CORSAllowOrigin:     splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		ObjectStoreType:     normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:       getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:           getEnv("AWS_REGION", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Prefix:            getEnv("S3_PREFIX", "staged/"),
		SSEKMSKeyID:         getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Env:                 normalizeEnv(getEnv("ENV", "dev")),
		AnalysisDelay:       getDuration("ANALYSIS_DELAY", defaultAnalysisDelay),
		ComplexityThreshold: getInt("COMPLEXITY_THRESHOLD", defaultComplexityThreshold),
		MaxImageBytes:       int64(getInt("MAX_IMAGE_BYTES", defaultMaxImageBytes)),
		SessionTTL:          getDuration("SESSION_TTL", defaultSessionTTL),
		RandomSeed:          getUint("RANDOM_SEED", 0),
		ServiceName:         getEnv("OTEL_SERVICE_NAME", "calorievision-api"),
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
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getUint(key string, def uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val < 0 {
		telemetry.Error("config.invalid", map[string]any{"key": key, "value": raw, "default": def.String()})
		return def
	}
	return val
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
