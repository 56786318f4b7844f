package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	PublicBaseURL  string
	LogLevel       string
	UseMemoryQueue bool
	WorkerCount    int
	DatabaseURL    string

	// Session queue + job tracking
	SessionQueueURL  string
	SessionJobsTable string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// LLM providers
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string
	LLMTimeout     time.Duration

	// Redis session history
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Qualification scoring
	WeightProjectType  float64
	WeightTimeline     float64
	WeightBudget       float64
	WeightCompanySize  float64
	WeightAIExperience float64
	ThresholdHighValue int
	ThresholdQualified int
	ThresholdNurture   int
	MaxConversationLen int
	FallbackSeed       int64

	// Lead notification email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	LeadNotifyEmail   string

	// Transcript archival
	ArchiveBucket string

	// Admin API
	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		SessionQueueURL:  getEnv("SESSION_QUEUE_URL", ""),
		SessionJobsTable: getEnv("SESSION_JOBS_TABLE", "session_jobs"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		LLMTimeout:     getEnvAsDuration("LLM_TIMEOUT", 15*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		WeightProjectType:  getEnvAsFloat("SCORE_WEIGHT_PROJECT_TYPE", 0.25),
		WeightTimeline:     getEnvAsFloat("SCORE_WEIGHT_TIMELINE", 0.30),
		WeightBudget:       getEnvAsFloat("SCORE_WEIGHT_BUDGET", 0.25),
		WeightCompanySize:  getEnvAsFloat("SCORE_WEIGHT_COMPANY_SIZE", 0.15),
		WeightAIExperience: getEnvAsFloat("SCORE_WEIGHT_AI_EXPERIENCE", 0.05),
		ThresholdHighValue: getEnvAsInt("CATEGORY_THRESHOLD_HIGH_VALUE", 80),
		ThresholdQualified: getEnvAsInt("CATEGORY_THRESHOLD_QUALIFIED", 60),
		ThresholdNurture:   getEnvAsInt("CATEGORY_THRESHOLD_NURTURE", 40),
		MaxConversationLen: getEnvAsInt("MAX_CONVERSATION_LENGTH", 20),
		FallbackSeed:       int64(getEnvAsInt("FALLBACK_SEED", 0)),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Portfolio AI"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		LeadNotifyEmail:   getEnv("LEAD_NOTIFY_EMAIL", ""),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
