package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath      string
	JWTPublicKeyPath       string
	JWTExpiry              time.Duration
	RefreshTokenExpiryDays int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	MailMockMode bool // log instead of send, for local development

	SNSRegion  string
	OwnerPhone string // E.164 number for post-broadcast SMS summaries; empty disables them

	Newsletter NewsletterConfig

	AllowedOrigins []string // CORS allowed origins
}

// NewsletterConfig holds the dispatch tunables. Batch size and inter-batch
// delay together are the entire throttling policy for the mail transport.
type NewsletterConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	FromName       string
	RecentPosts    int
	UpcomingEvents int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Subscribers string
	BlogPosts   string
	Events      string
	Projects    string
	Positions   string
	WebVitals   string
	Files       string
	Users       string
	Sessions    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Subscribers: getEnv("DYNAMO_TABLE_SUBSCRIBERS", "subscribers"),
			BlogPosts:   getEnv("DYNAMO_TABLE_BLOG_POSTS", "blog_posts"),
			Events:      getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Projects:    getEnv("DYNAMO_TABLE_PROJECTS", "projects"),
			Positions:   getEnv("DYNAMO_TABLE_POSITIONS", "positions"),
			WebVitals:   getEnv("DYNAMO_TABLE_WEB_VITALS", "web_vitals"),
			Files:       getEnv("DYNAMO_TABLE_FILES", "files"),
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:    getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "portfolio-assets"),

		JWTPrivateKeyPath:      getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:       getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:              time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenExpiryDays: getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "newsletter@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailMockMode: getEnv("MAIL_MOCK_MODE", "") == "true",

		SNSRegion:  getEnv("SNS_REGION", "us-east-1"),
		OwnerPhone: getEnv("OWNER_PHONE", ""),

		Newsletter: NewsletterConfig{
			BatchSize:      getEnvInt("NEWSLETTER_BATCH_SIZE", 10),
			BatchDelay:     getEnvDuration("NEWSLETTER_BATCH_DELAY", 2*time.Second),
			FromName:       getEnv("NEWSLETTER_FROM_NAME", "Portfolio"),
			RecentPosts:    getEnvInt("NEWSLETTER_RECENT_POSTS", 3),
			UpcomingEvents: getEnvInt("NEWSLETTER_UPCOMING_EVENTS", 2),
		},

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
