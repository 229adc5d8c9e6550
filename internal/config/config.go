package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	GoogleClientID string

	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3PublicURL    string
	S3PublicBucket bool
	SignedURLTTL   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	ResetURLBase  string
	ResetTokenTTL time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CORSOrigins []string
	CSRFEnabled bool
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "nimbus"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8000),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        EnvDurationDefault("ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTTL:       EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		S3Endpoint:     os.Getenv("S3_ENDPOINT"),
		S3Region:       EnvDefault("S3_REGION", "us-east-1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3Bucket:       EnvDefault("S3_BUCKET", "cloud-storage"),
		S3PublicURL:    EnvDefault("S3_PUBLIC_URL", os.Getenv("S3_ENDPOINT")),
		S3PublicBucket: EnvBoolDefault("S3_PUBLIC_BUCKET", true),
		SignedURLTTL:   EnvDurationDefault("SIGNED_URL_TTL", time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     EnvIntDefault("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     EnvDefault("MAIL_FROM", "no-reply@cloudstorage.com"),

		ResetURLBase:  EnvDefault("RESET_URL_BASE", "http://localhost:5173/reset-password"),
		ResetTokenTTL: EnvDurationDefault("RESET_TOKEN_TTL", 15*time.Minute),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "files"),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "http://localhost:5173")),
		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", false),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts Go durations ("15m") or a bare number of seconds.
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
