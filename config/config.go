package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis (per-IP abuse limiting on public auth endpoints)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT session tokens
	JWTSecret string
	TokenTTL  time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// RabbitMQ (deferred notification emails)
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch (optional team search index)
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// Google Cloud Storage (task assets)
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; empty means ADC

	// Chatbot completion API
	ChatAPIBaseURL string
	ChatAPIKey     string
	ChatModel      string

	// Chatbot per-user limiter
	ChatRateLimitMax    int
	ChatRateLimitWindow time.Duration

	// Email sending toggle
	MailSendEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "proman"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "5000"),
		GinMode: getenv("GIN_MODE", "debug"),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "proman"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFE", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getdur("TOKEN_TTL", 30*24*time.Hour),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "migrations"),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", "ProMan <no-reply@proman.dev>"),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "proman.emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USER", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASS", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "proman-users"),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		ChatAPIBaseURL: getenv("CHAT_API_BASE_URL", "https://api.deepseek.com/v1"),
		ChatAPIKey:     getenv("CHAT_API_KEY", ""),
		ChatModel:      getenv("CHAT_MODEL", "deepseek-chat"),

		ChatRateLimitMax:    getint("CHAT_RATE_LIMIT_MAX", 15),
		ChatRateLimitWindow: getdur("CHAT_RATE_LIMIT_WINDOW", time.Minute),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),
		HTTPLogEnabled:  getbool("HTTP_LOG_ENABLED", true),
	}
}

// PostgresDSN builds the connection string for pgx and migrations.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// CORSOrigins splits the comma-separated allowed origins.
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ESAddrs splits the comma-separated Elasticsearch addresses.
func (c *Config) ESAddrs() []string {
	if strings.TrimSpace(c.ElasticsearchAddrs) == "" {
		return nil
	}
	parts := strings.Split(c.ElasticsearchAddrs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
