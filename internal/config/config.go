package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings read from the environment
type Config struct {
	MongoURI string
	MongoDB  string
	// RedisAddr may be empty, in which case limiter state and marker
	// caching stay in process memory.
	RedisAddr string
	HTTPPort  string

	JWTSecret string `json:"-"`
	// JWTSecretGenerated is set when JWT_SECRET was empty and a random
	// per-process secret is used instead
	JWTSecretGenerated bool

	AdminPassword     string `json:"-"`
	AdminPasswordHash string `json:"-"`
	AdminSessionTTL   time.Duration

	PinLimit   LimitConfig
	AdminLimit LimitConfig

	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string

	LogLevel  string
	SentryDSN string
	Release   string
}

// LimitConfig is one rate limiter's attempt ceiling and window
type LimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Load reads an optional .env file and then the process environment
func Load() *Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	secret, generated := jwtSecret()

	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "streamgate"),
		RedisAddr: redisAddr(os.Getenv("REDIS_URI")),
		HTTPPort:  getEnv("PORT", "8080"),

		JWTSecret:          secret,
		JWTSecretGenerated: generated,

		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminSessionTTL:   24 * time.Hour,

		PinLimit: LimitConfig{
			MaxAttempts: getEnvInt("PIN_MAX_ATTEMPTS", 5),
			Window:      time.Duration(getEnvInt("PIN_WINDOW_MINUTES", 15)) * time.Minute,
		},
		AdminLimit: LimitConfig{
			MaxAttempts: getEnvInt("ADMIN_MAX_ATTEMPTS", 3),
			Window:      time.Duration(getEnvInt("ADMIN_WINDOW_MINUTES", 30)) * time.Minute,
		},

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
		CORSAllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization, X-Pin-Code, X-Session-Id"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
		Release:   getEnv("RELEASE", "dev"),
	}
}

// AdminConfigured reports whether any admin secret is set
func (c *Config) AdminConfigured() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

// jwtSecret returns JWT_SECRET, or 32 random bytes hex encoded when it is
// unset. Admin tokens then stop validating when the process restarts.
func jwtSecret() (string, bool) {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s, false
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("generate jwt secret: %v", err))
	}
	return hex.EncodeToString(b), true
}

// redisAddr strips the redis:// scheme the deployment URIs carry
func redisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
