package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"vizhaa-backend/logger"
)

type Config struct {
	// HTTP
	AppHost     string
	AppPort     string
	AppEnv      string
	FrontendURL string

	// DB
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBLogSQL   bool

	// Tokens
	JWTSecret    string
	JWTExpiresIn time.Duration

	// OTP provider
	OTPProvider   string // "twofactor" or "fake"
	OTPAPIKey     string
	OTPBaseURL    string
	OTPTimeout    time.Duration
	OTPSendLimit  int
	OTPSendWindow time.Duration
	OTPSweepEvery time.Duration

	// Redis (optional, OTP send throttle)
	RedisAddr     string
	RedisPassword string

	// Documents
	S3Bucket      string
	UploadDir     string
	GeminiAPIKey  string
	GeminiModel   string
	EncryptionKey string
}

func Load() Config {
	cfg := Config{
		AppHost:     getenv("APP_HOST", "0.0.0.0"),
		AppPort:     getenv("APP_PORT", "5000"),
		AppEnv:      getenv("APP_ENV", "development"),
		FrontendURL: getenv("FRONTEND_URL", "*"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBName:     getenv("DB_DATABASE", "vizhaa"),
		DBUser:     getenv("DB_USERNAME", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		DBLogSQL:   getbool("DB_LOG_SQL", false),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getdur("JWT_EXPIRES_IN", 24*time.Hour),

		OTPProvider:   getenv("OTP_PROVIDER", "twofactor"),
		OTPAPIKey:     os.Getenv("OTP_API_KEY"),
		OTPBaseURL:    getenv("OTP_BASE_URL", "https://2factor.in/API/V1"),
		OTPTimeout:    getdur("OTP_TIMEOUT", 5*time.Second),
		OTPSendLimit:  getint("OTP_SEND_LIMIT", 5),
		OTPSendWindow: getdur("OTP_SEND_WINDOW", 15*time.Minute),
		OTPSweepEvery: getdur("OTP_SWEEP_INTERVAL", 5*time.Minute),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		S3Bucket:      os.Getenv("S3_BUCKET"),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
	}
	return cfg
}

// Validate rejects configurations that must never reach a running server.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.OTPProvider == "fake" && c.IsProduction() {
		return fmt.Errorf("fake OTP provider cannot be used in production")
	}
	if c.OTPProvider != "fake" && c.OTPProvider != "twofactor" {
		return fmt.Errorf("unknown OTP_PROVIDER %q", c.OTPProvider)
	}
	if c.OTPProvider == "twofactor" && c.OTPAPIKey == "" {
		return fmt.Errorf("OTP_API_KEY is required for the twofactor provider")
	}
	return nil
}

func (c Config) IsProduction() bool  { return c.AppEnv == "production" }
func (c Config) IsDevelopment() bool { return c.AppEnv == "development" }

// DSN builds the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c Config) Addr() string {
	return c.AppHost + ":" + c.AppPort
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warning(fmt.Sprintf("invalid integer for %s=%q, using default %d", k, v, def))
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		logger.Warning(fmt.Sprintf("invalid duration for %s=%q, using default %s", k, v, def))
	}
	return def
}
