package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the API.
type Config struct {
	Port string
	Env  string

	MongoURL string
	MongoDB  string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration
	CartTTL          time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string

	TaxRate               float64
	FreeShippingThreshold float64
	StandardShipping      float64

	SMTPServer  string
	SMTPPort    string
	SMTPEmail   string
	SMTPPass    string
	SenderName  string
	FrontendURL string

	AllowedOrigins []string

	RateLimitPerMin     int
	RateLimitBurst      int
	AuthRateLimitPerMin int
	AuthRateLimitBurst  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),

		MongoURL: getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "shopswift"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", 10*time.Minute),
		CartTTL:          getDuration("CART_TTL", 7*24*time.Hour),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		TaxRate:               getFloat("TAX_RATE", 0.1),
		FreeShippingThreshold: getFloat("FREE_SHIPPING_THRESHOLD", 50),
		StandardShipping:      getFloat("STANDARD_SHIPPING", 5.99),

		SMTPServer:  getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPEmail:   os.Getenv("SMTP_EMAIL"),
		SMTPPass:    os.Getenv("SMTP_PASSWORD"),
		SenderName:  getEnv("SMTP_SENDER_NAME", "ShopSwift"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		RateLimitPerMin:     getInt("RATE_LIMIT_PER_MIN", 100),
		RateLimitBurst:      getInt("RATE_LIMIT_BURST", 50),
		AuthRateLimitPerMin: getInt("AUTH_RATE_LIMIT_PER_MIN", 5),
		AuthRateLimitBurst:  getInt("AUTH_RATE_LIMIT_BURST", 5),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
