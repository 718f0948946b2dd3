package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret       string
	JWTIssuer       string
	JWTTTLMinutes   int
	CookieTTLDays   int
	AllowedOrigins  string
	FrontendBaseURL string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	ImageHostURL string
	ImageHostKey string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:       getEnv("JWT_ISSUER", "jobtrack"),
		JWTTTLMinutes:   getEnvInt("JWT_TTL_MINUTES", 7*24*60),
		CookieTTLDays:   getEnvInt("JWT_COOKIE_EXPIRE_DAYS", 7),
		AllowedOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		FrontendBaseURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "noreply@jobtrack.local"),

		ImageHostURL: getEnv("IMAGE_HOST_URL", "https://api.imgbb.com/1/upload"),
		ImageHostKey: os.Getenv("IMAGE_HOST_KEY"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
