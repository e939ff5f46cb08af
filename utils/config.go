package utils

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything main wires into the services and controllers.
// No package-level mutable state beyond JwtKey, which main sets once from
// this struct.
type Config struct {
	Port        string
	MongoURI    string
	Database    string
	JWTSecret   string
	SendGridKey string
	EmailSender string
	BaseURL     string
}

// LoadConfig reads .env if present, then the environment.
func LoadConfig() Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return Config{
		Port:        envOr("PORT", "8000"),
		MongoURI:    envOr("MONGO_URI", "mongodb://localhost:27017"),
		Database:    envOr("MONGO_DATABASE", "shop"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		SendGridKey: os.Getenv("SENDGRID_API_KEY"),
		EmailSender: os.Getenv("EMAIL_SENDER"),
		BaseURL:     envOr("BASE_URL", "http://localhost:8000"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
