package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the server reads from the environment. A .env
// file is honored when present so local runs do not need exported vars.
type Config struct {
	Port        string
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	JWTSecret   string
	RedisAddr   string // empty disables the response cache

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	SendgridAPIKey    string
	SendgridFromEmail string
	SendgridFromName  string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "8080"),
		DBDriver:    getenv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@parking.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendgridFromName:  getenv("SENDGRID_FROM_NAME", "ParkHub"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
