package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	CORSAllowedOrigins []string

	MailerType         string // "log" or "ses"
	SESRegion          string
	SESFrom            string
	SESAccessKeyID     string
	SESSecretAccessKey string
}

func Load() Config {

	// Local development keeps its settings in a .env file; deployed
	// environments provide the variables directly and the file is absent.
	_ = godotenv.Load()

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "prod"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		MailerType:         getenv("MAILER", "log"),
		SESRegion:          os.Getenv("SES_REGION"),
		SESFrom:            os.Getenv("SES_FROM"),
		SESAccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
		SESSecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg

}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
