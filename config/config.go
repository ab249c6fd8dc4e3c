package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PORT        string
	DB_URL      string
	JWT_SECRET  string
	CORS_ORIGIN string

	REDIS_ADDR     string
	REDIS_PASSWORD string

	MINIO_ENDPOINT   string
	MINIO_ACCESS_KEY string
	MINIO_SECRET_KEY string
	MINIO_BUCKET     string
	MINIO_USE_SSL    string
	MINIO_PUBLIC_URL string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", "http://localhost:3000")

	REDIS_ADDR = getEnv("REDIS_ADDR", "localhost:6379")
	REDIS_PASSWORD = getEnv("REDIS_PASSWORD", "")

	MINIO_ENDPOINT = mustEnv("MINIO_ENDPOINT")
	MINIO_ACCESS_KEY = mustEnv("MINIO_ACCESS_KEY")
	MINIO_SECRET_KEY = mustEnv("MINIO_SECRET_KEY")
	MINIO_BUCKET = getEnv("MINIO_BUCKET", "rental-images")
	MINIO_USE_SSL = getEnv("MINIO_USE_SSL", "false")
	MINIO_PUBLIC_URL = getEnv("MINIO_PUBLIC_URL", "")

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
