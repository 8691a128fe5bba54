package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresURL    string
	MongoURL       string
	DBType         string
	Port           string
	UploadDir      string
	AllowedOrigins []string
	FileStore      string

	// Cloudflare R2 settings, only used when FileStore is "r2"
	R2Bucket          string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2PublicURL       string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		MongoURL:          os.Getenv("MONGO_URL"),
		DBType:            os.Getenv("DB_TYPE"),
		Port:              os.Getenv("PORT"),
		UploadDir:         os.Getenv("UPLOAD_DIR"),
		FileStore:         os.Getenv("FILE_STORE"),
		R2Bucket:          os.Getenv("R2_BUCKET"),
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}
	if cfg.DBType == "" {
		cfg.DBType = "postgres"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.FileStore == "" {
		cfg.FileStore = "local"
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg
}
