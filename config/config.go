package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO object storage
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	// Public base path for derived asset links, e.g. https://cdn.example.com or /static
	PublicAssetBase string

	// JWT signing secret for admin sessions
	JWTSecret string
	JWTExpiry time.Duration

	// Admin account seeded at startup
	AdminUser     string
	AdminEmail    string
	AdminPassword string

	// External gallery host (token-refreshing image proxy)
	GalleryBaseURL  string
	GalleryProvider string

	// Transactional mail provider
	MailEndpoint string
	MailAPIKey   string
	MailFrom     string
	// Base URL used inside mail bodies for unsubscribe links
	SiteBaseURL string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:     getEnv("DB_NAME", "backline"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:   getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:  os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:     getEnv("MINIO_BUCKET", "backline"),
		MinioRegion:     getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
		PublicAssetBase: getEnv("PUBLIC_ASSET_BASE", "/static"),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,

		AdminUser:     getEnv("ADMIN_USER", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@backline.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		GalleryBaseURL:  getEnv("GALLERY_BASE_URL", ""),
		GalleryProvider: getEnv("GALLERY_PROVIDER", "flickr"),

		MailEndpoint: getEnv("MAIL_ENDPOINT", ""),
		MailAPIKey:   os.Getenv("MAIL_API_KEY"),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@backline.local"),
		SiteBaseURL:  getEnv("SITE_BASE_URL", "http://localhost:8080"),
	}
}
