package config

import "os"

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string

	// Archive object storage; empty endpoint disables archiving.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// DefaultOrigin is recorded on saves from clients that send no
	// Origin header.
	DefaultOrigin string
	CookieSecure  bool
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "snapcloud"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "project-archive"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		SMTPAddr:       getenv("SMTP_ADDR", "localhost:25"),
		SMTPUser:       getenv("SMTP_USER", ""),
		SMTPPassword:   getenv("SMTP_PASSWORD", ""),
		MailFrom:       getenv("MAIL_FROM", "no-reply@snapcloud.local"),
		DefaultOrigin:  getenv("DEFAULT_ORIGIN", ""),
		CookieSecure:   getenv("COOKIE_SECURE", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
