package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds the JWT signing settings for the identity boundary.
type AuthConfig struct {
	JWTSecret      string
	TokenExpiryMin int
}

// UploadConfig bounds what the upload boundary accepts before any bytes
// reach the blob store.
type UploadConfig struct {
	MaxSizeBytes int64
}

// AppConfig is the application configuration, populated from environment
// variables. Secrets have no defaults; a .env file is honored through the
// godotenv/autoload import in main.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Upload   UploadConfig
}

// Load reads configuration from the environment.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Database: loadDatabase(),
		MinIO:    loadMinIO(),
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			TokenExpiryMin: getEnvInt("JWT_EXPIRY_MIN", 60),
		},
		Upload: UploadConfig{
			MaxSizeBytes: int64(getEnvInt("UPLOAD_MAX_SIZE_BYTES", 40<<20)), // 40 MiB
		},
	}
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:               getEnv("DB_HOST", ""),
		Port:               getEnv("DB_PORT", "5432"),
		User:               getEnv("DB_USER", ""),
		Password:           getEnv("DB_PASSWORD", ""),
		Name:               getEnv("DB_NAME", ""),
		SSLMode:            getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
	}
}

func loadMinIO() MinIOConfig {
	return MinIOConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", ""),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "notes"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
