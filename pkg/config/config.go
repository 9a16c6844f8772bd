package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	OCR      OCRConfig
	GigaChat GigaChatConfig
	Auth     AuthConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig locates the on-disk receipt image store. Root is the
// directory images are copied into; AllowedRoot bounds which source paths
// ingestion accepts (defaults to the caller's home directory).
type StorageConfig struct {
	Root        string
	AllowedRoot string
}

type OCRConfig struct {
	Provider string // "tesseract" or "gigachat"
	Binary   string
	Langs    string
	Timeout  time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type AuthConfig struct {
	SecretKey  string
	APIKey     string
	Expiration time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables still apply

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	ocrTimeout, _ := strconv.Atoi(getEnv("OCR_TIMEOUT_SECONDS", "30"))
	tokenExp, _ := strconv.Atoi(getEnv("AUTH_TOKEN_EXPIRATION_HOURS", "24"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	home, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5433"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "receipt_vault"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Root:        getEnv("STORAGE_ROOT", filepath.Join("data", "receipts")),
			AllowedRoot: getEnv("STORAGE_ALLOWED_ROOT", home),
		},
		OCR: OCRConfig{
			Provider: getEnv("OCR_PROVIDER", "tesseract"),
			Binary:   getEnv("OCR_BINARY", "tesseract"),
			Langs:    getEnv("OCR_LANGS", "eng+chi_sim"),
			Timeout:  time.Duration(ocrTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Auth: AuthConfig{
			SecretKey:  getEnv("AUTH_SECRET_KEY", "your-secret-key-change-in-production"),
			APIKey:     getEnv("AUTH_API_KEY", ""),
			Expiration: time.Duration(tokenExp) * time.Hour,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
