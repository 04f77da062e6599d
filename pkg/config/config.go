package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Upload   UploadConfig
	OCR      OCRConfig
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
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
}

// UploadConfig controls where receipt uploads land and how large they may be.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// OCRConfig tunes the receipt recognition pipeline.
type OCRConfig struct {
	Language       string
	AttemptTimeout time.Duration
	MinWidth       int
	TempDir        string // parent of per-request scratch directories; empty means os.TempDir()
	MinTextLength  int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root.
	// Missing files are fine: real environment variables are used as-is.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvSeconds("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvSeconds("SERVER_WRITE_TIMEOUT", 300),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "expense_tracker"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		OCR: OCRConfig{
			Language:       getEnv("OCR_LANGUAGE", "eng"),
			AttemptTimeout: getEnvSeconds("OCR_ATTEMPT_TIMEOUT", 90),
			MinWidth:       getEnvInt("OCR_MIN_WIDTH", 2400),
			TempDir:        getEnv("OCR_TEMP_DIR", ""),
			MinTextLength:  getEnvInt("OCR_MIN_TEXT_LENGTH", 10),
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
