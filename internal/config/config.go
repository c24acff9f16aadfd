package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service and CLI.
type Config struct {
	Server Server
	Gemini Gemini
	Upload Upload
	Logger Logger
}

type Server struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Gemini struct {
	// APIKey is the Gemini API credential. Absence is a hard failure
	// before any network call is made; Load does not enforce it so the
	// caller can decide how to surface the error.
	APIKey string

	// Model is the Gemini model used for extraction.
	Model string
}

type Upload struct {
	// MaxBytes caps the size of an uploaded statement document.
	MaxBytes int64
}

type Logger struct {
	Level string
}

// DefaultModel is the Gemini model used when GEMINI_MODEL is not set.
const DefaultModel = "gemini-2.5-flash"

// Load reads configuration from a .env file (if present) and the
// environment. Environment variables always win over defaults.
func Load() (*Config, error) {
	// .env is optional; plain environment variables are enough for
	// container deployments.
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "15"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "60"))
	idleTimeout, _ := strconv.Atoi(getEnv("SERVER_IDLE_TIMEOUT", "60"))
	maxUploadMB, _ := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "32"))

	return &Config{
		Server: Server{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			IdleTimeout:  time.Duration(idleTimeout) * time.Second,
		},
		Gemini: Gemini{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", DefaultModel),
		},
		Upload: Upload{
			MaxBytes: int64(maxUploadMB) << 20,
		},
		Logger: Logger{
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
