package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	GroqAPIKey            string
	GoogleCredentialsFile string
	GoogleTokenFile       string

	// Canvas is optional; the assignments endpoint reports unconfigured
	// when these are empty.
	CanvasBaseURL  string
	CanvasAPIToken string

	// Optional with defaults
	DBPath          string
	HTTPPort        int
	GroqModel       string
	GroqTemperature float64
	Timezone        string
	DevMode         bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		GroqAPIKey:            os.Getenv("GROQ_API_KEY"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),

		CanvasBaseURL:  os.Getenv("CANVAS_BASE_URL"),
		CanvasAPIToken: os.Getenv("CANVAS_API_TOKEN"),

		// Optional with defaults
		DBPath:          getEnvOrDefault("SCHEDULO_DB_PATH", "./schedulo.db"),
		HTTPPort:        getEnvAsIntOrDefault("SCHEDULO_HTTP_PORT", 8000),
		GroqModel:       getEnvOrDefault("SCHEDULO_GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqTemperature: getEnvAsFloatOrDefault("SCHEDULO_GROQ_TEMPERATURE", 0.7),
		Timezone:        getEnvOrDefault("SCHEDULO_TIMEZONE", "America/Los_Angeles"),
		DevMode:         getEnvAsBoolOrDefault("SCHEDULO_DEV_MODE", false),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
