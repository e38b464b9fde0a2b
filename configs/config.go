// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	// GEMINI_API_KEY is optional: without it the service still runs with the
	// rule-based parser only and the model path reports itself unconfigured.
	GEMINI_API_KEY    string
	OCR_MODEL_NAME    string
	PARSER_MODEL_NAME string

	// Parser policy: "text", "vision" or "strict" (see internal/ai)
	PARSER_POLICY string

	// Default parse flags (overridable per request)
	PREFER_MODEL_PARSER bool
	VALIDATE_RESULTS    bool

	// Network timeouts in seconds
	TEXT_PARSE_TIMEOUT  int // text-only model calls
	IMAGE_PARSE_TIMEOUT int // image model calls carry a larger payload

	// Gemini Pricing Configuration (per 1M tokens in USD)
	OCR_INPUT_PRICE_PER_MILLION    float64
	OCR_OUTPUT_PRICE_PER_MILLION   float64
	PARSE_INPUT_PRICE_PER_MILLION  float64
	PARSE_OUTPUT_PRICE_PER_MILLION float64
	USD_TO_VND                     float64

	// Server Configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// MongoDB Configuration (optional: empty MONGO_URI disables persistence)
	MONGO_URI     string
	MONGO_DB_NAME string

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	if GEMINI_API_KEY == "" {
		log.Println("GEMINI_API_KEY not set - model-based parsing disabled, rule-based only")
	}

	OCR_MODEL_NAME = getEnv("OCR_MODEL_NAME", "gemini-2.5-flash")
	PARSER_MODEL_NAME = getEnv("PARSER_MODEL_NAME", "gemini-2.5-flash")
	PARSER_POLICY = getEnv("PARSER_POLICY", "strict")

	PREFER_MODEL_PARSER = getEnvBool("PREFER_MODEL_PARSER", true)
	VALIDATE_RESULTS = getEnvBool("VALIDATE_RESULTS", true)

	TEXT_PARSE_TIMEOUT = getEnvInt("TEXT_PARSE_TIMEOUT", 30)
	IMAGE_PARSE_TIMEOUT = getEnvInt("IMAGE_PARSE_TIMEOUT", 60)

	// Pricing defaults follow Gemini 2.5 Flash
	OCR_INPUT_PRICE_PER_MILLION = getEnvFloat("OCR_INPUT_PRICE_PER_MILLION", 0.30)
	OCR_OUTPUT_PRICE_PER_MILLION = getEnvFloat("OCR_OUTPUT_PRICE_PER_MILLION", 2.50)
	PARSE_INPUT_PRICE_PER_MILLION = getEnvFloat("PARSE_INPUT_PRICE_PER_MILLION", 0.30)
	PARSE_OUTPUT_PRICE_PER_MILLION = getEnvFloat("PARSE_OUTPUT_PRICE_PER_MILLION", 2.50)
	USD_TO_VND = getEnvFloat("USD_TO_VND", 25400.0)

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	MONGO_URI = getEnv("MONGO_URI", "")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "expense_tracker")

	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
