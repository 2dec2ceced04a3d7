package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	LLM      LLMConfig
	OCR      OCRConfig
	Geometry GeometryConfig
	Batch    BatchConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LLMConfig holds Groq client configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	MaxChars    int
}

// OCRConfig holds scanned-PDF extraction configuration
type OCRConfig struct {
	Pdftotext           string
	Pdftoppm            string
	Tesseract           string
	Lang                string
	DPI                 int
	MaxPages            int
	TessdataDir         string
	EnableTSVConfidence bool
	MinTextChars        int
	PSM                 int
	OEM                 int
}

// GeometryConfig holds the layout resolver thresholds, in PDF points.
type GeometryConfig struct {
	RightGap      float64
	RightMaxWidth float64
	BelowGap      float64
	BelowHeight   float64
	BelowMaxWidth float64
	ColumnGap     float64
	ColumnMaxDrop float64
	ColumnDrift   float64
}

// BatchConfig holds worker-pool behavior
type BatchConfig struct {
	Workers        int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "invoices.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:       getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			Temperature: getEnvAsFloat32("GROQ_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", 45*time.Second),
			MaxChars:    getEnvAsInt("LLM_MAX_CHARS", 15000),
		},
		OCR: OCRConfig{
			Pdftotext:           getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:            getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:           getEnv("TESSERACT_BIN", "tesseract"),
			Lang:                getEnv("TESSERACT_LANG", "eng"),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", true),
			MinTextChars:        getEnvAsInt("OCR_MIN_TEXT_CHARS", 32),
			PSM:                 getEnvAsInt("OCR_PSM", 0),
			OEM:                 getEnvAsInt("OCR_OEM", 0),
		},
		Geometry: GeometryConfig{
			RightGap:      getEnvAsFloat64("GEOM_RIGHT_GAP", 5),
			RightMaxWidth: getEnvAsFloat64("GEOM_RIGHT_MAX_WIDTH", 200),
			BelowGap:      getEnvAsFloat64("GEOM_BELOW_GAP", 5),
			BelowHeight:   getEnvAsFloat64("GEOM_BELOW_HEIGHT", 40),
			BelowMaxWidth: getEnvAsFloat64("GEOM_BELOW_MAX_WIDTH", 200),
			ColumnGap:     getEnvAsFloat64("GEOM_COLUMN_GAP", 5),
			ColumnMaxDrop: getEnvAsFloat64("GEOM_COLUMN_MAX_DROP", 60),
			ColumnDrift:   getEnvAsFloat64("GEOM_COLUMN_DRIFT", 10),
		},
		Batch: BatchConfig{
			Workers:        getEnvAsInt("BATCH_WORKERS", 4),
			ProcessTimeout: getEnvAsDuration("BATCH_PROCESS_TIMEOUT", 3*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the configuration for the selected extraction mode.
func (c *Config) Validate(mode string) error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if mode == "llm" && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GROQ_API_KEY is required in llm mode", ErrInvalidInput)
	}
	return nil
}
