package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	OpenRouter OpenRouterConfig
	IDCard     IDCardConfig
	Batch      BatchConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	FrontendOrigin string
	BodyLimit      int // bytes
}

// OpenRouterConfig holds inference invoker configuration
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
	Timeout time.Duration
}

// IDCardConfig holds the ID pipeline tunables
type IDCardConfig struct {
	MaxPhotos int

	DetectionTimeout    time.Duration
	LocalizationTimeout time.Duration
	OCRTimeout          time.Duration

	MinDetectionConfidence    int
	MinLocalizationConfidence int
	MinOCRConfidence          int

	// OCRConcurrency caps simultaneous field reads within one image.
	// PipelineConcurrency caps simultaneous image pipelines; 1 keeps the
	// aggregate external call volume bounded regardless of batch size.
	OCRConcurrency      int
	PipelineConcurrency int

	MaxImageWidth int
}

// BatchConfig holds the simple (single-prompt) batch mode tunables
type BatchConfig struct {
	MaxPhotos     int
	MaxConcurrent int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":3001"),
			FrontendOrigin: getEnv("FRONTEND_URL", "http://localhost:5173"),
			BodyLimit:      getEnvAsInt("HTTP_BODY_LIMIT", 10*1024*1024),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Referer: getEnv("FRONTEND_URL", "http://localhost:5173"),
			Title:   getEnv("OPENROUTER_APP_TITLE", "ID Card Extractor"),
			Timeout: getEnvAsDuration("OPENROUTER_TIMEOUT", 30*time.Second),
		},
		IDCard: IDCardConfig{
			MaxPhotos:                 getEnvAsInt("IDCARD_MAX_PHOTOS", 50),
			DetectionTimeout:          getEnvAsDuration("IDCARD_DETECTION_TIMEOUT", 30*time.Second),
			LocalizationTimeout:       getEnvAsDuration("IDCARD_LOCALIZATION_TIMEOUT", 60*time.Second),
			OCRTimeout:                getEnvAsDuration("IDCARD_OCR_TIMEOUT", 90*time.Second),
			MinDetectionConfidence:    getEnvAsInt("IDCARD_MIN_DETECTION_CONFIDENCE", 70),
			MinLocalizationConfidence: getEnvAsInt("IDCARD_MIN_LOCALIZATION_CONFIDENCE", 60),
			MinOCRConfidence:          getEnvAsInt("IDCARD_MIN_OCR_CONFIDENCE", 50),
			OCRConcurrency:            getEnvAsInt("IDCARD_OCR_CONCURRENCY", 10),
			PipelineConcurrency:       getEnvAsInt("IDCARD_PIPELINE_CONCURRENCY", 1),
			MaxImageWidth:             getEnvAsInt("IDCARD_MAX_IMAGE_WIDTH", 1920),
		},
		Batch: BatchConfig{
			MaxPhotos:     getEnvAsInt("BATCH_MAX_PHOTOS", 100),
			MaxConcurrent: getEnvAsInt("BATCH_MAX_CONCURRENT", 5),
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OpenRouter.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENROUTER_API_KEY is required", ErrValidation)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrValidation)
	}
	if c.IDCard.MaxPhotos <= 0 {
		return NewAppError("CONFIG_ERROR", "IDCARD_MAX_PHOTOS must be positive", ErrValidation)
	}
	if c.IDCard.OCRConcurrency <= 0 || c.IDCard.PipelineConcurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "concurrency limits must be positive", ErrValidation)
	}
	return nil
}
