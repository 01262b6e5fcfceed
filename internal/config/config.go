package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

type Config struct {
	DatabaseURL string
	UploadsDir  string

	StorageBackend string
	GCSBucketName  string
	GCSPrefix      string

	AuthUsername string
	AuthPassword string

	Environment    string
	AllowedOrigins []string
	HTTPAddr       string

	DetailMaxPageSize  int
	PreviewMaxPageSize int
	StagingMaxAge      time.Duration

	// DotEnvLoaded reports whether LoadFromEnv found a .env file.
	DotEnvLoaded bool
}

// Load reads the configuration from the environment. Call godotenv first if
// a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		UploadsDir:     getEnv("UPLOADS_DIR", "uploads"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		GCSBucketName:  os.Getenv("GCS_BUCKET_NAME"),
		GCSPrefix:      os.Getenv("GCS_PREFIX"),
		AuthUsername:   os.Getenv("BASIC_AUTH_USERNAME"),
		AuthPassword:   os.Getenv("BASIC_AUTH_PASSWORD"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
	}

	var err error
	if cfg.DetailMaxPageSize, err = getInt("DETAIL_MAX_PAGE_SIZE", 200); err != nil {
		return nil, err
	}
	if cfg.PreviewMaxPageSize, err = getInt("PREVIEW_MAX_PAGE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.StagingMaxAge, err = getDuration("STAGING_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AuthUsername == "" || c.AuthPassword == "" {
		return errors.New("BASIC_AUTH_USERNAME and BASIC_AUTH_PASSWORD must be set")
	}
	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadsDir == "" {
			return errors.New("UPLOADS_DIR must not be empty")
		}
	case StorageGCS:
		if c.GCSBucketName == "" {
			return errors.New("GCS_BUCKET_NAME must be set when STORAGE_BACKEND is gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.DetailMaxPageSize < 1 || c.PreviewMaxPageSize < 1 {
		return errors.New("page size limits must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
