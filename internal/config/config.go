package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr    = ":8080"
	defaultDatabaseURL = "foodgram.db"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultTokenTTL    = "720h"
	defaultPageSize    = 6
	defaultMaxPageSize = 100
	defaultRateLimit   = 50
	defaultRateBurst   = 100
	defaultMediaDir    = "./media"
	defaultMediaURL    = "/media"
	defaultConfigFile  = "config.yaml"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	AppEnv      string `yaml:"APP_ENV"`
	HTTPAddr    string `yaml:"HTTP_ADDR"`
	DatabaseURL string `yaml:"DATABASE_URL"`
	LogLevel    string `yaml:"LOG_LEVEL"`

	JWTSecret string        `yaml:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"-"`

	PageSize    int `yaml:"PAGE_SIZE"`
	MaxPageSize int `yaml:"MAX_PAGE_SIZE"`

	RateLimit          float64  `yaml:"RATE_LIMIT"`
	RateBurst          int      `yaml:"RATE_BURST"`
	CORSAllowedOrigins []string `yaml:"CORS_ALLOWED_ORIGINS"`

	Storage StorageConfig `yaml:"STORAGE"`

	rawTokenTTL string `yaml:"-"`
}

type StorageConfig struct {
	Driver      string `yaml:"DRIVER"`
	MediaDir    string `yaml:"MEDIA_DIR"`
	MediaURL    string `yaml:"MEDIA_URL"`
	S3Bucket    string `yaml:"S3_BUCKET"`
	S3Region    string `yaml:"S3_REGION"`
	S3Endpoint  string `yaml:"S3_ENDPOINT"`
	S3AccessKey string `yaml:"S3_ACCESS_KEY"`
	S3SecretKey string `yaml:"S3_SECRET_KEY"`
	S3PublicURL string `yaml:"S3_PUBLIC_URL"`
}

// fileConfig mirrors Config for YAML decoding; TOKEN_TTL is a duration string.
type fileConfig struct {
	Config   `yaml:",inline"`
	TokenTTL string `yaml:"TOKEN_TTL"`
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (default config.yaml, optional), then applies environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	path := getEnv("CONFIG_FILE", defaultConfigFile)
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	slog.Info("config loaded",
		"env", cfg.AppEnv,
		"addr", cfg.HTTPAddr,
		"storage", cfg.Storage.Driver,
		"page_size", cfg.PageSize,
	)
	return cfg, nil
}

func defaults() *Config {
	ttl, _ := time.ParseDuration(defaultTokenTTL)
	return &Config{
		AppEnv:      "dev",
		HTTPAddr:    defaultHTTPAddr,
		DatabaseURL: defaultDatabaseURL,
		LogLevel:    "info",
		JWTSecret:   defaultJWTSecret,
		TokenTTL:    ttl,
		PageSize:    defaultPageSize,
		MaxPageSize: defaultMaxPageSize,
		RateLimit:   defaultRateLimit,
		RateBurst:   defaultRateBurst,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		Storage: StorageConfig{
			Driver:   StorageLocal,
			MediaDir: defaultMediaDir,
			MediaURL: defaultMediaURL,
		},
		rawTokenTTL: defaultTokenTTL,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	fc := fileConfig{Config: *c}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	*c = fc.Config
	if fc.TokenTTL != "" {
		c.rawTokenTTL = fc.TokenTTL
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.AppEnv = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", c.AppEnv)))
	c.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", c.HTTPAddr))
	c.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", c.DatabaseURL))
	c.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", c.LogLevel))
	c.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", c.JWTSecret))

	var err error
	c.TokenTTL, err = parseDurationEnv("TOKEN_TTL", c.rawTokenTTL)
	if err != nil {
		return err
	}
	if c.PageSize, err = parseIntEnv("PAGE_SIZE", c.PageSize); err != nil {
		return err
	}
	if c.MaxPageSize, err = parseIntEnv("MAX_PAGE_SIZE", c.MaxPageSize); err != nil {
		return err
	}
	if c.RateBurst, err = parseIntEnv("RATE_BURST", c.RateBurst); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		c.RateLimit, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value %q: %w", v, err)
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}

	s := &c.Storage
	s.Driver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", s.Driver)))
	s.MediaDir = getEnv("MEDIA_DIR", s.MediaDir)
	s.MediaURL = strings.TrimRight(getEnv("MEDIA_URL", s.MediaURL), "/")
	s.S3Bucket = getEnv("S3_BUCKET", s.S3Bucket)
	s.S3Region = getEnv("S3_REGION", s.S3Region)
	s.S3Endpoint = getEnv("S3_ENDPOINT", s.S3Endpoint)
	s.S3AccessKey = getEnv("S3_ACCESS_KEY", s.S3AccessKey)
	s.S3SecretKey = getEnv("S3_SECRET_KEY", s.S3SecretKey)
	s.S3PublicURL = strings.TrimRight(getEnv("S3_PUBLIC_URL", s.S3PublicURL), "/")
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be > 0")
	}
	if cfg.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be > 0")
	}
	if cfg.MaxPageSize < cfg.PageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be >= PAGE_SIZE")
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be > 0")
	}

	switch cfg.Storage.Driver {
	case StorageLocal:
		if cfg.Storage.MediaDir == "" {
			return fmt.Errorf("MEDIA_DIR must not be empty for local storage")
		}
	case StorageS3:
		if cfg.Storage.S3Bucket == "" || cfg.Storage.S3Region == "" {
			return fmt.Errorf("S3_BUCKET and S3_REGION are required for s3 storage")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, s3")
	}

	if IsProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
