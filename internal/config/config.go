package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvRedisAddr    = "REDIS_ADDR"
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// RedisConfig holds optional Redis connection settings. When Addr is
// empty the service runs with in-memory draft storage and rate limiting.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
	DB       int    `yaml:"db"`
}

// GenAIConfig holds generative API settings.
type GenAIConfig struct {
	APIKey       string `yaml:"api-key"`
	CaptionModel string `yaml:"caption-model"`
	ImageModel   string `yaml:"image-model"`
}

// TokenCosts defines how many tokens each paid action consumes.
type TokenCosts struct {
	Caption int64 `yaml:"caption"`
	AdImage int64 `yaml:"ad-image"`
}

// ServiceConfig bundles the optional service settings.
type ServiceConfig struct {
	Redis             RedisConfig `yaml:"redis"`
	GenAI             GenAIConfig `yaml:"genai"`
	TokenCosts        TokenCosts  `yaml:"token-costs"`
	GeneratePerMinute int         `yaml:"generate-per-minute"`
}

// Defaults applied when the config omits service settings.
const (
	defaultCaptionCost       = 1
	defaultAdImageCost       = 5
	defaultGeneratePerMinute = 10
	defaultCaptionModel      = "gemini-2.0-flash"
	defaultImageModel        = "gemini-2.0-flash-exp-image-generation"
)

// LoadServiceConfig loads service settings from the YAML config file.
// A missing file yields defaults; env vars override file values.
func LoadServiceConfig(configPath string) (ServiceConfig, error) {
	var result ServiceConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &result); errUnmarshal != nil {
			return ServiceConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		result.Redis.Addr = addr
	}
	if key := strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)); key != "" {
		result.GenAI.APIKey = key
	}

	if result.TokenCosts.Caption <= 0 {
		result.TokenCosts.Caption = defaultCaptionCost
	}
	if result.TokenCosts.AdImage <= 0 {
		result.TokenCosts.AdImage = defaultAdImageCost
	}
	if result.GeneratePerMinute <= 0 {
		result.GeneratePerMinute = defaultGeneratePerMinute
	}
	if strings.TrimSpace(result.GenAI.CaptionModel) == "" {
		result.GenAI.CaptionModel = defaultCaptionModel
	}
	if strings.TrimSpace(result.GenAI.ImageModel) == "" {
		result.GenAI.ImageModel = defaultImageModel
	}
	return result, nil
}
