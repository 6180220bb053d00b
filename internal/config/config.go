// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	Port           string `mapstructure:"PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`
	Env            string `mapstructure:"APP_ENV"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`

	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`
	// DBAutoMigrateAllowDestructive permits DB_SCHEMA_MODE=auto in production-like environments.
	DBAutoMigrateAllowDestructive bool `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`

	// Moderation policy
	BannedTermsFile              string  `mapstructure:"BANNED_TERMS_FILE"`
	AllowedLinkDomain            string  `mapstructure:"ALLOWED_LINK_DOMAIN"`
	ReportConcealThreshold       int     `mapstructure:"REPORT_CONCEAL_THRESHOLD"`
	ReportPrivilegeSuspendAt     int     `mapstructure:"REPORT_PRIVILEGE_SUSPEND_AT"`
	ReportAccountSuspendAt       int     `mapstructure:"REPORT_ACCOUNT_SUSPEND_AT"`
	DuplicateSimilarityThreshold float64 `mapstructure:"DUPLICATE_SIMILARITY_THRESHOLD"`
	DuplicateWindowHours         int     `mapstructure:"DUPLICATE_WINDOW_HOURS"`
	ReportRateLimitPerMinute     int     `mapstructure:"REPORT_RATE_LIMIT_PER_MINUTE"`

	// External classifiers
	ClassifierTimeoutMS         int    `mapstructure:"CLASSIFIER_TIMEOUT_MS"`
	OpenAIAPIKey                string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL               string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModerationModel       string `mapstructure:"OPENAI_MODERATION_MODEL"`
	VisionAPIKey                string `mapstructure:"VISION_API_KEY"`
	VisionBaseURL               string `mapstructure:"VISION_BASE_URL"`
	ImageVerdictCacheSize       int    `mapstructure:"IMAGE_VERDICT_CACHE_SIZE"`
	ImageVerdictCacheTTLMinutes int    `mapstructure:"IMAGE_VERDICT_CACHE_TTL_MINUTES"`
	ImageMaxUploadSizeMB        int    `mapstructure:"IMAGE_MAX_UPLOAD_SIZE_MB"`

	SuspensionCacheTTLSeconds int    `mapstructure:"SUSPENSION_CACHE_TTL_SECONDS"`
	ExpiryNoticeSchedule      string `mapstructure:"EXPIRY_NOTICE_SCHEDULE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSampleRatio  float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; profile files are not.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "warden")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("BANNED_TERMS_FILE", "")
	viper.SetDefault("ALLOWED_LINK_DOMAIN", "example.com")
	viper.SetDefault("REPORT_CONCEAL_THRESHOLD", 3)
	viper.SetDefault("REPORT_PRIVILEGE_SUSPEND_AT", 10)
	viper.SetDefault("REPORT_ACCOUNT_SUSPEND_AT", 20)
	viper.SetDefault("DUPLICATE_SIMILARITY_THRESHOLD", 0.8)
	viper.SetDefault("DUPLICATE_WINDOW_HOURS", 24)
	viper.SetDefault("REPORT_RATE_LIMIT_PER_MINUTE", 10)

	viper.SetDefault("CLASSIFIER_TIMEOUT_MS", 3000)
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("OPENAI_MODERATION_MODEL", "omni-moderation-latest")
	viper.SetDefault("VISION_API_KEY", "")
	viper.SetDefault("VISION_BASE_URL", "https://vision.googleapis.com")
	viper.SetDefault("IMAGE_VERDICT_CACHE_SIZE", 1024)
	viper.SetDefault("IMAGE_VERDICT_CACHE_TTL_MINUTES", 60)
	viper.SetDefault("IMAGE_MAX_UPLOAD_SIZE_MB", 10)

	viper.SetDefault("SUSPENSION_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("EXPIRY_NOTICE_SCHEDULE", "0 */5 * * * *")

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.AllowedLinkDomain = strings.ToLower(strings.TrimSpace(c.AllowedLinkDomain))
}

// ClassifierTimeout is the per-call deadline for external classifiers.
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.ClassifierTimeoutMS) * time.Millisecond
}

// DuplicateWindow is how far back the duplicate check looks at an author's content.
func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowHours) * time.Hour
}

// SuspensionCacheTTL caps how long a cached suspension status may be served.
func (c *Config) SuspensionCacheTTL() time.Duration {
	return time.Duration(c.SuspensionCacheTTLSeconds) * time.Second
}

// ImageVerdictCacheTTL is how long an image rating stays cached.
func (c *Config) ImageVerdictCacheTTL() time.Duration {
	return time.Duration(c.ImageVerdictCacheTTLMinutes) * time.Minute
}

// IsProduction reports whether APP_ENV names a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ReportConcealThreshold < 1 {
		return errors.New("REPORT_CONCEAL_THRESHOLD must be at least 1")
	}
	if c.ReportPrivilegeSuspendAt < 1 || c.ReportAccountSuspendAt < c.ReportPrivilegeSuspendAt {
		return errors.New("REPORT_ACCOUNT_SUSPEND_AT must be >= REPORT_PRIVILEGE_SUSPEND_AT >= 1")
	}
	if c.DuplicateSimilarityThreshold <= 0 || c.DuplicateSimilarityThreshold > 1 {
		return errors.New("DUPLICATE_SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.ClassifierTimeoutMS <= 0 {
		return errors.New("CLASSIFIER_TIMEOUT_MS must be positive")
	}
	switch c.DBSchemaMode {
	case "", "hybrid", "sql", "auto":
	default:
		return fmt.Errorf("DB_SCHEMA_MODE %q is not one of hybrid, sql, auto", c.DBSchemaMode)
	}

	if c.IsProduction() {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedLinkDomain == "" {
			return errors.New("ALLOWED_LINK_DOMAIN is required in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
