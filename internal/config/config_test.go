package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                          "development",
		JWTSecret:                    "secure-secret-at-least-32-chars-long",
		DBPassword:                   "secure-password",
		DBSSLMode:                    "disable",
		Port:                         "8080",
		AllowedLinkDomain:            "example.com",
		ReportConcealThreshold:       3,
		ReportPrivilegeSuspendAt:     10,
		ReportAccountSuspendAt:       20,
		DuplicateSimilarityThreshold: 0.8,
		ClassifierTimeoutMS:          3000,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateModerationPolicy(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero conceal threshold", func(c *Config) { c.ReportConcealThreshold = 0 }},
		{"account threshold below privilege threshold", func(c *Config) { c.ReportAccountSuspendAt = 5 }},
		{"similarity above one", func(c *Config) { c.DuplicateSimilarityThreshold = 1.5 }},
		{"zero similarity", func(c *Config) { c.DuplicateSimilarityThreshold = 0 }},
		{"non-positive classifier timeout", func(c *Config) { c.ClassifierTimeoutMS = 0 }},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	c := validConfig()
	c.DuplicateWindowHours = 24
	c.SuspensionCacheTTLSeconds = 90
	c.ImageVerdictCacheTTLMinutes = 5

	assert.Equal(t, 3*time.Second, c.ClassifierTimeout())
	assert.Equal(t, 24*time.Hour, c.DuplicateWindow())
	assert.Equal(t, 90*time.Second, c.SuspensionCacheTTL())
	assert.Equal(t, 5*time.Minute, c.ImageVerdictCacheTTL())
}

func TestLoadConfig_DefaultsAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("ALLOWED_LINK_DOMAIN", " Community.Example.ORG ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "community.example.org", c.AllowedLinkDomain)
	assert.Equal(t, 3, c.ReportConcealThreshold)
	assert.Equal(t, 10, c.ReportPrivilegeSuspendAt)
	assert.Equal(t, 20, c.ReportAccountSuspendAt)
	assert.InDelta(t, 0.8, c.DuplicateSimilarityThreshold, 1e-9)
	assert.Equal(t, 24, c.DuplicateWindowHours)
	assert.Equal(t, 3000, c.ClassifierTimeoutMS)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}
