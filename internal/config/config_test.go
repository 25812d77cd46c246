package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development config", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Production with default JWT secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production with short JWT secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"Production with default DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production with empty DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = ""
		}, true},
		{"Valid production config", func(c *Config) {
			c.Env = "production"
		}, false},
		{"Prod alias validates like production", func(c *Config) {
			c.Env = "prod"
			c.DBPassword = "password"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:        "development",
				JWTSecret:  "secure-secret-at-least-32-chars-long",
				DBPassword: "secure-password",
				DBSSLMode:  "require",
				Port:       "8080",
				RedisURL:   "localhost:6379",
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
