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
		{"Defaults in development", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing DB name", func(c *Config) { c.DBName = "" }, true},
		{"Unknown password scheme", func(c *Config) { c.PasswordScheme = "rot13" }, true},
		{"Bcrypt scheme", func(c *Config) { c.PasswordScheme = "bcrypt" }, false},
		{"Production with default DB password", func(c *Config) {
			c.Env = "production"
		}, true},
		{"Production with strong DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "s0mething-actually-secret"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Port:           "4000",
				DBHost:         "localhost",
				DBPort:         "5432",
				DBUser:         "user",
				DBPassword:     "password",
				DBName:         "postboard",
				DBSSLMode:      "disable",
				RedisURL:       "localhost:6379",
				PasswordScheme: "plaintext",
				Env:            "development",
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
