package config

import (
	"strings"
	"testing"
)

func productionConfig() *Config {
	return &Config{
		Environment:          EnvProduction,
		SessionAuthKey:       strings.Repeat("a", 32),
		SessionEncryptionKey: strings.Repeat("b", 16),
		AdminPassword:        "correct-horse-battery",
		StoreBackend:         BackendDynamo,
		BlobBackend:          BackendS3,
		LogLevel:             "info",
	}
}

func TestValidateForProduction(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"non-production skips checks", func(c *Config) { c.Environment = EnvDevelopment; c.AdminPassword = "" }, ""},
		{"short auth key", func(c *Config) { c.SessionAuthKey = "short" }, "SESSION_AUTH_KEY"},
		{"short encryption key", func(c *Config) { c.SessionEncryptionKey = "short" }, "SESSION_ENCRYPTION_KEY"},
		{"weak admin password", func(c *Config) { c.AdminPassword = "admin" }, "ADMIN_PASSWORD"},
		{"memory store", func(c *Config) { c.StoreBackend = BackendMemory }, "STORE_BACKEND"},
		{"debug logging", func(c *Config) { c.LogLevel = "debug" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := ValidateForProduction(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMaxImageBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"5MB", 5_000_000, false},
		{"512kB", 512_000, false},
		{"100", 100, false},
		{"lots", 0, true},
		{"0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := (&Config{MaxImageSize: tt.input}).MaxImageBytes()
			if (err != nil) != tt.wantErr {
				t.Fatalf("MaxImageBytes(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("MaxImageBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
