package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Production environment", "production", true},
		{"Development environment", "development", false},
		{"Empty environment", "", false},
		{"Other environment", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if got := cfg.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Development environment", "development", true},
		{"Production environment", "production", false},
		{"Empty environment", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

// validTestConfig returns a config that passes validation, for tests to break
// one field at a time.
func validTestConfig() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			Type:          "sqlite",
			DSN:           "carehome.db",
			EncryptionKey: "test-encryption-key",
		},
		Security: SecurityConfig{
			BcryptCost: 12,
			LoginRPS:   2,
			LoginBurst: 5,
		},
		Retention: RetentionConfig{
			SweepInterval: 24 * time.Hour,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:        "Valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "sqlite3 alias accepted",
			mutate:      func(c *Config) { c.Database.Type = "sqlite3" },
			expectError: false,
		},
		{
			name:          "Unsupported database type",
			mutate:        func(c *Config) { c.Database.Type = "postgres" },
			expectError:   true,
			errorContains: "not supported",
		},
		{
			name:          "Missing DSN",
			mutate:        func(c *Config) { c.Database.DSN = "" },
			expectError:   true,
			errorContains: "database.dsn",
		},
		{
			name:          "Missing encryption key fails closed",
			mutate:        func(c *Config) { c.Database.EncryptionKey = "" },
			expectError:   true,
			errorContains: "DB_ENCRYPTION_KEY",
		},
		{
			name:          "Whitespace encryption key fails closed",
			mutate:        func(c *Config) { c.Database.EncryptionKey = "   " },
			expectError:   true,
			errorContains: "DB_ENCRYPTION_KEY",
		},
		{
			name:          "Bcrypt cost too low",
			mutate:        func(c *Config) { c.Security.BcryptCost = 2 },
			expectError:   true,
			errorContains: "bcrypt_cost",
		},
		{
			name:          "Bcrypt cost too high",
			mutate:        func(c *Config) { c.Security.BcryptCost = 40 },
			expectError:   true,
			errorContains: "bcrypt_cost",
		},
		{
			name:          "Zero login RPS",
			mutate:        func(c *Config) { c.Security.LoginRPS = 0 },
			expectError:   true,
			errorContains: "login_rps",
		},
		{
			name:          "Zero login burst",
			mutate:        func(c *Config) { c.Security.LoginBurst = 0 },
			expectError:   true,
			errorContains: "login_burst",
		},
		{
			name:          "Zero sweep interval",
			mutate:        func(c *Config) { c.Retention.SweepInterval = 0 },
			expectError:   true,
			errorContains: "sweep_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				} else if tt.errorContains != "" {
					if !contains(err.Error(), tt.errorContains) {
						t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
					}
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Clear environment variables to test defaults, keeping the one
	// LoadConfig refuses to run without
	os.Clearenv()
	os.Setenv("DB_ENCRYPTION_KEY", "test-encryption-key")
	defer os.Unsetenv("DB_ENCRYPTION_KEY")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config with defaults: %v", err)
	}

	// Verify some defaults
	if cfg.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", cfg.Environment)
	}

	if cfg.Database.DSN != "carehome.db" {
		t.Errorf("Expected default DSN 'carehome.db', got %s", cfg.Database.DSN)
	}

	if cfg.Retention.SweepInterval != 24*time.Hour {
		t.Errorf("Expected default sweep interval 24h, got %v", cfg.Retention.SweepInterval)
	}

	if cfg.Security.BcryptCost != 12 {
		t.Errorf("Expected default bcrypt cost 12, got %d", cfg.Security.BcryptCost)
	}
}

func TestLoadConfig_WithoutEncryptionKey(t *testing.T) {
	os.Clearenv()

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected LoadConfig to fail without DB_ENCRYPTION_KEY")
	}
}

func TestLoadConfig_WithEnvironmentVariables(t *testing.T) {
	// Set environment variables
	os.Setenv("DB_ENCRYPTION_KEY", "test-encryption-key")
	os.Setenv("APP_ENVIRONMENT", "test")
	os.Setenv("DATABASE_DSN", "/var/lib/carehome/records.db")
	defer func() {
		os.Unsetenv("DB_ENCRYPTION_KEY")
		os.Unsetenv("APP_ENVIRONMENT")
		os.Unsetenv("DATABASE_DSN")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected environment from env 'test', got %s", cfg.Environment)
	}

	if cfg.Database.DSN != "/var/lib/carehome/records.db" {
		t.Errorf("Expected DSN from env, got %s", cfg.Database.DSN)
	}

	if cfg.Database.EncryptionKey != "test-encryption-key" {
		t.Error("Expected encryption key to be read from DB_ENCRYPTION_KEY")
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && len(s) >= len(substr) &&
		(s == substr || (len(s) > len(substr) && searchString(s, substr)))
}

func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
