// Package config provides application configuration management using Viper.
// It supports loading configuration from YAML files and environment variables,
// with built-in validation. The database encryption key is only ever read
// from the environment so it never lands in a config file on disk.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds all application configuration / Contient toute la configuration de l'application
type Config struct {
	Environment string          `mapstructure:"environment"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Security    SecurityConfig  `mapstructure:"security"`
	Retention   RetentionConfig `mapstructure:"retention"`
	Export      ExportConfig    `mapstructure:"export"`
	Backup      BackupConfig    `mapstructure:"backup"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Logging     LoggingConfig   `mapstructure:"logging"`
}

// DatabaseConfig holds database-specific configuration / Configuration de la base de données
type DatabaseConfig struct {
	Type           string `mapstructure:"type"`            // Database type: only "sqlite" is supported
	DSN            string `mapstructure:"dsn"`             // Path of the encrypted database file / Chemin du fichier BD chiffré
	EncryptionKey  string `mapstructure:"encryption_key"`  // From DB_ENCRYPTION_KEY only, never from YAML / Depuis DB_ENCRYPTION_KEY uniquement
	MigrationsPath string `mapstructure:"migrations_path"` // Path to migration files
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

// SecurityConfig holds security settings / Paramètres de sécurité
type SecurityConfig struct {
	BcryptCost int     `mapstructure:"bcrypt_cost"`
	LoginRPS   float64 `mapstructure:"login_rps"`   // Login attempts per second / Tentatives de connexion par seconde
	LoginBurst int     `mapstructure:"login_burst"` // Login attempt burst / Rafale de tentatives de connexion
}

// RetentionConfig holds archive retention settings / Paramètres de rétention des archives
type RetentionConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // Background sweep period (default: 24h) / Période de la purge en arrière-plan
}

// ExportConfig holds record export settings / Paramètres d'export des enregistrements
type ExportConfig struct {
	Path string `mapstructure:"path"` // Directory for exported record files / Répertoire des fichiers exportés
}

// BackupConfig holds database backup configuration / Configuration des sauvegardes de la base de données
type BackupConfig struct {
	Enabled       bool          `mapstructure:"enabled"`        // Enable automatic backups / Active les sauvegardes automatiques
	Interval      time.Duration `mapstructure:"interval"`       // Backup interval (default: 24h) / Intervalle de sauvegarde
	Path          string        `mapstructure:"path"`           // Directory to store backups / Répertoire de stockage
	RetentionDays int           `mapstructure:"retention_days"` // Number of days to keep backups / Nombre de jours de rétention
}

// MetricsConfig holds the optional Prometheus endpoint settings / Paramètres de l'endpoint Prometheus optionnel
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// LoggingConfig holds logging configuration / Configuration logging
type LoggingConfig struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	AuditEnabled   bool   `mapstructure:"audit_enabled"`    // Append mutations to an audit trail file / Ajoute les mutations à un journal d'audit
	AuditPath      string `mapstructure:"audit_path"`       // Audit trail file path / Chemin du journal d'audit
	AuditBatchSize int    `mapstructure:"audit_batch_size"` // Entries buffered before a write / Entrées mises en mémoire avant écriture
}

// IsProduction checks if environment is production / Vérifie si l'environnement est production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment checks if environment is development / Vérifie si l'environnement est development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig loads configuration from YAML and env vars / Charge la config depuis YAML et variables d'env
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "carehome.db")
	v.SetDefault("database.migrations_path", "migrations/sqlite")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.login_rps", 2)
	v.SetDefault("security.login_burst", 5)
	v.SetDefault("retention.sweep_interval", "24h")
	v.SetDefault("export.path", "./exports")

	// Backup defaults
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.interval", "24h")
	v.SetDefault("backup.path", "./backups")
	v.SetDefault("backup.retention_days", 7)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", "9090")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.audit_enabled", false)
	v.SetDefault("logging.audit_path", "./carehome-audit.log")
	v.SetDefault("logging.audit_batch_size", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("database.encryption_key", "DB_ENCRYPTION_KEY")

	var cfg Config
	err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err != nil {
		return nil, err
	}

	// Validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates configuration / Valide la configuration
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateRetention(); err != nil {
		return err
	}

	return nil
}

// validateDatabase validates database configuration
func (c *Config) validateDatabase() error {
	if c.Database.Type != "sqlite" && c.Database.Type != "sqlite3" {
		return fmt.Errorf("database.type %q is not supported, records live in a local sqlite file", c.Database.Type)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	// Fail closed here already: with no key there is nothing to open.
	if strings.TrimSpace(c.Database.EncryptionKey) == "" {
		return errors.New("DB_ENCRYPTION_KEY is required, refusing to operate on an unencrypted store")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost %d out of range [4, 31]", c.Security.BcryptCost)
	}
	if c.Security.LoginRPS <= 0 {
		return errors.New("security.login_rps must be positive")
	}
	if c.Security.LoginBurst < 1 {
		return errors.New("security.login_burst must be at least 1")
	}
	return nil
}

// validateRetention validates retention configuration
func (c *Config) validateRetention() error {
	if c.Retention.SweepInterval <= 0 {
		return errors.New("retention.sweep_interval must be positive")
	}
	return nil
}
