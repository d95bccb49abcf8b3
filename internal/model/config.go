package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Category delete behavior. Exactly one mode is active per store.
const (
	// DeleteModeCascade removes a category's items (and their list state)
	// together with the category.
	DeleteModeCascade = "cascade"
	// DeleteModeRestrict refuses to delete a category while items remain.
	DeleteModeRestrict = "restrict"
)

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MailConfig holds SMTP settings for account emails. The password is kept
// in the system keyring, not here.
type MailConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Username string `mapstructure:"username" yaml:"username"`
	From     string `mapstructure:"from" yaml:"from"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// ListsConfig holds checklist behavior switches.
type ListsConfig struct {
	// DeleteMode is DeleteModeCascade or DeleteModeRestrict.
	DeleteMode string `mapstructure:"delete_mode" yaml:"delete_mode"`
}

// RegistrationConfig controls whether new accounts may be created.
type RegistrationConfig struct {
	Open bool `mapstructure:"open" yaml:"open"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Mail         MailConfig         `mapstructure:"mail" yaml:"mail"`
	Display      DisplayConfig      `mapstructure:"display" yaml:"display"`
	Lists        ListsConfig        `mapstructure:"lists" yaml:"lists"`
	Registration RegistrationConfig `mapstructure:"registration" yaml:"registration"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/listkeeper/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "listkeeper", "config.yaml")
}

// DefaultDatabasePath returns the default SQLite database location,
// next to the configuration file.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "listkeeper.db")
	}
	return filepath.Join(home, ".config", "listkeeper", "listkeeper.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Mail: MailConfig{
			Host: "localhost",
			Port: "8025",
			From: "listkeeper@localhost",
		},
		Display:      DisplayConfig{Theme: "default"},
		Lists:        ListsConfig{DeleteMode: DeleteModeRestrict},
		Registration: RegistrationConfig{Open: true},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("mail.host", "localhost")
	v.SetDefault("mail.port", "8025")
	v.SetDefault("mail.from", "listkeeper@localhost")
	v.SetDefault("display.theme", "default")
	v.SetDefault("lists.delete_mode", DeleteModeRestrict)
	v.SetDefault("registration.open", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Lists.DeleteMode != DeleteModeCascade &&
		cfg.Lists.DeleteMode != DeleteModeRestrict {
		return nil, fmt.Errorf(
			"config %s: lists.delete_mode must be %q or %q, got %q",
			path, DeleteModeCascade, DeleteModeRestrict, cfg.Lists.DeleteMode,
		)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("mail", cfg.Mail)
	v.Set("display", cfg.Display)
	v.Set("lists", cfg.Lists)
	v.Set("registration", cfg.Registration)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
