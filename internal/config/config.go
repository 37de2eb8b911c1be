package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ARCHIVIST"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	View    ViewConfig    `mapstructure:"view"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds archive server configuration
type ServerConfig struct {
	URL     string `mapstructure:"url"`     // Server URL
	Token   string `mapstructure:"token"`   // Bearer token from sign-in
	Timeout int    `mapstructure:"timeout"` // Request timeout in seconds
}

// ViewConfig holds document table defaults
type ViewConfig struct {
	PageSize  int    `mapstructure:"page_size"`
	SortField string `mapstructure:"sort_field"` // "", "id", "title", "type", "author", "date", "privacy"
	SortDesc  bool   `mapstructure:"sort_desc"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

const (
	defaultPageSize = 25
	defaultTimeout  = 30
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: defaultTimeout,
		},
		View: ViewConfig{
			PageSize:  defaultPageSize,
			SortField: "date",
			SortDesc:  true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "archivist", "archivist.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "archivist", "archivist.log")
	}
}

// DefaultPath returns the default config directory for the current OS
func DefaultPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "archivist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "archivist")
	}
}

// newViper returns a viper instance reading config.yaml from dir, with
// defaults registered so ARCHIVIST_* variables override every key.
func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("server.url", def.Server.URL)
	v.SetDefault("server.token", def.Server.Token)
	v.SetDefault("server.timeout", def.Server.Timeout)
	v.SetDefault("view.page_size", def.View.PageSize)
	v.SetDefault("view.sort_field", def.View.SortField)
	v.SetDefault("view.sort_desc", def.View.SortDesc)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	return v
}

// LoadConfig loads configuration from the default directory and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultPath())
}

// LoadConfigFrom loads configuration from dir/config.yaml and environment
func LoadConfigFrom(dir string) (*Config, error) {
	v := newViper(dir)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.View.PageSize <= 0 {
		cfg.View.PageSize = defaultPageSize
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = defaultTimeout
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(DefaultPath(), cfg)
}

// SaveConfigTo writes cfg to dir/config.yaml
func SaveConfigTo(dir string, cfg *Config) error {
	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.token", cfg.Server.Token)
	v.Set("server.timeout", cfg.Server.Timeout)

	v.Set("view.page_size", cfg.View.PageSize)
	v.Set("view.sort_field", cfg.View.SortField)
	v.Set("view.sort_desc", cfg.View.SortDesc)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	return writeConfig(v, dir)
}

// SaveToken updates just the token in the configuration stored in dir
func SaveToken(dir, token string) error {
	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		return err
	}
	cfg.Server.Token = token
	return SaveConfigTo(dir, cfg)
}

// ClearToken removes the stored token while preserving other settings
func ClearToken(dir string) error {
	return SaveToken(dir, "")
}

func writeConfig(v *viper.Viper, dir string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// IsAuthenticated returns true if a token is stored
func (c *Config) IsAuthenticated() bool {
	return c.Server.Token != ""
}
