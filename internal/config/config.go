package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend setting
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	Email               string         `yaml:"email,omitempty"`   // Default email for load/save
	Backend             string         `yaml:"backend,omitempty"` // sqlite (default), supabase or memory
	Database            string         `yaml:"database,omitempty"`
	Supabase            SupabaseConfig `yaml:"supabase,omitempty"`
	MQTT                MQTTConfig     `yaml:"mqtt,omitempty"`
	Log                 LogConfig      `yaml:"log,omitempty"`
	StoreTimeoutSeconds int            `yaml:"store_timeout_seconds,omitempty"` // 0 = no timeout
}

// SupabaseConfig holds the hosted chart value store settings
type SupabaseConfig struct {
	URL     string `yaml:"url"`      // e.g., "https://abcd.supabase.co"
	AnonKey string `yaml:"anon_key"` // Public anon key
	Table   string `yaml:"table,omitempty"`
}

// MQTTConfig holds the broker settings used by publish
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	File  string `yaml:"file,omitempty"`  // Dashboard log destination
}

// Load reads the config file and applies environment overrides. The result
// is for reading only; pass LoadFile's result to Save.
func Load(configPath string) (*Config, error) {
	cfg, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadFile reads the config file as written, without environment overrides
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// applyEnvOverrides lets the environment supply backend credentials
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		c.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		c.Supabase.AnonKey = v
	}
	if v := os.Getenv("CALLCHARTS_EMAIL"); v != "" {
		c.Email = v
	}
	// Selecting supabase implicitly when only env credentials are present
	if c.Backend == "" && c.Supabase.URL != "" && c.Supabase.AnonKey != "" {
		c.Backend = BackendSupabase
	}
}

// GetBackend returns the configured backend, defaulting to sqlite
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDatabase returns the SQLite path, defaulting to ./data.db
func (c *Config) GetDatabase() string {
	if c.Database == "" {
		return "data.db"
	}
	return c.Database
}

// GetTable returns the remote table name
func (c *Config) GetTable() string {
	if c.Supabase.Table == "" {
		return "user_chart_values"
	}
	return c.Supabase.Table
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "callcharts"
	}
	return c.MQTT.TopicPrefix
}

// GetLogLevel returns the log level, defaulting to info
func (c *Config) GetLogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// GetStoreTimeout returns the per-call store timeout, or 0 for none
func (c *Config) GetStoreTimeout() time.Duration {
	if c.StoreTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}
