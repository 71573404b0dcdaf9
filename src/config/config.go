package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"crypto-compare/src/models"

	"gopkg.in/yaml.v3"
)

// Defaults for fields left unset in the YAML file
const (
	DefaultBaseURL               = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency            = "usd"
	DefaultPerPage               = 100
	DefaultUpdateIntervalSeconds = 60
	DefaultRequestTimeout        = 10
	DefaultDBPath                = "crypto_compare.db"

	// APIKeyEnv overrides data_source.api_key so the key never has to live in the file
	APIKeyEnv = "COINGECKO_API_KEY"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// fileAPIKey is what the YAML file held before the environment override
	fileAPIKey    string
	apiKeyFromEnv bool
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a validated Config from YAML bytes
func Parse(data []byte) (*Config, error) {
	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Fill defaults and environment overrides
	config.ApplyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills zero values and reads the API key from the environment
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.LogFile != "" && c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 50
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = DefaultDBPath
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = DefaultRequestTimeout
	}

	ds := &c.DataSource
	if ds.BaseURL == "" {
		ds.BaseURL = DefaultBaseURL
	}
	ds.BaseURL = strings.TrimRight(ds.BaseURL, "/")
	if ds.VsCurrency == "" {
		ds.VsCurrency = DefaultVsCurrency
	}
	if ds.PerPage == 0 {
		ds.PerPage = DefaultPerPage
	}
	if ds.UpdateIntervalSeconds == 0 {
		ds.UpdateIntervalSeconds = DefaultUpdateIntervalSeconds
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		if !c.apiKeyFromEnv {
			c.fileAPIKey = ds.APIKey
		}
		c.apiKeyFromEnv = true
		ds.APIKey = key
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Validate DataSource configuration
	if _, err := url.ParseRequestURI(c.DataSource.BaseURL); err != nil {
		return fmt.Errorf("invalid data source base url %q: %w", c.DataSource.BaseURL, err)
	}
	if c.DataSource.PerPage <= 0 || c.DataSource.PerPage > DefaultPerPage {
		return fmt.Errorf("per_page must be between 1 and %d", DefaultPerPage)
	}
	if c.DataSource.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML, keeping an environment key out of the file
	out := *c.MConfig
	if c.apiKeyFromEnv {
		out.DataSource.APIKey = c.fileAPIKey
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0600 permissions, the file may carry an API key)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
