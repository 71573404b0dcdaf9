package models

// MConfig Structure
type MConfig struct {
	Name          string            `yaml:"name"`
	Host          string            `yaml:"host"`
	Port          int               `yaml:"port"`
	LogLevel      string            `yaml:"log_level"`
	LogFile       string            `yaml:"log_file"`        // Optional, stdout only when empty
	LogMaxSizeMB  int               `yaml:"log_max_size_mb"` // Rotation threshold for LogFile
	LogMaxBackups int               `yaml:"log_max_backups"`
	LogMaxAgeDays int               `yaml:"log_max_age_days"`
	Storage       MStorageConfig    `yaml:"storage"`
	Network       MNetworkConfig    `yaml:"network"`
	DataSource    MDataSourceConfig `yaml:"data_source"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"` // seconds
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	BaseURL               string `yaml:"base_url"`
	APIKey                string `yaml:"api_key"` // Overridden by COINGECKO_API_KEY
	VsCurrency            string `yaml:"vs_currency"`
	PerPage               int    `yaml:"per_page"`
	UpdateIntervalSeconds int    `yaml:"update_interval_seconds"`
}
