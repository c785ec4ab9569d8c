package config

import "time"

// SyncerConfig is the root configuration for a sync run.
type SyncerConfig struct {
	Sync     SyncConfig     `yaml:"sync"`
	Provider ProviderConfig `yaml:"provider"`
	Database DBConfig       `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SyncConfig controls what gets synchronized.
type SyncConfig struct {
	// LookbackDays is the historical depth per run, 1-28.
	LookbackDays int `yaml:"lookback_days"`

	// Tickers is the ordered list of symbols to synchronize.
	Tickers []string `yaml:"tickers"`
}

// ProviderConfig holds quote provider API settings.
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug" or "info"
	File  string `yaml:"file"`  // optional log file, logs go to stdout as well
}
