package config

import (
	"fmt"

	"github.com/loykin/aotrec/internal/logger"
	"github.com/spf13/viper"
)

// Config is the top-level TOML structure for the recorder daemon.
//
// Example:
//
//	disabled = false
//	auto_start = true
//
//	[server]
//	listen = "127.0.0.1:8080"
//	base_path = "/api"
//
//	[metrics]
//	enabled = true
//
//	[log]
//	path = "/var/log/aotrec/aotrec.log"
//	level = "info"
//
//	[store]
//	dsn = "sqlite:///var/lib/aotrec/sessions.db"
//
//	[history]
//	clickhouse_addr = "localhost:9000"
//	clickhouse_table = "aotrec_sessions"
type Config struct {
	Disabled  bool          `toml:"disabled" mapstructure:"disabled"`
	AutoStart bool          `toml:"auto_start" mapstructure:"auto_start"`
	Server    ServerConfig  `toml:"server" mapstructure:"server"`
	Metrics   MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Log       LogConfig     `toml:"log" mapstructure:"log"`
	Store     StoreConfig   `toml:"store" mapstructure:"store"`
	History   HistoryConfig `toml:"history" mapstructure:"history"`
}

type LogConfig struct {
	Path       string `toml:"path" mapstructure:"path"`
	Level      string `toml:"level" mapstructure:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Logger converts the TOML shape into the logger package config.
func (lc LogConfig) Logger() logger.Config {
	return logger.Config{
		Path:       lc.Path,
		Level:      lc.Level,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Compress:   lc.Compress,
	}
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

type StoreConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type HistoryConfig struct {
	ClickHouseAddr  string `toml:"clickhouse_addr" mapstructure:"clickhouse_addr"`
	ClickHouseTable string `toml:"clickhouse_table" mapstructure:"clickhouse_table"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		AutoStart: true,
		Server: ServerConfig{
			Listen:   "127.0.0.1:8080",
			BasePath: "/api",
		},
		Metrics: MetricsConfig{Enabled: true},
		History: HistoryConfig{ClickHouseTable: "aotrec_sessions"},
	}
}

// Load parses a TOML config file. Missing sections keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
