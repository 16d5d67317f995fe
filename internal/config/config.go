package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"stockroom/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "configs/config.yaml"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Store      StoreConfig      `yaml:"store"`
	Seed       SeedConfig       `yaml:"seed"`
	Logging    LoggingConfig    `yaml:"logging"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Exports    ExportConfig     `yaml:"exports"`
	CLI        CLIConfig        `yaml:"cli"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type SeedConfig struct {
	ItemsPath string `yaml:"items_path"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type CLIConfig struct {
	ClearScreen   bool `yaml:"clear_screen"`
	TruncateCodes bool `yaml:"truncate_codes"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{CLI: CLIConfig{ClearScreen: true}}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML config at configPath, expanding ${VAR} references from
// the environment and an optional .env file. A missing file at the default
// path yields Default().
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if configPath == "" {
		configPath = DefaultConfigPath
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && configPath == DefaultConfigPath {
			return Default(), nil
		}
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	config := Config{CLI: CLIConfig{ClearScreen: true}}
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store path is required")
	}
	if c.Backup.Enabled {
		if c.Backup.StoragePath == "" {
			return errors.New("backup.storage_path is required when backup is enabled")
		}
		if _, err := time.ParseDuration(c.Backup.Schedule); err != nil {
			return fmt.Errorf("backup.schedule: %w", err)
		}
	}
	if c.Monitoring.PrometheusEnabled && (c.Monitoring.PrometheusPort <= 0 || c.Monitoring.PrometheusPort > 65535) {
		return fmt.Errorf("monitoring.prometheus_port %d is out of range", c.Monitoring.PrometheusPort)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "stockroom"
	}
	if c.App.Version == "" {
		c.App.Version = "dev"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/inventory_management.dat"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	// stdout belongs to the menu
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// LoadItems reads a seed file of the form
//
//	items:
//	  - code: A1
//	    name: Hex bolt
//	    price: 0.3
//	    quantity: 100
//	    reorder_level: 20
func LoadItems(path string) ([]models.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var itemsConfig struct {
		Items []models.Item `yaml:"items"`
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &itemsConfig); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ValidateItems(itemsConfig.Items); err != nil {
		return nil, err
	}
	return itemsConfig.Items, nil
}

func ValidateItems(items []models.Item) error {
	codes := make(map[string]bool)
	for _, item := range items {
		if item.Code == "" {
			return fmt.Errorf("item '%s' has empty code", item.Name)
		}
		if codes[item.Code] {
			return fmt.Errorf("duplicate item code found: %s", item.Code)
		}
		codes[item.Code] = true
	}
	return nil
}
