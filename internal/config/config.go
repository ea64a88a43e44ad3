package config

import (
	"fmt"
	"strings"

	"github.com/pedro-hbl/purchy-ledger/pkg/databases"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store backends
const (
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// ConfigFileEnv names the environment variable holding an optional yaml file
const ConfigFileEnv = "PURCHY_CONFIG"

// Config is the runtime configuration shared by the lambdas and purchyctl.
// Every key can be set from the environment under its upper-cased name.
type Config struct {
	AWSRegion        string `mapstructure:"aws_region"`
	DynamoDBEndpoint string `mapstructure:"dynamodb_endpoint"`
	StoreBackend     string `mapstructure:"store_backend"`
	AccountsTable    string `mapstructure:"accounts_table_name"`
	PurchiesTable    string `mapstructure:"purchies_table_name"`

	DefaultRate       string `mapstructure:"purchy_default_rate"`
	NameBatchSize     int    `mapstructure:"name_batch_size"`
	NameLookupRetries int    `mapstructure:"name_lookup_retries"`

	LogLevel   string `mapstructure:"log_level"`
	ListenAddr string `mapstructure:"listen_addr"`

	MetricsEnabled  bool   `mapstructure:"metrics_enabled"`
	MetricsDatabase string `mapstructure:"metrics_timestream_database"`
	MetricsTable    string `mapstructure:"metrics_timestream_table"`

	rate decimal.Decimal
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("store_backend", BackendDynamoDB)
	v.SetDefault("accounts_table_name", "Accounts")
	v.SetDefault("purchies_table_name", "Purchies")
	v.SetDefault("purchy_default_rate", "405")
	v.SetDefault("name_batch_size", databases.MaxNameBatchSize)
	v.SetDefault("name_lookup_retries", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("metrics_timestream_database", "")
	v.SetDefault("metrics_timestream_table", "HandlerMetrics")
	v.SetDefault(strings.ToLower(ConfigFileEnv), "")
}

// Load reads the configuration from the environment and, when PURCHY_CONFIG
// is set, from that yaml file. Environment values win over the file.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration using the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString(strings.ToLower(ConfigFileEnv)); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.DefaultRate))
	if err != nil {
		return fmt.Errorf("invalid PURCHY_DEFAULT_RATE %q: %w", c.DefaultRate, err)
	}
	c.rate = rate

	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendDynamoDB, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.NameBatchSize <= 0 || c.NameBatchSize > databases.MaxNameBatchSize {
		c.NameBatchSize = databases.MaxNameBatchSize
	}
	if c.NameLookupRetries < 0 {
		return fmt.Errorf("NAME_LOOKUP_RETRIES must not be negative, got %d", c.NameLookupRetries)
	}

	if c.MetricsEnabled && c.MetricsDatabase == "" {
		return fmt.Errorf("METRICS_TIMESTREAM_DATABASE is required when METRICS_ENABLED is set")
	}

	return nil
}

// Rate returns the default purchy rate
func (c *Config) Rate() decimal.Decimal {
	return c.rate
}

// BatchOptions returns the name lookup policy
func (c *Config) BatchOptions() *databases.BatchOptions {
	return &databases.BatchOptions{
		MaxBatchSize: c.NameBatchSize,
		MaxRetries:   c.NameLookupRetries,
	}
}

// StoreConfig returns the factory configuration for the selected backend
func (c *Config) StoreConfig() map[string]interface{} {
	return map[string]interface{}{
		"region":        c.AWSRegion,
		"endpoint":      c.DynamoDBEndpoint,
		"accountsTable": c.AccountsTable,
		"purchiesTable": c.PurchiesTable,
	}
}
