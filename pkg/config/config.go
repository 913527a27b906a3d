package config

// Package config provides a reusable loader for engine configuration files
// and environment variables. It is versioned so that applications can depend
// on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"resonance-engine/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for an engine node. It mirrors
// the structure of the YAML files under cmd/config.
type Config struct {
	VM struct {
		GasLimit       uint64 `mapstructure:"gas_limit" json:"gas_limit"`
		MaxCallDepth   int    `mapstructure:"max_call_depth" json:"max_call_depth"`
		WasmerBackend  string `mapstructure:"wasmer_backend" json:"wasmer_backend"`
	} `mapstructure:"vm" json:"vm"`

	Track struct {
		StorePath string `mapstructure:"store_path" json:"store_path"`
		InMemory  bool   `mapstructure:"in_memory" json:"in_memory"`
	} `mapstructure:"track" json:"track"`

	Debug struct {
		HTTPEnabled bool   `mapstructure:"http_enabled" json:"http_enabled"`
		ListenAddr  string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"debug" json:"debug"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		JSON  bool   `mapstructure:"json" json:"json"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// fs is the filesystem Load checks for a .env file; swappable in tests via
// afero's in-memory backend. godotenv and viper read from the OS
// filesystem regardless.
var fs afero.Fs = afero.NewOsFs()

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	if exists, _ := afero.Exists(fs, ".env"); exists {
		if err := godotenv.Load(".env"); err != nil {
			return nil, utils.Wrap(err, "load .env")
		}
	}

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the ENGINE_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("ENGINE_ENV", ""))
}
