// Package config loads the buffer pool's runtime configuration from a YAML
// file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the single numBufs parameter the spec calls out, plus the
// ambient settings needed to stand up a File for it to manage.
type Config struct {
	Storage struct {
		Workdir  string `mapstructure:"workdir"`
		PageSize int    `mapstructure:"page_size"`
	} `mapstructure:"storage"`

	BufferPool struct {
		NumBufs int `mapstructure:"num_bufs"`
	} `mapstructure:"buffer_pool"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.Workdir = "."
	cfg.Storage.PageSize = 8192
	cfg.BufferPool.NumBufs = 128
	cfg.Log.Level = "info"
	return cfg
}

// Load reads a YAML config file at path and unmarshals it into a Config
// seeded with Default()'s values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}
