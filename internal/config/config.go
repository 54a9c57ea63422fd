package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL   string `mapstructure:"api_base_url" validate:"required,url"`
	Package      string `mapstructure:"package" validate:"required"`
	HistoryFile  string `mapstructure:"history_file" validate:"required"`
	OutputDir    string `mapstructure:"output_dir" validate:"required"`
	SiteURL      string `mapstructure:"site_url" validate:"omitempty,url"`
	MetricsFile  string `mapstructure:"metrics_file"`
	FetchTimeout int    `mapstructure:"fetch_timeout" validate:"gte=1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
