package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValid(t *testing.T) {
	t.Helper()
	t.Cleanup(viper.Reset)

	viper.Set("api_base_url", "https://registry.example.com")
	viper.Set("package", "acme.hello")
	viper.Set("history_file", "data/downloads.json")
	viper.Set("output_dir", "docs")
	viper.Set("fetch_timeout", 30)
}

func TestLoad(t *testing.T) {
	setValid(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://registry.example.com", cfg.APIBaseURL)
	assert.Equal(t, "acme.hello", cfg.Package)
	assert.Equal(t, 30, cfg.FetchTimeout)
}

func TestLoadMissingPackage(t *testing.T) {
	setValid(t)
	viper.Set("package", "")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadBadAPIURL(t *testing.T) {
	setValid(t)
	viper.Set("api_base_url", "not a url")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadBadTimeout(t *testing.T) {
	setValid(t)
	viper.Set("fetch_timeout", 0)

	_, err := Load()
	assert.ErrorContains(t, err, "invalid configuration")
}
