package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tellor-io/telliot-kadena/internal/models"
)

const (
	mainConfigFile = "kelliot.yaml"
	endpointsFile  = "kadena-endpoints.yaml"
	envPrefix      = "KADENA"
)

// MainConfig holds the main application options.
type MainConfig struct {
	LogLevel string `mapstructure:"loglevel" yaml:"loglevel"`
	ChainID  int    `mapstructure:"chain_id" yaml:"chain_id"`
	Network  string `mapstructure:"network" yaml:"network"`
}

// Config is the full application configuration: main options plus the
// Chainweb endpoint list.
type Config struct {
	Main      MainConfig          `yaml:"main"`
	Endpoints models.EndpointList `yaml:"endpoints"`

	dir string
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"loglevel": "INFO",
		"chain_id": 1,
		"network":  "testnet04",
	}
}

// Dir returns the configuration directory (~/.kelliot), honoring the
// KADENA_CONFIG_DIR override. The directory is created if needed.
func Dir() (string, error) {
	dir := os.Getenv("KADENA_CONFIG_DIR")
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".kelliot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Load reads the configuration from disk, applying defaults and KADENA_*
// environment overrides. Missing files fall back to defaults.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, mainConfigFile))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &Config{dir: dir}
	if err := v.Unmarshal(&cfg.Main); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	endpoints, err := loadEndpoints(filepath.Join(dir, endpointsFile))
	if err != nil {
		return nil, err
	}
	cfg.Endpoints = endpoints
	return cfg, nil
}

// Init loads the configuration and writes default files for anything
// missing on disk.
func Init() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	mainPath := filepath.Join(cfg.dir, mainConfigFile)
	if _, err := os.Stat(mainPath); os.IsNotExist(err) {
		data, err := yaml.Marshal(cfg.Main)
		if err != nil {
			return nil, fmt.Errorf("error marshaling main config: %w", err)
		}
		if err := os.WriteFile(mainPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
	}

	endpointsPath := filepath.Join(cfg.dir, endpointsFile)
	if _, err := os.Stat(endpointsPath); os.IsNotExist(err) {
		if err := cfg.SaveEndpoints(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// SaveEndpoints writes the endpoint list back to disk.
func (c *Config) SaveEndpoints() error {
	data, err := yaml.Marshal(c.Endpoints)
	if err != nil {
		return fmt.Errorf("error marshaling endpoints: %w", err)
	}
	path := filepath.Join(c.dir, endpointsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// GetEndpoint resolves the endpoint for the configured network and chain id.
func (c *Config) GetEndpoint() (models.ChainwebEndpoint, error) {
	endpoints := c.Endpoints.Find(c.Main.Network, c.Main.ChainID)
	if len(endpoints) == 0 {
		return models.ChainwebEndpoint{}, fmt.Errorf(
			"endpoint not found for network=%s chain_id=%d", c.Main.Network, c.Main.ChainID)
	}
	return endpoints[0], nil
}

// Dump renders the effective configuration as YAML.
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("error marshaling config: %w", err)
	}
	return string(data), nil
}

func loadEndpoints(path string) (models.EndpointList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultEndpoints(), nil
		}
		return models.EndpointList{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var endpoints models.EndpointList
	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return models.EndpointList{}, fmt.Errorf("invalid endpoints file %s: %w", path, err)
	}
	if len(endpoints.Endpoints) == 0 {
		return models.DefaultEndpoints(), nil
	}
	return endpoints, nil
}
