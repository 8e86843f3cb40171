package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Cognito struct {
		AppClientId     string `yaml:"appClientId"`
		AppClientSecret string `yaml:"appClientSecret"`
		UserPoolId      string `yaml:"userPoolId"`
		Region          string `yaml:"region"`
	} `yaml:"cognito"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		Expiry int    `yaml:"expiry"` // hours
	} `yaml:"jwt"`

	Seed bool `yaml:"seed"` // populate sample users on startup
}

// LoadConfig reads and validates the configuration file. Every connection
// parameter maps directly to a provider field, and a missing required field is
// an error so initialization fails fast instead of limping along with a
// half-configured provider.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	missing := []string{}
	if c.Server.Port == 0 {
		missing = append(missing, "server.port")
	}
	if c.Database.URI == "" {
		missing = append(missing, "database.uri")
	}
	if c.Cognito.AppClientId == "" {
		missing = append(missing, "cognito.appClientId")
	}
	if c.Cognito.AppClientSecret == "" {
		missing = append(missing, "cognito.appClientSecret")
	}
	if c.Cognito.UserPoolId == "" {
		missing = append(missing, "cognito.userPoolId")
	}
	if c.Cognito.Region == "" {
		missing = append(missing, "cognito.region")
	}
	if c.JWT.Secret == "" {
		missing = append(missing, "jwt.secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config missing required fields: %v", missing)
	}
	if c.JWT.Expiry == 0 {
		c.JWT.Expiry = 24
	}
	return nil
}
