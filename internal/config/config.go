package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the console backend.
type Config struct {
	DB struct {
		URL        string `mapstructure:"url"`
		ServiceKey string `mapstructure:"service_key"`
	} `mapstructure:"db"`
	Transformer struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
		URL    string `mapstructure:"url"`
	} `mapstructure:"transformer"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// The backend connection values are validated here so a misconfigured
// process fails at startup rather than on the first query.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvPrefix("NEXUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("transformer.model", "gemini-3-pro-preview")

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional when the environment carries the values.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := ValidateBackend(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ValidateBackend enforces the fail-loud contract for the hosted backend:
// both the URL and the service key must be present and must not be the
// placeholder values shipped with the sample config.
func ValidateBackend(cfg *Config) error {
	url := strings.TrimSpace(cfg.DB.URL)
	key := strings.TrimSpace(cfg.DB.ServiceKey)

	if url == "" || strings.Contains(url, "your-project") {
		return fmt.Errorf("backend URL is missing or still a placeholder: set db.url (NEXUS_DB_URL)")
	}
	if key == "" || strings.Contains(key, "your-service-key") {
		return fmt.Errorf("backend service key is missing or still a placeholder: set db.service_key (NEXUS_DB_SERVICE_KEY)")
	}
	return nil
}
