package config

import (
	"fmt"
	"strings"

	"github.com/solatis/codematch/internal/types"
	"github.com/spf13/viper"
)

// templateEntry is the file representation of a custom template.
type templateEntry struct {
	Project  string `mapstructure:"project"`
	ID       string `mapstructure:"id"`
	Template string `mapstructure:"template"`
}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultCodeAPIConfig()
	v.SetDefault("code_api.host", defaults.Host)
	v.SetDefault("code_api.port", defaults.Port)
	v.SetDefault("code_api.request_timeout", defaults.RequestTimeout.String())
	v.SetDefault("code_api.max_code_length", defaults.MaxCodeLength)
	v.SetDefault("code_api.metrics_port", defaults.MetricsPort)

	v.SetEnvPrefix("CM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		CodeAPI: CodeAPIConfig{
			Host:           v.GetString("code_api.host"),
			Port:           v.GetInt("code_api.port"),
			RequestTimeout: v.GetDuration("code_api.request_timeout"),
			MaxCodeLength:  v.GetInt("code_api.max_code_length"),
			MetricsPort:    v.GetInt("code_api.metrics_port"),
		},
	}

	var entries []templateEntry
	if err := v.UnmarshalKey("templates", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("templates[%d]: id is required", i)
		}
		cfg.Templates = append(cfg.Templates, types.TemplateDefinition{
			Project:  types.ProjectID(e.Project),
			ID:       e.ID,
			Template: e.Template,
		})
	}

	if err := validateConfig(&cfg.CodeAPI); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive limits.
func validateConfig(cfg *CodeAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port must be between 0 and 65535, got %d", cfg.MetricsPort)
	}
	if cfg.MetricsPort != 0 && cfg.MetricsPort == cfg.Port {
		return fmt.Errorf("metrics_port must differ from port %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxCodeLength <= 0 || cfg.MaxCodeLength > types.MaxCodeLength {
		return fmt.Errorf("max_code_length must be between 1 and %d, got %d", types.MaxCodeLength, cfg.MaxCodeLength)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets.
// InConfig ignores the environment, so CM_HMAC_SECRET itself never trips this.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("code_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use CM_HMAC_SECRET environment variable)")
	}
	return nil
}
