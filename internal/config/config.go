package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	DNS       DNSConfig       `mapstructure:"dns"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	SocketPath string `mapstructure:"socket_path"`
}

type LLMConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

type DNSConfig struct {
	DaemonConfigPath string   `mapstructure:"daemon_config_path"`
	Resolvers        []string `mapstructure:"resolvers"`
	RestartCommand   []string `mapstructure:"restart_command"`
}

type LoggingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type AssistantConfig struct {
	LogTailChars          int `mapstructure:"log_tail_chars"`
	LogTailLines          int `mapstructure:"log_tail_lines"`
	TroubleshootTailLines int `mapstructure:"troubleshoot_tail_lines"`
	RestartSettleSeconds  int `mapstructure:"restart_settle_seconds"`
	LLMTimeoutSeconds     int `mapstructure:"llm_timeout_seconds"`
}

func Load() (*Config, error) {
	var cfg Config

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.socket_path", "")

	viper.SetDefault("llm.enabled", true)
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.api_key_env", "GEMINI_API_KEY")

	viper.SetDefault("dns.daemon_config_path", "/etc/docker/daemon.json")
	viper.SetDefault("dns.resolvers", []string{"8.8.8.8", "8.8.4.4"})
	viper.SetDefault("dns.restart_command", []string{"systemctl", "restart", "docker"})

	viper.SetDefault("logging.enabled", true)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.dir", "logs")
	viper.SetDefault("logging.file", "dockhand.log")
	viper.SetDefault("logging.max_size", 10)
	viper.SetDefault("logging.max_backups", 5)
	viper.SetDefault("logging.max_age", 30)
	viper.SetDefault("logging.compress", true)

	viper.SetDefault("assistant.log_tail_chars", 400)
	viper.SetDefault("assistant.log_tail_lines", 50)
	viper.SetDefault("assistant.troubleshoot_tail_lines", 30)
	viper.SetDefault("assistant.restart_settle_seconds", 5)
	viper.SetDefault("assistant.llm_timeout_seconds", 15)

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %v", err)
	}

	// Validate
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port must be between 1 and 65535")
	}

	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	isValid := false
	for _, valid := range validLevels {
		if cfg.Logging.Level == valid {
			isValid = true
			break
		}
	}
	if !isValid {
		return nil, fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	if len(cfg.DNS.Resolvers) == 0 {
		return nil, fmt.Errorf("dns.resolvers must list at least one nameserver")
	}
	if cfg.DNS.DaemonConfigPath == "" {
		return nil, fmt.Errorf("dns.daemon_config_path is required")
	}

	if cfg.Assistant.LogTailChars < 1 {
		return nil, fmt.Errorf("assistant.log_tail_chars must be positive")
	}
	if cfg.Assistant.TroubleshootTailLines < 1 {
		return nil, fmt.Errorf("assistant.troubleshoot_tail_lines must be positive")
	}

	if cfg.LLM.Enabled && cfg.LLM.APIKeyEnv == "" {
		return nil, fmt.Errorf("llm.api_key_env is required when llm.enabled is true")
	}

	return &cfg, nil
}

// APIKey reads the configured environment variable holding the LLM API key.
// An empty result means the LLM collaborator stays disabled.
func (c *LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		log.Debug().Str("env", c.APIKeyEnv).Msg("LLM API key environment variable is empty")
	}
	return key
}
