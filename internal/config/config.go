// Package config handles configuration loading and management for kubescout.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for kubescout.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Research  ResearchConfig  `mapstructure:"research"`
	Agents    AgentsConfig    `mapstructure:"agents"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// PlannerConfig holds planning loop settings.
type PlannerConfig struct {
	// MaxTurns bounds the planner conversation before it is declared stalled.
	MaxTurns int `mapstructure:"max_turns"`
	// MaxRevisions bounds how many times a human can send the plan back
	// for revision within one session.
	MaxRevisions int `mapstructure:"max_revisions"`
	// MaxTokens is the per-call output token limit for planning.
	MaxTokens int `mapstructure:"max_tokens"`
}

// ResearchConfig holds dispatch loop settings.
type ResearchConfig struct {
	// MaxSupervisorTurns bounds the supervisor conversation per task.
	MaxSupervisorTurns int `mapstructure:"max_supervisor_turns"`
	// MaxWorkerTurns bounds each worker agent's research loop.
	MaxWorkerTurns int `mapstructure:"max_worker_turns"`
	// MaxTokens is the per-call output token limit for research.
	MaxTokens int `mapstructure:"max_tokens"`
}

// AgentsConfig holds worker agent roster settings.
type AgentsConfig struct {
	// File is the path to the YAML agent roster. Empty means the
	// built-in roster.
	File string `mapstructure:"file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.kubescout.yaml in current directory or parent)
// 3. User config (~/.config/kubescout/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.use_bedrock", "CLAUDE_CODE_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("planner.max_turns", 20)
	v.SetDefault("planner.max_revisions", 10)
	v.SetDefault("planner.max_tokens", 8192)

	v.SetDefault("research.max_supervisor_turns", 30)
	v.SetDefault("research.max_worker_turns", 15)
	v.SetDefault("research.max_tokens", 8192)

	v.SetDefault("agents.file", "")
}

// getUserConfigDir returns the XDG config directory for kubescout.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "kubescout")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "kubescout")
	}
	return filepath.Join(home, ".config", "kubescout")
}

// findProjectConfig searches for .kubescout.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".kubescout.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxTurns:     20,
			MaxRevisions: 10,
			MaxTokens:    8192,
		},
		Research: ResearchConfig{
			MaxSupervisorTurns: 30,
			MaxWorkerTurns:     15,
			MaxTokens:          8192,
		},
	}
}
