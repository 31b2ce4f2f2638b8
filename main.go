package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/core"
	logx "github.com/proposal-review/advisor/pkg/logger"
	pkgredis "github.com/proposal-review/advisor/pkg/redis"
)

// AppConfig defines all configurable parameters of the advisor, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config
	Store model.StoreConfig
	HTTP  model.HTTPConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Assistant model.AssistantModelConfig
	Prompt    model.PromptConfig
	Session   model.SessionConfig
}

// loadConfig reads .env when present and binds the environment.
func loadConfig(envFile string) (AppConfig, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return AppConfig{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("process environment config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
