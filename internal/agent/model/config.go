package model

import "time"

// ================ Config ================
type AssistantModelConfig struct {
	Model          string  `envconfig:"ASSISTANT_MODEL" default:"gemini-3-flash-preview"`
	MaxTokens      int     `envconfig:"ASSISTANT_MAX_TOKENS" default:"2048"`
	Temperature    float32 `envconfig:"ASSISTANT_TEMPERATURE" default:"0.4"`
	ThinkingBudget int32   `envconfig:"ASSISTANT_THINKING_BUDGET" default:"0"`
}

type PromptConfig struct {
	ProgramName string `envconfig:"PROMPT_PROGRAM_NAME" default:"AIOS 2025-2026 University-Enterprise Co-Creation Program"`
	Focus       string `envconfig:"PROMPT_FOCUS" default:"technical feasibility and investment value"`
}

type SessionConfig struct {
	RequestTimeout   time.Duration `envconfig:"SESSION_REQUEST_TIMEOUT" default:"60s"`
	IdleTTL          time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	HistoryWarnTurns int           `envconfig:"SESSION_HISTORY_WARN_TURNS" default:"40"`
}

type StoreConfig struct {
	Backend      string        `envconfig:"STORE_BACKEND" default:"redis"`
	KeyPrefix    string        `envconfig:"STORE_KEY_PREFIX" default:"review"`
	SQLitePath   string        `envconfig:"STORE_SQLITE_PATH" default:"data"`
	WriteTimeout time.Duration `envconfig:"STORE_WRITE_TIMEOUT" default:"5s"`
}

type HTTPConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

const (
	StoreBackendRedis  = "redis"
	StoreBackendSQLite = "sqlite"
	StoreBackendMemory = "memory"
)
