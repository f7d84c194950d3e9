package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskSchedulePlan TaskType = "schedule_plan"
)

// PlaceholderAPIKey is the value shipped in sample configs. It is treated
// the same as an absent key.
const PlaceholderAPIKey = "your_aiml_api_key_here"

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature *float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	LogCalls          bool
	Endpoint          string
	Model             string
	APIKey            string
	TimeoutMs         int
	RequestsPerMinute int // 0 disables client-side limiting
	Tasks             map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults. The API key is
// left empty; it must come from the config file or the environment.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		LogCalls:  false,
		Endpoint:  "https://api.aimlapi.com/v1/chat/completions",
		Model:     "anthropic/claude-opus-4-5",
		TimeoutMs: 30000,
		Tasks: map[TaskType]TaskConfig{
			TaskSchedulePlan: {MaxTokens: 2048},
		},
	}
}

// ApplyEnv overrides cfg with NORA_LLM_* environment variables. Unset or
// malformed values leave the existing setting alone.
func ApplyEnv(cfg *LLMConfig) {
	if v := os.Getenv("NORA_LLM_LOG_CALLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogCalls = b
		}
	}
	if v := os.Getenv("NORA_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("NORA_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("NORA_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("NORA_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("NORA_LLM_REQUESTS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("NORA_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if cfg.Tasks == nil {
				cfg.Tasks = map[TaskType]TaskConfig{}
			}
			tc := cfg.Tasks[TaskSchedulePlan]
			tc.MaxTokens = n
			cfg.Tasks[TaskSchedulePlan] = tc
		}
	}
}

// LoadConfig returns the defaults with environment overrides applied.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// HasCredential reports whether a usable API key is configured. Empty keys,
// the sample placeholder, and unexpanded build variables like
// "$(AIML_API_KEY)" count as missing.
func (c LLMConfig) HasCredential() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" || key == PlaceholderAPIKey {
		return false
	}
	return !strings.HasPrefix(key, "$(")
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
