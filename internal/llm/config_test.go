package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_SchedulePlanMaxTokens(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2048, cfg.Tasks[TaskSchedulePlan].MaxTokens)
	assert.Equal(t, "https://api.aimlapi.com/v1/chat/completions", cfg.Endpoint)
	assert.False(t, cfg.HasCredential())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NORA_LLM_API_KEY", "sk-live")
	t.Setenv("NORA_LLM_MODEL", "other-model")
	t.Setenv("NORA_LLM_TIMEOUT_MS", "9000")
	t.Setenv("NORA_LLM_MAX_TOKENS", "1024")
	t.Setenv("NORA_LLM_REQUESTS_PER_MINUTE", "6")
	t.Setenv("NORA_LLM_LOG_CALLS", "true")

	cfg := LoadConfig()

	assert.True(t, cfg.HasCredential())
	assert.Equal(t, "other-model", cfg.Model)
	assert.Equal(t, 9000, cfg.TaskTimeout(TaskSchedulePlan))
	assert.Equal(t, 1024, cfg.Tasks[TaskSchedulePlan].MaxTokens)
	assert.Equal(t, 6, cfg.RequestsPerMinute)
	assert.True(t, cfg.LogCalls)
}

func TestLoadConfig_InvalidOverridesIgnored(t *testing.T) {
	t.Setenv("NORA_LLM_TIMEOUT_MS", "soon")
	t.Setenv("NORA_LLM_REQUESTS_PER_MINUTE", "-3")

	cfg := LoadConfig()

	assert.Equal(t, 30000, cfg.TimeoutMs)
	assert.Equal(t, 0, cfg.RequestsPerMinute)
}

func TestHasCredential(t *testing.T) {
	cases := map[string]bool{
		"":                false,
		"  ":              false,
		PlaceholderAPIKey: false,
		"$(AIML_API_KEY)": false,
		"sk-abc123":       true,
	}
	for key, want := range cases {
		cfg := DefaultConfig()
		cfg.APIKey = key
		assert.Equal(t, want, cfg.HasCredential(), "key %q", key)
	}
}
