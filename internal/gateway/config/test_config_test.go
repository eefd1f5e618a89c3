package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "", cfg.LLM.APIKey)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLM.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2, cfg.LLM.MaxAttempts)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestParse_EnvOverridesFlag(t *testing.T) {
	cfg, err := Parse([]string{"-port", ":9000"}, envMap(map[string]string{
		"PORT":                "7000",
		"APP_ENV":             "production",
		"OPENAI_API_KEY":      " sk-test ",
		"OPENAI_MODEL":        "gpt-4o",
		"OPENAI_MAX_ATTEMPTS": "1",
		"RATE_LIMIT_REQUESTS": "5",
		"RATE_LIMIT_WINDOW":   "30",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 1, cfg.LLM.MaxAttempts)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestParse_FlagPort(t *testing.T) {
	cfg, err := Parse([]string{"-port", ":9000"}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Port)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(nil, envMap(map[string]string{"RATE_LIMIT_REQUESTS": "zero"}))
	assert.Error(t, err)
	_, err = Parse(nil, envMap(map[string]string{"RATE_LIMIT_REQUESTS": "-1"}))
	assert.Error(t, err)
	_, err = Parse(nil, envMap(map[string]string{"RATE_LIMIT_WINDOW": "soon"}))
	assert.Error(t, err)
	_, err = Parse([]string{"-bogus"}, envMap(nil))
	assert.Error(t, err)
}
