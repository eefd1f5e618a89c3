package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/ratelimit"
	"repoprep/internal/utils"
)

const DefaultMaxAttempts = 2

type Config struct {
	Port      string
	Env       string
	LLM       LLMConfig
	RateLimit RateLimitConfig
}

// LLMConfig is the upstream provider configuration. APIKey may be empty; the
// handlers report that per request. MaxAttempts bounds retries of transient
// provider failures.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads .env (if present), then the process environment and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[1:], os.Getenv)
}

// Parse builds a Config from args and getenv. Environment values win over
// flag defaults, matching the deployment convention of PORT et al.
func Parse(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	env := func(k string) string { return strings.TrimSpace(getenv(k)) }

	if envPort := env("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	requests, err := intEnv(env("RATE_LIMIT_REQUESTS"), ratelimit.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
	}
	window, err := durationEnv(env("RATE_LIMIT_WINDOW"), ratelimit.DefaultWindow)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	timeout, err := durationEnv(env("OPENAI_TIMEOUT"), 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_TIMEOUT: %w", err)
	}
	attempts, err := intEnv(env("OPENAI_MAX_ATTEMPTS"), DefaultMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_MAX_ATTEMPTS: %w", err)
	}

	return &Config{
		Port: *port,
		Env:  utils.FirstNonEmpty(env("APP_ENV"), "local"),
		LLM: LLMConfig{
			APIKey:      env("OPENAI_API_KEY"),
			BaseURL:     utils.FirstNonEmpty(env("OPENAI_BASE_URL"), llmclient.DefaultBaseURL),
			Model:       utils.FirstNonEmpty(env("OPENAI_MODEL"), llmclient.DefaultModel),
			Timeout:     timeout,
			MaxAttempts: attempts,
		},
		RateLimit: RateLimitConfig{
			Requests: requests,
			Window:   window,
		},
	}, nil
}

func intEnv(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", v)
	}
	return v, nil
}

// durationEnv accepts Go durations ("90s") or a bare number of seconds.
func durationEnv(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		raw = strconv.Itoa(n) + "s"
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
