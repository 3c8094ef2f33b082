package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Model     ModelConfig     `yaml:"model"`
	LLM       LLMConfig       `yaml:"llm"`
	Chat      ChatConfig      `yaml:"chat"`
	Gazetteer GazetteerConfig `yaml:"gazetteer"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ModelConfig points at the classifier artifact. An empty path falls back to
// the well-known search locations.
type ModelConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig contains ChatGPT/OpenAI settings for the prose layer. An empty
// API key disables prose generation; replies then use the deterministic
// templates.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// ChatConfig controls the orchestrator and its persistence.
type ChatConfig struct {
	Prompt             string         `yaml:"prompt"`
	HistoryMaxTokens   int            `yaml:"historyMaxTokens"`
	HistoryMaxMessages int            `yaml:"historyMaxMessages"`
	ContextTTL         time.Duration  `yaml:"contextTtl"`
	Valkey             ValkeyConfig   `yaml:"valkey"`
	Postgres           PostgresConfig `yaml:"postgres"`
}

// ValkeyConfig contains connection information for the context store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings for the transcript log.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// GazetteerConfig points at an optional YAML table of extra place names.
type GazetteerConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("CHAT_PROMPT"); v != "" {
		cfg.Chat.Prompt = v
	}
	if v := os.Getenv("CHAT_HISTORY_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.HistoryMaxTokens = parsed
		}
	}
	if v := os.Getenv("CHAT_HISTORY_MAX_MESSAGES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.HistoryMaxMessages = parsed
		}
	}
	if v := os.Getenv("CHAT_CONTEXT_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Chat.ContextTTL = parsed
		}
	}
	if v := os.Getenv("CHAT_VALKEY_ENABLED"); v != "" {
		cfg.Chat.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CHAT_VALKEY_ADDR"); v != "" {
		cfg.Chat.Valkey.Addr = v
	}
	if v := os.Getenv("CHAT_POSTGRES_DSN"); v != "" {
		cfg.Chat.Postgres.DSN = v
	}
	if v := os.Getenv("CHAT_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("CHAT_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("GAZETTEER_PATH"); v != "" {
		cfg.Gazetteer.Path = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Chat: ChatConfig{
			Prompt:             "You are a helpful public-safety assistant. You report crime risk predictions produced by a trained model and you never invent or rescale probabilities.",
			HistoryMaxTokens:   4000,
			HistoryMaxMessages: 50,
			ContextTTL:         24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Chat.Prompt == "" {
		return errors.New("chat.prompt cannot be empty")
	}
	if c.Chat.HistoryMaxTokens < 0 {
		return errors.New("chat.historyMaxTokens cannot be negative")
	}
	if c.Chat.HistoryMaxMessages < 0 {
		return errors.New("chat.historyMaxMessages cannot be negative")
	}
	if c.Chat.ContextTTL < 0 {
		return errors.New("chat.contextTtl cannot be negative")
	}
	if c.Chat.Valkey.Enabled && strings.TrimSpace(c.Chat.Valkey.Addr) == "" {
		return errors.New("chat.valkey.addr cannot be empty when the valkey store is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
