// Package config loads prepwise settings from a YAML file, PREPWISE_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/store"
)

// EnvPrefix is prepended to every environment key, e.g. PREPWISE_LLM_PROVIDER.
const EnvPrefix = "PREPWISE"

type Config struct {
	DB      string         `mapstructure:"db"`
	Learner string         `mapstructure:"learner"`
	Log     logging.Config `mapstructure:"log"`
	LLM     LLMConfig      `mapstructure:"llm"`
	Coach   CoachConfig    `mapstructure:"coach"`
}

type LLMConfig struct {
	Provider   string         `mapstructure:"provider"`
	Timeout    time.Duration  `mapstructure:"timeout"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// CoachConfig tunes the assessment debrief request.
type CoachConfig struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"db":        "db",
	"learner":   "learner",
	"log.level": "log-level",
}

// standardKeys are the provider-native API key variables, checked after
// the PREPWISE_ ones.
var standardKeys = map[string]string{
	"llm.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"llm.openai.api_key":     "OPENAI_API_KEY",
	"llm.gemini.api_key":     "GEMINI_API_KEY",
	"llm.openrouter.api_key": "OPENROUTER_API_KEY",
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("learner", defaultLearner())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("coach.max_tokens", 1024)
	v.SetDefault("coach.temperature", 0.3)
	for key := range standardKeys {
		v.SetDefault(key, "")
	}
}

// Load reads configuration. An empty path looks for config.yaml in
// DefaultDir and tolerates its absence; an explicit path must exist.
// Flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, std := range standardKeys {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, std); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if strings.TrimSpace(cfg.Learner) == "" {
		return nil, errors.New("learner must not be empty")
	}
	return &cfg, nil
}

// DefaultDir is $XDG_CONFIG_HOME/prepwise, or ~/.config/prepwise.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "prepwise"), nil
}

// DBPath returns the configured database path, falling back to the XDG
// data directory. The parent directory is created.
func (c *Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, store.EnsureDir(c.DB)
	}
	return store.DefaultDBPath()
}

// LLMProvider converts to the llm package's configuration, discovering a
// provider from the available API keys when none is named. The boolean
// is false when no provider could be selected.
func (c *Config) LLMProvider() (llm.Config, bool) {
	out := llm.DefaultConfig()
	out.Provider = c.LLM.Provider
	if c.LLM.Timeout > 0 {
		out.Timeout = c.LLM.Timeout
	}

	out.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: or(c.LLM.Anthropic.Model, out.Anthropic.Model)}
	out.OpenAI = llm.OpenAIConfig{
		APIKey:  c.LLM.OpenAI.APIKey,
		Model:   or(c.LLM.OpenAI.Model, out.OpenAI.Model),
		BaseURL: c.LLM.OpenAI.BaseURL,
	}
	out.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: or(c.LLM.Gemini.Model, out.Gemini.Model)}
	out.OpenRouter = llm.OpenRouterConfig{
		APIKey:  c.LLM.OpenRouter.APIKey,
		Model:   or(c.LLM.OpenRouter.Model, out.OpenRouter.Model),
		BaseURL: c.LLM.OpenRouter.BaseURL,
	}

	ok := out.Discover()
	return out, ok
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func defaultLearner() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if u := os.Getenv(k); u != "" {
			return u
		}
	}
	return "learner"
}
