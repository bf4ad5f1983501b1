package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/prepwise/internal/llm"
)

// isolate points config discovery at an empty directory and clears the
// provider key variables a developer machine may have set.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("USER", "ana")
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"PREPWISE_LLM_PROVIDER", "PREPWISE_DB", "PREPWISE_LEARNER", "PREPWISE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "ana", cfg.Learner)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 1024, cfg.Coach.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)

	_, ok := cfg.LLMProvider()
	assert.False(t, ok, "no keys means no provider")
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
learner: ravi
log:
  level: info
  file: /tmp/prepwise.log
llm:
  provider: openrouter
  timeout: 45s
  openrouter:
    api_key: sk-or-file
    model: openai/gpt-4o-mini
coach:
  temperature: 0.1
`)
	t.Setenv("PREPWISE_LOG_LEVEL", "debug")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "ravi", cfg.Learner)
	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, "/tmp/prepwise.log", cfg.Log.File)
	assert.Equal(t, 0.1, cfg.Coach.Temperature)

	lc, ok := cfg.LLMProvider()
	require.True(t, ok)
	assert.Equal(t, llm.ProviderOpenRouter, lc.Provider)
	assert.Equal(t, 45*time.Second, lc.Timeout)
	assert.Equal(t, "sk-or-file", lc.OpenRouter.APIKey)
	assert.Equal(t, "openai/gpt-4o-mini", lc.OpenRouter.Model)
	assert.NoError(t, lc.Validate())
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	isolate(t)
	t.Setenv("PREPWISE_LEARNER", "env-learner")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("learner", "", "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--learner", "flag-learner", "--db", "/tmp/x.db"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "flag-learner", cfg.Learner)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "warn", cfg.Log.Level, "unset flag keeps the default")
}

func TestStandardKeysDiscoverProvider(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	lc, ok := cfg.LLMProvider()
	require.True(t, ok)
	assert.Equal(t, llm.ProviderAnthropic, lc.Provider)
	assert.Equal(t, "sk-ant", lc.Anthropic.APIKey)

	t.Setenv("PREPWISE_LLM_ANTHROPIC_API_KEY", "sk-prepwise")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-prepwise", cfg.LLM.Anthropic.APIKey, "prefixed key wins")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadDiscoversDefaultFile(t *testing.T) {
	isolate(t)
	dir, err := DefaultDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("learner: meera\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "meera", cfg.Learner)
}

func TestDBPath(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	cfg := &Config{}
	p, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "prepwise", "prepwise.db"), p)

	cfg.DB = filepath.Join(t.TempDir(), "nested", "p.db")
	p, err = cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, cfg.DB, p)
	assert.DirExists(t, filepath.Dir(cfg.DB))
}
