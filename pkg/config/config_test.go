package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "gemini", cfg.Agent.Provider)
	require.Equal(t, 50, cfg.Agent.MemoryLimit)
	require.Equal(t, 3, cfg.Analysis.SalesWindowMonths)
	require.Equal(t, 20, cfg.Analysis.AdequateStockSlots)
	require.Equal(t, 5, cfg.Analysis.DefaultMinAlert)
	require.Equal(t, "https://google.serper.dev/search", cfg.Search.Endpoint)
	require.Equal(t, 18850, cfg.Gateway.Port)
	require.Equal(t, "0 8 * * *", cfg.Monitor.Schedule)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope", "config.json"))
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.Agent.Provider)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BIZAGENT_AGENT_PROVIDER", "openai")
	t.Setenv("BIZAGENT_GATEWAY_PORT", "9999")
	t.Setenv("BIZAGENT_ANALYSIS_DEFAULT_MIN_ALERT", "7")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.Equal(t, "openai", cfg.Agent.Provider)
	require.Equal(t, 9999, cfg.Gateway.Port)
	require.Equal(t, 7, cfg.Analysis.DefaultMinAlert)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Agent.Provider = "openai"
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Monitor.Enabled = true

	require.NoError(t, SaveConfig(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "openai", loaded.Agent.Provider)
	require.Equal(t, "sk-test", loaded.Providers.OpenAI.APIKey)
	require.True(t, loaded.Monitor.Enabled)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestActiveProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.Provider = "  OpenAI  "
	require.Equal(t, "openai", cfg.ActiveProvider())

	cfg.Agent.Provider = ""
	require.Equal(t, "gemini", cfg.ActiveProvider())
}

func TestGeminiAPIBase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers.Gemini.APIBase = "https://example.com/models/"
	require.Equal(t, "https://example.com/models", cfg.GeminiAPIBase())

	cfg.Providers.Gemini.APIBase = ""
	require.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models", cfg.GeminiAPIBase())
}
