package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "Arya", cfg.Session.Username)
	assert.Equal(t, "Supriya", cfg.Session.AssistantName)
	assert.Equal(t, "cohere", cfg.LLM.DecisionProvider)
	assert.Equal(t, "groq", cfg.LLM.ChatProvider)
	assert.Equal(t, 3, cfg.Classifier.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.HandlerTimeout)
	assert.False(t, cfg.Handlers.AllowPower)
}

func TestLoadFromPathCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// The default file was written alongside.
	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, "command-r-plus", cfg.LLM.Providers["cohere"].Model)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Providers["groq"].Model)
}

func TestLoadFromPathReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
session:
  username: Priya
llm:
  decision_provider: cohere
  chat_provider: groq
  providers:
    cohere:
      model: command-r
    groq:
      model: llama3-8b-8192
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "Priya", cfg.Session.Username)
	assert.Equal(t, "command-r", cfg.LLM.Providers["cohere"].Model)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Missing values were backfilled.
	assert.Equal(t, "Supriya", cfg.Session.AssistantName)
	assert.Equal(t, 3, cfg.Classifier.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Dispatch.HandlerTimeout)
	assert.Equal(t, 5, cfg.Realtime.ResultLimit)
}

func TestSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Session.Username = "Priya"
	cfg.Classifier.MaxRetries = 5
	require.NoError(t, cfg.SaveToPath(path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "Priya", loaded.Session.Username)
	assert.Equal(t, 5, loaded.Classifier.MaxRetries)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty decision provider", func(c *Config) { c.LLM.DecisionProvider = "" }},
		{"unknown decision provider", func(c *Config) { c.LLM.DecisionProvider = "nope" }},
		{"empty chat provider", func(c *Config) { c.LLM.ChatProvider = "" }},
		{"unknown chat provider", func(c *Config) { c.LLM.ChatProvider = "nope" }},
		{"negative retries", func(c *Config) { c.Classifier.MaxRetries = -1 }},
		{"negative handler timeout", func(c *Config) { c.Dispatch.HandlerTimeout = -time.Second }},
		{"zero result limit", func(c *Config) { c.Realtime.ResultLimit = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		assert.Error(t, cfg.Validate(), tt.name)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".supriya"), expandPath("~/.supriya"))
	assert.Equal(t, "/tmp/other", expandPath("/tmp/other"))
}
