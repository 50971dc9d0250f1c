package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for the Supriya
// assistant. It is loaded from ~/.supriya/config.yaml and can be
// overridden by environment variables.
type Config struct {
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch" yaml:"dispatch"`
	Realtime   RealtimeConfig   `mapstructure:"realtime" yaml:"realtime"`
	Handlers   HandlersConfig   `mapstructure:"handlers" yaml:"handlers"`
	Data       DataConfig       `mapstructure:"data" yaml:"data"`
	Voice      VoiceConfig      `mapstructure:"voice" yaml:"voice"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// SessionConfig identifies the user and the assistant persona.
type SessionConfig struct {
	// Username is the name the assistant addresses the user by
	Username string `mapstructure:"username" yaml:"username"`
	// AssistantName is the assistant's own name
	AssistantName string `mapstructure:"assistant_name" yaml:"assistant_name"`
	// HistoryLimit caps the number of transcript messages kept in memory
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// LLMConfig contains configuration for Language Model providers.
type LLMConfig struct {
	// DecisionProvider is the provider used for intent classification
	DecisionProvider string `mapstructure:"decision_provider" yaml:"decision_provider"`
	// ChatProvider is the provider used for conversational replies
	ChatProvider string `mapstructure:"chat_provider" yaml:"chat_provider"`
	// Providers maps provider names to their specific configuration
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// ProviderConfig contains configuration for a specific LLM provider.
type ProviderConfig struct {
	// Endpoint is the API endpoint URL
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// APIKey is the authentication key for the provider
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Model is the specific model to use with this provider
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// TimeoutSec bounds one request to the provider
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// ClassifierConfig tunes the intent classification stage.
type ClassifierConfig struct {
	// MaxRetries is how many extra decision calls an ambiguous result earns
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// DispatchConfig tunes the action dispatch stage.
type DispatchConfig struct {
	// HandlerTimeout bounds one action handler (e.g. "30s")
	HandlerTimeout time.Duration `mapstructure:"handler_timeout" yaml:"handler_timeout"`
}

// RealtimeConfig tunes the realtime search stage.
type RealtimeConfig struct {
	// ResultLimit is how many search results feed the search answer
	ResultLimit int `mapstructure:"result_limit" yaml:"result_limit"`
}

// HandlersConfig tunes the action handlers.
type HandlersConfig struct {
	// ContentDir is where drafted content is saved
	ContentDir string `mapstructure:"content_dir" yaml:"content_dir"`
	// Editor is the command used to open drafted content
	Editor string `mapstructure:"editor" yaml:"editor"`
	// SearchRoot is where file searches start from
	SearchRoot string `mapstructure:"search_root" yaml:"search_root"`
	// CaptureDir is where screenshots and webcam captures are saved
	CaptureDir string `mapstructure:"capture_dir" yaml:"capture_dir"`
	// AllowPower enables shutdown and restart commands
	AllowPower bool `mapstructure:"allow_power" yaml:"allow_power"`
}

// DataConfig locates the local database.
type DataConfig struct {
	// DBPath is the path to the SQLite database
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// VoiceConfig holds settings for the speech bridge.
type VoiceConfig struct {
	// Enabled controls whether the speech bridge is used
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// BridgeURL is the WebSocket URL of the speech bridge
	BridgeURL string `mapstructure:"bridge_url" yaml:"bridge_url"`
	// ReconnectDelay is the delay between reconnection attempts (in seconds)
	ReconnectDelay int `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	// MaxReconnects is the maximum number of reconnection attempts (0 = infinite)
	MaxReconnects int `mapstructure:"max_reconnects" yaml:"max_reconnects"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file; empty logs to stderr only
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".supriya")

	return &Config{
		Session: SessionConfig{
			Username:      "Arya",
			AssistantName: "Supriya",
			HistoryLimit:  40,
		},
		LLM: LLMConfig{
			DecisionProvider: "cohere",
			ChatProvider:     "groq",
			Providers: map[string]ProviderConfig{
				"cohere": {
					Endpoint:   "https://api.cohere.com/v1",
					APIKey:     "",
					Model:      "command-r-plus",
					TimeoutSec: 60,
				},
				"groq": {
					Endpoint:   "https://api.groq.com/openai/v1",
					APIKey:     "",
					Model:      "llama3-70b-8192",
					TimeoutSec: 60,
				},
			},
		},
		Classifier: ClassifierConfig{
			MaxRetries: 3,
		},
		Dispatch: DispatchConfig{
			HandlerTimeout: 30 * time.Second,
		},
		Realtime: RealtimeConfig{
			ResultLimit: 5,
		},
		Handlers: HandlersConfig{
			ContentDir: filepath.Join(dataDir, "content"),
			Editor:     defaultEditor(),
			SearchRoot: homeDir,
			CaptureDir: filepath.Join(dataDir, "captures"),
			AllowPower: false,
		},
		Data: DataConfig{
			DBPath: filepath.Join(dataDir, "supriya.db"),
		},
		Voice: VoiceConfig{
			Enabled:        false,
			BridgeURL:      "ws://127.0.0.1:8765/ws/speech",
			ReconnectDelay: 5,
			MaxReconnects:  10,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "logs", "supriya.log"),
		},
	}
}

func defaultEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return "nano"
}

// Load reads configuration from the default location
// (~/.supriya/config.yaml) and merges with environment variables. If
// no config file exists, it creates one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".supriya", "config.yaml")
	return LoadFromPath(configPath)
}

// LoadFromPath reads configuration from a specific file path and
// merges with environment variables. If the file doesn't exist, it
// creates one with default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	// Example: SUPRIYA_LLM_PROVIDERS_COHERE_API_KEY
	v.SetEnvPrefix("SUPRIYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Data.DBPath = expandPath(cfg.Data.DBPath)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.Handlers.ContentDir = expandPath(cfg.Handlers.ContentDir)
	cfg.Handlers.SearchRoot = expandPath(cfg.Handlers.SearchRoot)
	cfg.Handlers.CaptureDir = expandPath(cfg.Handlers.CaptureDir)

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing values so a hand-trimmed config file
// still yields a runnable assistant.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Session.Username == "" {
		c.Session.Username = defaults.Session.Username
	}
	if c.Session.AssistantName == "" {
		c.Session.AssistantName = defaults.Session.AssistantName
	}
	if c.Session.HistoryLimit == 0 {
		c.Session.HistoryLimit = defaults.Session.HistoryLimit
	}
	if c.Classifier.MaxRetries == 0 {
		c.Classifier.MaxRetries = defaults.Classifier.MaxRetries
	}
	if c.Dispatch.HandlerTimeout == 0 {
		c.Dispatch.HandlerTimeout = defaults.Dispatch.HandlerTimeout
	}
	if c.Realtime.ResultLimit == 0 {
		c.Realtime.ResultLimit = defaults.Realtime.ResultLimit
	}
	if c.Voice.Enabled {
		if c.Voice.BridgeURL == "" {
			c.Voice.BridgeURL = defaults.Voice.BridgeURL
		}
		if c.Voice.ReconnectDelay == 0 {
			c.Voice.ReconnectDelay = defaults.Voice.ReconnectDelay
		}
		if c.Voice.MaxReconnects == 0 {
			c.Voice.MaxReconnects = defaults.Voice.MaxReconnects
		}
	}
}

// Save writes the current configuration to the default config file
// location.
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".supriya", "config.yaml")
	return c.SaveToPath(configPath)
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// GetDataDir returns the Supriya data directory path (~/.supriya).
func (c *Config) GetDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".supriya")
}

// EnsureDirectories creates all directories the assistant writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.GetDataDir(),
		filepath.Dir(c.Data.DBPath),
		c.Handlers.ContentDir,
		c.Handlers.CaptureDir,
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Validate checks the configuration for common errors and
// inconsistencies.
func (c *Config) Validate() error {
	if c.LLM.DecisionProvider == "" {
		return fmt.Errorf("llm.decision_provider cannot be empty")
	}
	if _, exists := c.LLM.Providers[c.LLM.DecisionProvider]; !exists {
		return fmt.Errorf("decision provider '%s' not found in providers map", c.LLM.DecisionProvider)
	}

	if c.LLM.ChatProvider == "" {
		return fmt.Errorf("llm.chat_provider cannot be empty")
	}
	if _, exists := c.LLM.Providers[c.LLM.ChatProvider]; !exists {
		return fmt.Errorf("chat provider '%s' not found in providers map", c.LLM.ChatProvider)
	}

	if c.Classifier.MaxRetries < 0 {
		return fmt.Errorf("classifier.max_retries cannot be negative")
	}

	if c.Dispatch.HandlerTimeout < 0 {
		return fmt.Errorf("dispatch.handler_timeout cannot be negative")
	}

	if c.Realtime.ResultLimit < 1 {
		return fmt.Errorf("realtime.result_limit must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// writeConfigFile writes a Config struct to a YAML file.
// Uses gopkg.in/yaml.v3 directly to ensure proper tag-based serialization.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
