package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds runtime configuration that is not user-editable from the menus.
type Config struct {
	Endpoint    string
	Model       string
	Temperature float64
	StorePath   string
	LogFile     string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    DefaultEndpoint,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
}

// LoadConfig builds the configuration from the environment, falling back to defaults.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Endpoint = getEnvOrDefault(EnvEndpoint, cfg.Endpoint)
	cfg.Model = getEnvOrDefault(EnvModel, cfg.Model)
	cfg.Temperature = getEnvFloatOrDefault(EnvTemperature, cfg.Temperature)
	cfg.LogFile = os.Getenv(EnvLogFile)

	cfg.StorePath = os.Getenv(EnvStorePath)
	if cfg.StorePath == "" {
		path, err := defaultStorePath()
		if err != nil {
			return nil, err
		}
		cfg.StorePath = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %g", c.Temperature)
	}
	if c.StorePath == "" {
		return fmt.Errorf("settings path cannot be empty")
	}
	return nil
}

// defaultStorePath places the settings file in the user's config directory.
func defaultStorePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, AppConfigDir, SettingsFileName), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Settings are the user-editable values persisted in the settings store.
type Settings struct {
	APIKey        string
	AssistantName string
	Personality   string
	UserName      string
}

// LoadSettings reads every recognized key from the store, using documented defaults.
func LoadSettings(store *Store) Settings {
	return Settings{
		APIKey:        store.Get(KeyAPIKey, DefaultAPIKey),
		AssistantName: store.Get(KeyAssistantName, DefaultAssistantName),
		Personality:   store.Get(KeyPersonality, DefaultPersonality),
		UserName:      store.Get(KeyUserName, DefaultUserName),
	}
}

// Constants for the application
const (
	AppName          = "CLI GPT"
	AppConfigDir     = "cligpt"
	SettingsFileName = "settings.env"
	AppVersion       = "1.1.0"

	// HistoryCapacity is the number of turns replayed to the endpoint.
	HistoryCapacity = 10
	// PersonalityMaxLength is measured in characters, not bytes.
	PersonalityMaxLength = 100

	// ExitCommand ends the chat when entered verbatim.
	ExitCommand = "exit"
)

// Endpoint and generation defaults
const (
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
)

// Environment variable names
const (
	EnvStorePath   = "CLIGPT_CONFIG"
	EnvEndpoint    = "CLIGPT_ENDPOINT"
	EnvModel       = "CLIGPT_MODEL"
	EnvTemperature = "CLIGPT_TEMPERATURE"
	EnvLogFile     = "CLIGPT_LOG_FILE"
)

// Recognized setting keys
const (
	KeyAPIKey        = "GPT_KEY"
	KeyAssistantName = "GPT_NAME"
	KeyPersonality   = "PERSONALITY"
	KeyUserName      = "USER_NAME"
)

// Setting defaults
const (
	DefaultAPIKey        = ""
	DefaultAssistantName = "ChatGPT"
	DefaultPersonality   = "Friendly AI"
	DefaultUserName      = "User"
)

// defaultSettings lists the recognized keys in the order they are first written.
func defaultSettings() []Setting {
	return []Setting{
		{Key: KeyAPIKey, Value: DefaultAPIKey},
		{Key: KeyAssistantName, Value: DefaultAssistantName},
		{Key: KeyPersonality, Value: DefaultPersonality},
		{Key: KeyUserName, Value: DefaultUserName},
	}
}
