// Package config loads and persists the assistant configuration as JSON under
// the user's home directory, with environment variable overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Provider string       `json:"provider"`
	Style    string       `json:"style"`
	Ollama   OllamaConfig `json:"ollama"`
	Gemini   GeminiConfig `json:"gemini"`
	Speech   SpeechConfig `json:"speech"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogFile   string `json:"log_file,omitempty"`
}

// OllamaConfig holds the local provider configuration
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// GeminiConfig holds the cloud provider configuration
type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// SpeechConfig holds voice input/output settings
type SpeechConfig struct {
	SoundEnabled    bool    `json:"sound_enabled"`
	Rate            float64 `json:"rate"`
	Pitch           float64 `json:"pitch"`
	STTProvider     string  `json:"stt_provider"`
	Language        string  `json:"language"`
	AutoSubmitVoice bool    `json:"auto_submit_voice"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		Provider: "local",
		Style:    "default",
		Ollama: OllamaConfig{
			Host:  "http://127.0.0.1:11434",
			Model: "mistral:latest",
		},
		Gemini: GeminiConfig{
			APIKey: "",
			Model:  "gemini-2.0-flash",
		},
		Speech: SpeechConfig{
			SoundEnabled:    true,
			Rate:            1.0,
			Pitch:           1.0,
			STTProvider:     "native",
			Language:        "en-US",
			AutoSubmitVoice: true,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load loads configuration from the specified path.
// If the file doesn't exist, creates one with default values.
// Environment variable overrides apply on top of whatever was loaded.
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		cfg = Default()
		if err := Save(configPath, cfg); err != nil {
			return Config{}, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		// Start from defaults so fields absent from older config files keep
		// their default values.
		cfg = Default()
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return applyEnvironmentOverrides(cfg), nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config
func applyEnvironmentOverrides(cfg Config) Config {
	if provider := os.Getenv("CLIPPY_PROVIDER"); provider != "" {
		cfg.Provider = strings.ToLower(provider)
	}

	if style := os.Getenv("CLIPPY_STYLE"); style != "" {
		cfg.Style = strings.ToLower(style)
	}

	if host := os.Getenv("CLIPPY_OLLAMA_HOST"); host != "" {
		cfg.Ollama.Host = host
	}

	if model := os.Getenv("CLIPPY_OLLAMA_MODEL"); model != "" {
		cfg.Ollama.Model = model
	}

	if model := os.Getenv("CLIPPY_GEMINI_MODEL"); model != "" {
		cfg.Gemini.Model = model
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.Gemini.APIKey = apiKey
	}

	if logLevel := os.Getenv("CLIPPY_LOG_LEVEL"); logLevel != "" {
		logLevel = strings.ToLower(logLevel)
		switch logLevel {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = logLevel
		}
	}

	if soundStr := os.Getenv("CLIPPY_SOUND"); soundStr != "" {
		if sound, err := strconv.ParseBool(soundStr); err == nil {
			cfg.Speech.SoundEnabled = sound
		}
	}

	return cfg
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	switch c.Provider {
	case "local", "gemini":
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}

	if strings.TrimSpace(c.Ollama.Host) == "" {
		return fmt.Errorf("ollama host is required")
	}

	if strings.TrimSpace(c.Ollama.Model) == "" {
		return fmt.Errorf("ollama model is required")
	}

	if strings.TrimSpace(c.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required")
	}

	switch c.Speech.STTProvider {
	case "native", "whisper":
	default:
		return fmt.Errorf("unsupported stt_provider: %s", c.Speech.STTProvider)
	}

	if c.Speech.Rate <= 0 || c.Speech.Rate > 4 {
		return fmt.Errorf("speech rate must be in (0, 4], got: %f", c.Speech.Rate)
	}

	if c.Speech.Pitch <= 0 || c.Speech.Pitch > 4 {
		return fmt.Errorf("speech pitch must be in (0, 4], got: %f", c.Speech.Pitch)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".clippy/config.json"
	}
	return filepath.Join(homeDir, ".clippy", "config.json")
}
