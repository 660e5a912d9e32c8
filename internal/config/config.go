package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// GeminiAPIKey authenticates insight generation requests.
	// The GEMINI_API_KEY environment variable takes precedence.
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	// GeminiModel is the model used for insight generation.
	GeminiModel string `json:"gemini_model,omitempty"`

	// CheckupWindowDays is how far ahead the report looks for upcoming
	// checkups. Overdue checkups are always included.
	CheckupWindowDays int `json:"checkup_window_days,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GeminiModel:       "gemini-2.5-flash",
		CheckupWindowDays: 60,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.medtrack.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// APIKey returns the effective Gemini API key, with the environment
// variable taking precedence over the config file.
func (c *Config) APIKey() string {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key
	}
	return c.GeminiAPIKey
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.GeminiAPIKey = overlay.GeminiAPIKey
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = base.GeminiAPIKey
	}

	result.GeminiModel = overlay.GeminiModel
	if result.GeminiModel == "" {
		result.GeminiModel = base.GeminiModel
	}

	result.CheckupWindowDays = overlay.CheckupWindowDays
	if result.CheckupWindowDays == 0 {
		result.CheckupWindowDays = base.CheckupWindowDays
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
