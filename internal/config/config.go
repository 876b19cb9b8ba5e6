package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// APIKeyEnv is consulted when no mirror API key is configured.
const APIKeyEnv = "SKILLTIME_API_KEY"

// Config holds application configuration.
type Config struct {
	// MirrorBaseURL is the chat-completions endpoint base for the
	// growth mirror service.
	MirrorBaseURL string `json:"mirror_base_url,omitempty"`

	// MirrorModel is the model name sent with comparison requests.
	MirrorModel string `json:"mirror_model,omitempty"`

	// MirrorAPIKey authenticates against the mirror service.
	// Supports the ${ENV_VAR} placeholder form.
	MirrorAPIKey string `json:"mirror_api_key,omitempty"`

	// CreatorKey gates the creator panel in settings. This is a UI
	// preference toggle for a single-user local app, not access control.
	CreatorKey string `json:"creator_key,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "vault".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MirrorBaseURL: "https://api.deepseek.com",
		MirrorModel:   "deepseek-chat",
		CreatorKey:    "KADHIR_AUTHORITY_2024",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.skilltime.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	cfg.MirrorAPIKey = expandEnv(cfg.MirrorAPIKey)
	if cfg.MirrorAPIKey == "" {
		cfg.MirrorAPIKey = os.Getenv(APIKeyEnv)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path, merged over defaults.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MirrorBaseURL = overlayString(base.MirrorBaseURL, overlay.MirrorBaseURL)
	result.MirrorModel = overlayString(base.MirrorModel, overlay.MirrorModel)
	result.MirrorAPIKey = overlayString(base.MirrorAPIKey, overlay.MirrorAPIKey)
	result.CreatorKey = overlayString(base.CreatorKey, overlay.CreatorKey)

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}
	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// overlayString returns overlay if non-empty, else base.
func overlayString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// expandEnv expands a ${VAR} placeholder into the environment value.
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
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
