// Package gateconfig loads the gate's configuration from a JSON
// document, an optional YAML overlay, and environment-variable
// overrides prefixed MAOS_.
package gateconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/maos-gate/gate/internal/gateerr"
)

// Config is the gate's four configuration sub-sections (spec.md §6).
type Config struct {
	Hooks    HooksConfig    `json:"hooks" yaml:"hooks"`
	System   SystemConfig   `json:"system" yaml:"system"`
	Security SecurityConfig `json:"security" yaml:"security"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// HooksConfig bounds the stdin JSON reader.
type HooksConfig struct {
	MaxInputSizeMB      int    `json:"max_input_size_mb" yaml:"max_input_size_mb"`
	MaxJSONDepth        uint32 `json:"max_json_depth" yaml:"max_json_depth"`
	StdinReadTimeoutMs  int64  `json:"stdin_read_timeout_ms" yaml:"stdin_read_timeout_ms"`
	MaxProcessingTimeMs int64  `json:"max_processing_time_ms" yaml:"max_processing_time_ms"`
}

// SystemConfig bounds process-wide behaviour. MaxMemoryBytes and
// MaxFileCount feed internal/security.ResourceValidator; zero disables
// that particular check, matching the rest of the validator's budgets.
type SystemConfig struct {
	MaxExecutionTimeMs int64  `json:"max_execution_time_ms" yaml:"max_execution_time_ms"`
	MaxMemoryBytes     int64  `json:"max_memory_bytes" yaml:"max_memory_bytes"`
	MaxFileCount       int    `json:"max_file_count" yaml:"max_file_count"`
	WorkspaceRoot      string `json:"workspace_root" yaml:"workspace_root"`
}

// SecurityConfig toggles and scopes the security orchestrator.
type SecurityConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	AllowedTools []string `json:"allowed_tools" yaml:"allowed_tools"`
	BlockedPaths []string `json:"blocked_paths" yaml:"blocked_paths"`
}

// LoggingConfig configures the external rolling log writer.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Output string `json:"output" yaml:"output"`
}

// Default returns the gate's built-in defaults.
func Default() *Config {
	return &Config{
		Hooks: HooksConfig{
			MaxInputSizeMB:      10,
			MaxJSONDepth:        32,
			StdinReadTimeoutMs:  1000,
			MaxProcessingTimeMs: 5000,
		},
		System: SystemConfig{
			MaxExecutionTimeMs: 30000,
		},
		Security: SecurityConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// Load builds the effective configuration: built-in defaults, then an
// optional JSON document at jsonPath (skipped if it does not exist),
// then an optional YAML overlay at yamlPath (skipped if it does not
// exist), then MAOS_-prefixed environment variables.
func Load(jsonPath, yamlPath string) (*Config, error) {
	cfg := Default()

	if jsonPath != "" {
		if data, err := os.ReadFile(jsonPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, gateerr.Wrap("parsing config file", &gateerr.Config{Kind: "invalid-format", Message: err.Error()})
			}
		} else if !os.IsNotExist(err) {
			return nil, &gateerr.Config{Kind: "permission-denied", Message: err.Error()}
		}
	}

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			var overlay Config
			if err := yaml.Unmarshal(data, &overlay); err != nil {
				return nil, gateerr.Wrap("parsing config overlay", &gateerr.Config{Kind: "invalid-format", Message: err.Error()})
			}
			applyOverlay(cfg, &overlay)
		} else if !os.IsNotExist(err) {
			return nil, &gateerr.Config{Kind: "permission-denied", Message: err.Error()}
		}
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverlay copies every non-zero field of overlay onto cfg, matching
// the teacher's preset-then-file-override layering pattern.
func applyOverlay(cfg, overlay *Config) {
	if overlay.Hooks.MaxInputSizeMB > 0 {
		cfg.Hooks.MaxInputSizeMB = overlay.Hooks.MaxInputSizeMB
	}
	if overlay.Hooks.MaxJSONDepth > 0 {
		cfg.Hooks.MaxJSONDepth = overlay.Hooks.MaxJSONDepth
	}
	if overlay.Hooks.StdinReadTimeoutMs > 0 {
		cfg.Hooks.StdinReadTimeoutMs = overlay.Hooks.StdinReadTimeoutMs
	}
	if overlay.Hooks.MaxProcessingTimeMs > 0 {
		cfg.Hooks.MaxProcessingTimeMs = overlay.Hooks.MaxProcessingTimeMs
	}
	if overlay.System.MaxExecutionTimeMs > 0 {
		cfg.System.MaxExecutionTimeMs = overlay.System.MaxExecutionTimeMs
	}
	if overlay.System.MaxMemoryBytes > 0 {
		cfg.System.MaxMemoryBytes = overlay.System.MaxMemoryBytes
	}
	if overlay.System.MaxFileCount > 0 {
		cfg.System.MaxFileCount = overlay.System.MaxFileCount
	}
	if overlay.System.WorkspaceRoot != "" {
		cfg.System.WorkspaceRoot = overlay.System.WorkspaceRoot
	}
	if len(overlay.Security.AllowedTools) > 0 {
		cfg.Security.AllowedTools = overlay.Security.AllowedTools
	}
	if len(overlay.Security.BlockedPaths) > 0 {
		cfg.Security.BlockedPaths = overlay.Security.BlockedPaths
	}
	if overlay.Logging.Level != "" {
		cfg.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.Format != "" {
		cfg.Logging.Format = overlay.Logging.Format
	}
	if overlay.Logging.Output != "" {
		cfg.Logging.Output = overlay.Logging.Output
	}
}

// applyEnvOverrides applies MAOS_-prefixed environment variables last,
// so they win over both the defaults and any file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v, ok := intEnv("MAOS_HOOKS_MAX_INPUT_SIZE_MB"); ok {
		cfg.Hooks.MaxInputSizeMB = int(v)
	}
	if v, ok := intEnv("MAOS_HOOKS_MAX_JSON_DEPTH"); ok {
		cfg.Hooks.MaxJSONDepth = uint32(v)
	}
	if v, ok := intEnv("MAOS_HOOKS_STDIN_READ_TIMEOUT_MS"); ok {
		cfg.Hooks.StdinReadTimeoutMs = v
	}
	if v, ok := intEnv("MAOS_HOOKS_MAX_PROCESSING_TIME_MS"); ok {
		cfg.Hooks.MaxProcessingTimeMs = v
	}
	if v, ok := intEnv("MAOS_SYSTEM_MAX_EXECUTION_TIME_MS"); ok {
		cfg.System.MaxExecutionTimeMs = v
	}
	if v, ok := intEnv("MAOS_SYSTEM_MAX_MEMORY_BYTES"); ok {
		cfg.System.MaxMemoryBytes = v
	}
	if v, ok := intEnv("MAOS_SYSTEM_MAX_FILE_COUNT"); ok {
		cfg.System.MaxFileCount = int(v)
	}
	if v, ok := os.LookupEnv("MAOS_SYSTEM_WORKSPACE_ROOT"); ok {
		cfg.System.WorkspaceRoot = v
	}
	if v, ok := os.LookupEnv("MAOS_SECURITY_ENABLED"); ok {
		cfg.Security.Enabled = v == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("MAOS_LOGGING_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}

func intEnv(name string) (int64, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validate(cfg *Config) error {
	if cfg.System.MaxExecutionTimeMs == 0 {
		return &gateerr.Config{Kind: "invalid-value", Message: "max_execution_time_ms must not be zero"}
	}
	return nil
}

// ExampleDocument returns a human-readable JSON template filled with the
// built-in defaults, mirroring the teacher's ExampleConfigFile helper.
func ExampleDocument() string {
	return fmt.Sprintf(`{
  "hooks": {
    "max_input_size_mb": %d,
    "max_json_depth": %d,
    "stdin_read_timeout_ms": %d,
    "max_processing_time_ms": %d
  },
  "system": {
    "max_execution_time_ms": %d,
    "max_memory_bytes": %d,
    "max_file_count": %d,
    "workspace_root": ""
  },
  "security": {
    "enabled": true,
    "allowed_tools": [],
    "blocked_paths": []
  },
  "logging": {
    "level": "info",
    "format": "json",
    "output": "stderr"
  }
}
`, Default().Hooks.MaxInputSizeMB, Default().Hooks.MaxJSONDepth,
		Default().Hooks.StdinReadTimeoutMs, Default().Hooks.MaxProcessingTimeMs,
		Default().System.MaxExecutionTimeMs, Default().System.MaxMemoryBytes,
		Default().System.MaxFileCount)
}
