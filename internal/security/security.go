// Package security implements the thin tool-name routing orchestrator
// and the resource-budget validator that sit above the path and command
// validators.
package security

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/maos-gate/gate/internal/cmdvalidator"
	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/pathvalidator"
)

// blockedFilePatterns names file suffixes/paths that may never be read
// or written directly.
var blockedFilePatterns = []string{".env", ".env.production", "*.key", "*.pem", "*.p12"}

// allowedEnvFiles is an explicit allow-list carving exceptions out of
// the .env block above.
var allowedEnvFiles = map[string]bool{
	".env.example":  true,
	".env.sample":   true,
	".env.template": true,
	"stack.env":     true,
}

// Orchestrator routes a tool invocation to the validator appropriate for
// its tool name.
type Orchestrator struct {
	paths *pathvalidator.Validator
	// workspaceRoot is the root the file tools (Read, Write, Edit,
	// MultiEdit) are confined to; empty disables workspace-boundary
	// enforcement.
	workspaceRoot string
}

// New constructs an Orchestrator. paths may be nil if no path-aware
// tools will be validated.
func New(paths *pathvalidator.Validator, workspaceRoot string) *Orchestrator {
	return &Orchestrator{paths: paths, workspaceRoot: workspaceRoot}
}

// ValidateTool validates a single tool invocation. command is used by
// Bash; path is used by the file-editing tools. Unknown or missing
// parameters in a recognised tool are treated as "nothing to validate"
// and allowed.
func (o *Orchestrator) ValidateTool(toolName, command, path string) error {
	switch toolName {
	case "Bash":
		if command == "" {
			return nil
		}
		return cmdvalidator.Validate(command)
	case "Read", "Write", "Edit", "MultiEdit":
		if path == "" {
			return nil
		}
		if blocked, err := isBlockedFile(path); blocked {
			return err
		}
		if o.paths != nil && o.workspaceRoot != "" {
			if _, err := o.paths.ValidateWorkspacePath(path, o.workspaceRoot); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func isBlockedFile(path string) (bool, error) {
	base := baseName(path)
	if allowedEnvFiles[base] {
		return false, nil
	}
	for _, pattern := range blockedFilePatterns {
		if matched, _ := patternMatches(pattern, base); matched {
			return true, &gateerr.Security{
				Kind:     "policy-violation",
				Resource: path,
				Message:  fmt.Sprintf("access to %s is blocked by file-access policy", base),
			}
		}
	}
	return false, nil
}

func baseName(path string) string {
	idx := strings.LastIndexAny(path, "/\\")
	if idx == -1 {
		return path
	}
	return path[idx+1:]
}

func patternMatches(pattern, name string) (bool, error) {
	if !strings.Contains(pattern, "*") {
		return pattern == name, nil
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix), nil
}

// ListBlockedFiles walks dir on fsys (a real filesystem in production, an
// in-memory afero.Fs in tests) and reports every entry the file-access
// policy would block, without reading any file contents.
func ListBlockedFiles(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var blocked []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := isBlockedFile(entry.Name()); ok {
			blocked = append(blocked, entry.Name())
		}
	}
	return blocked, nil
}

// ResourceLimits bounds the resource validator's independent checks.
type ResourceLimits struct {
	MaxMemoryBytes int64
	MaxInputBytes  int64
	MaxExecutionMs int64
	MaxJSONDepth   uint32
	MaxFileCount   int
}

// ResourceValidator enforces the numeric budgets independently; each
// check returns a specific error kind, and ValidateAll short-circuits on
// the first failure.
type ResourceValidator struct {
	limits ResourceLimits
}

// NewResourceValidator constructs a ResourceValidator over limits.
func NewResourceValidator(limits ResourceLimits) *ResourceValidator {
	return &ResourceValidator{limits: limits}
}

func (r *ResourceValidator) ValidateInputSize(actual int64) error {
	if r.limits.MaxInputBytes > 0 && actual > r.limits.MaxInputBytes {
		return &gateerr.ResourceLimit{Field: "input_size", Limit: r.limits.MaxInputBytes, Actual: actual}
	}
	return nil
}

func (r *ResourceValidator) ValidateMemory(actual int64) error {
	if r.limits.MaxMemoryBytes > 0 && actual > r.limits.MaxMemoryBytes {
		return &gateerr.ResourceLimit{Field: "memory_bytes", Limit: r.limits.MaxMemoryBytes, Actual: actual}
	}
	return nil
}

func (r *ResourceValidator) ValidateExecutionTime(actualMs int64) error {
	if r.limits.MaxExecutionMs > 0 && actualMs > r.limits.MaxExecutionMs {
		return &gateerr.ResourceLimit{Field: "execution_time_ms", Limit: r.limits.MaxExecutionMs, Actual: actualMs}
	}
	return nil
}

func (r *ResourceValidator) ValidateJSONDepth(actual uint32) error {
	if r.limits.MaxJSONDepth > 0 && actual > r.limits.MaxJSONDepth {
		return &gateerr.ResourceLimit{Field: "json_depth", Limit: int64(r.limits.MaxJSONDepth), Actual: int64(actual)}
	}
	return nil
}

func (r *ResourceValidator) ValidateFileCount(actual int) error {
	if r.limits.MaxFileCount > 0 && actual > r.limits.MaxFileCount {
		return &gateerr.ResourceLimit{Field: "file_count", Limit: int64(r.limits.MaxFileCount), Actual: int64(actual)}
	}
	return nil
}

// ValidateAll runs every independent check, returning the first failure.
func (r *ResourceValidator) ValidateAll(inputBytes, memoryBytes, executionMs int64, jsonDepth uint32, fileCount int) error {
	if err := r.ValidateInputSize(inputBytes); err != nil {
		return err
	}
	if err := r.ValidateMemory(memoryBytes); err != nil {
		return err
	}
	if err := r.ValidateExecutionTime(executionMs); err != nil {
		return err
	}
	if err := r.ValidateJSONDepth(jsonDepth); err != nil {
		return err
	}
	if err := r.ValidateFileCount(fileCount); err != nil {
		return err
	}
	return nil
}

// MemoryUsage returns the process's current resident-set size in bytes
// when the platform supports probing it. ok is false when no reliable
// measurement is available; callers must skip growth assertions rather
// than fabricate a number.
func MemoryUsage() (bytes int64, ok bool) {
	return probeMemoryUsage(runtime.GOOS)
}
