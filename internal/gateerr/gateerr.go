// Package gateerr defines the gate's closed error taxonomy and the
// deterministic mapping from an error value to a process exit code.
package gateerr

import (
	"errors"
	"fmt"
)

// ExitCode is one of the eight values the gate ever exits with.
type ExitCode int

const (
	Success        ExitCode = 0
	GeneralError   ExitCode = 1
	BlockingError  ExitCode = 2
	ConfigError    ExitCode = 3
	SecurityError  ExitCode = 4
	TimeoutError   ExitCode = 5
	ResourceError  ExitCode = 6
	InternalError  ExitCode = 99
)

// Config reports a configuration problem: missing file, bad format,
// missing or invalid field, or a permission failure reading it.
type Config struct {
	Kind    string // not-found, invalid-format, missing-field, invalid-value, permission-denied
	Message string
}

func (e *Config) Error() string { return fmt.Sprintf("config: %s", e.Message) }

// Security reports a security-policy violation that is not itself a
// path-validation failure (see PathValidation below for that narrower,
// more strictly-mapped case).
type Security struct {
	Kind     string // unauthorized, path-traversal, invalid-permissions, suspicious-command, policy-violation
	Resource string
	Message  string
}

func (e *Security) Error() string { return fmt.Sprintf("security: %s", e.Message) }

// PathValidation reports a failure from the path validator. Every
// variant maps to BlockingError and never reveals the offending path in
// its Error() string.
type PathValidation struct {
	Kind string // path-traversal, outside-workspace, blocked, canonicalization-failed, invalid-workspace, invalid-component
	path string // deliberately unexported: never surfaced via Error()
}

// NewPathValidation constructs a PathValidation error. path is retained
// only for internal audit logging, never for display.
func NewPathValidation(kind, path string) *PathValidation {
	return &PathValidation{Kind: kind, path: path}
}

func (e *PathValidation) Error() string {
	switch e.Kind {
	case "path-traversal":
		return "Path traversal attempt blocked"
	case "outside-workspace":
		return "Path outside allowed workspace boundary"
	case "blocked":
		return "Access to path blocked by security policy"
	case "canonicalization-failed":
		return "Path canonicalization failed"
	case "invalid-workspace":
		return "Invalid or inaccessible workspace"
	case "invalid-component":
		return "Invalid path component"
	default:
		return "Path access denied for security reasons"
	}
}

// InvalidInput carries an unstructured validation failure message.
type InvalidInput struct {
	Message string
}

func (e *InvalidInput) Error() string { return e.Message }

// ResourceLimit reports a numeric budget being exceeded.
type ResourceLimit struct {
	Field   string
	Limit   int64
	Actual  int64
	Message string
}

func (e *ResourceLimit) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("resource limit exceeded for %s", e.Field)
}

// Timeout reports an operation exceeding its deadline.
type Timeout struct {
	Operation string
	TimeoutMs int64
}

func (e *Timeout) Error() string {
	return fmt.Sprintf("operation %q timed out after %dms", e.Operation, e.TimeoutMs)
}

// Blocking is a direct "the host must not proceed" signal not otherwise
// captured by PathValidation.
type Blocking struct {
	Message string
}

func (e *Blocking) Error() string { return e.Message }

// Validation reports a structural input-validation failure.
type Validation struct {
	Kind    string // required-missing, invalid-format, out-of-range, invalid-length, pattern-mismatch
	Field   string
	Message string
}

func (e *Validation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Kind)
}

// External wraps an error crossing the boundary from a third-party
// library with no more specific domain meaning.
type External struct {
	Source error
}

func (e *External) Error() string { return fmt.Sprintf("external error: %v", e.Source) }
func (e *External) Unwrap() error { return e.Source }

// Context wraps an error with a human-readable message; exit-code
// mapping recurses through it transparently.
type Context struct {
	Message string
	Source  error
}

// Wrap builds a Context error, matching fmt.Errorf's "%w" convention but
// as a typed value so ExitCode can recurse through it explicitly.
func Wrap(message string, source error) error {
	return &Context{Message: message, Source: source}
}

func (e *Context) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Source) }
func (e *Context) Unwrap() error { return e.Source }

// Code maps an error value to its exit code. Context wrapping is
// unwrapped transparently so the innermost domain error's code wins.
// Acyclic by construction: Context.Unwrap always strictly shortens the
// chain, so recursion terminates within the chain's length.
func Code(err error) ExitCode {
	if err == nil {
		return Success
	}

	var pv *PathValidation
	if errors.As(err, &pv) {
		return BlockingError
	}
	var blocking *Blocking
	if errors.As(err, &blocking) {
		return BlockingError
	}
	var sec *Security
	if errors.As(err, &sec) {
		// suspicious-command (the command validator's mandatory
		// block catalogue) and policy-violation (the file-access
		// blocklist) must prevent tool execution exactly like a
		// PathValidation failure, not merely warn. The remaining
		// Security kinds (unauthorized, path-traversal,
		// invalid-permissions) map to the non-blocking 4, and
		// Security{Kind:"path-traversal"} intentionally coexists
		// with PathValidation's own path-traversal kind (which maps
		// to 2) — see the Open Question decision in DESIGN.md.
		if sec.Kind == "suspicious-command" || sec.Kind == "policy-violation" {
			return BlockingError
		}
		return SecurityError
	}
	var cfg *Config
	if errors.As(err, &cfg) {
		return ConfigError
	}
	var timeout *Timeout
	if errors.As(err, &timeout) {
		return TimeoutError
	}
	var resource *ResourceLimit
	if errors.As(err, &resource) {
		return ResourceError
	}
	var external *External
	if errors.As(err, &external) {
		return InternalError
	}
	var invalid *InvalidInput
	if errors.As(err, &invalid) {
		return GeneralError
	}
	var val *Validation
	if errors.As(err, &val) {
		return GeneralError
	}

	// Context wraps something not itself a recognised domain error
	// (e.g. a bare I/O or JSON error): treat as a general error.
	var ctx *Context
	if errors.As(err, &ctx) {
		return GeneralError
	}

	return GeneralError
}

// Sanitized returns the printable message for err per the message
// sanitisation contract: PathValidation and Security errors never leak
// detail, everything else uses its natural display text.
func Sanitized(err error) string {
	if err == nil {
		return ""
	}
	var pv *PathValidation
	if errors.As(err, &pv) {
		return "Path access denied for security reasons"
	}
	var sec *Security
	if errors.As(err, &sec) {
		return "Security validation failed"
	}
	return err.Error()
}
