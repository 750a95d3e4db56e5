package gateerr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"success", nil, Success},
		{"path traversal", NewPathValidation("path-traversal", "/etc/passwd"), BlockingError},
		{"outside workspace", NewPathValidation("outside-workspace", "/tmp/bad"), BlockingError},
		{"blocked path", NewPathValidation("blocked", "/etc/ssh"), BlockingError},
		{"security path traversal", &Security{Kind: "path-traversal", Message: "blocked"}, SecurityError},
		{"security unauthorized", &Security{Kind: "unauthorized", Resource: "admin"}, SecurityError},
		{"security suspicious command blocks", &Security{Kind: "suspicious-command", Message: "rm -rf /"}, BlockingError},
		{"security policy violation blocks", &Security{Kind: "policy-violation", Message: "blocked file"}, BlockingError},
		{"security path traversal stays non-blocking", &Security{Kind: "path-traversal", Message: "advisory"}, SecurityError},
		{"config", &Config{Kind: "not-found"}, ConfigError},
		{"timeout", &Timeout{Operation: "test", TimeoutMs: 100}, TimeoutError},
		{"resource", &ResourceLimit{Field: "memory"}, ResourceError},
		{"external", &External{Source: errors.New("boom")}, InternalError},
		{"invalid input", &InvalidInput{Message: "bad"}, GeneralError},
		{"validation", &Validation{Kind: "required-missing"}, GeneralError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Code(c.err))
		})
	}
}

func TestContextUnwrapsToInnerCode(t *testing.T) {
	inner := &Timeout{Operation: "test", TimeoutMs: 100}
	wrapped := Wrap("during operation", inner)
	assert.Equal(t, TimeoutError, Code(wrapped))
}

func TestContextDoubleWrapStillUnwraps(t *testing.T) {
	inner := NewPathValidation("path-traversal", "/etc/passwd")
	wrapped := Wrap("outer", Wrap("inner", inner))
	assert.Equal(t, BlockingError, Code(wrapped))
}

func TestAllExitCodesAreInFixedSet(t *testing.T) {
	valid := map[ExitCode]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 99: true}
	errs := []error{
		nil,
		NewPathValidation("path-traversal", "x"),
		&Security{Kind: "unauthorized"},
		&Config{Kind: "not-found"},
		&Timeout{Operation: "x"},
		&ResourceLimit{Field: "x"},
		&External{Source: errors.New("x")},
		&InvalidInput{Message: "x"},
		&Validation{Kind: "x"},
		errors.New("unknown plain error"),
	}
	for _, e := range errs {
		assert.True(t, valid[Code(e)], "code %d for %v not in fixed set", Code(e), e)
	}
}

func TestSanitizedNeverLeaksPath(t *testing.T) {
	err := NewPathValidation("path-traversal", "/very/secret/path")
	msg := Sanitized(err)
	assert.Equal(t, "Path access denied for security reasons", msg)
	assert.NotContains(t, msg, "/very/secret/path")
}

func TestSanitizedSecurityMessage(t *testing.T) {
	err := &Security{Kind: "suspicious-command", Message: "rm -rf / detected"}
	assert.Equal(t, "Security validation failed", Sanitized(err))
}

func TestSanitizedWrappedPathValidationStillSanitized(t *testing.T) {
	err := Wrap("context", NewPathValidation("blocked", "/secret"))
	assert.Equal(t, "Path access denied for security reasons", Sanitized(err))
}

func TestSuspiciousCommandBlocksExactlyLikePathValidation(t *testing.T) {
	err := &Security{Kind: "suspicious-command", Resource: "rm -rf /", Message: "recursive force removal of root detected: rm -rf /"}
	assert.Equal(t, BlockingError, Code(err))
	assert.True(t, strings.HasPrefix(Sanitized(err), "Security"))
}

func TestSanitizedPassesThroughOtherErrors(t *testing.T) {
	err := &InvalidInput{Message: "field x is required"}
	assert.Equal(t, "field x is required", Sanitized(err))
}
