package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maos-gate/gate/internal/dispatch"
	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/hookevent"
	"github.com/maos-gate/gate/internal/metrics"
	"github.com/maos-gate/gate/internal/pathvalidator"
	"github.com/maos-gate/gate/internal/security"
)

type jsonProvider struct {
	payload []byte
}

func (p *jsonProvider) ReadJSON(_ context.Context, v any) error {
	return json.Unmarshal(p.payload, v)
}

func newTestDispatcher(workspaceRoot string, blockedPaths []string) *dispatch.Dispatcher {
	var validator *pathvalidator.Validator
	if workspaceRoot != "" {
		validator, _ = pathvalidator.New([]string{workspaceRoot}, blockedPaths)
	}
	orchestrator := security.New(validator, workspaceRoot)

	registry := dispatch.NewRegistry()
	registry.Register(hookevent.PreToolUse, &toolUseHandler{security: orchestrator})
	registry.Register(hookevent.PostToolUse, &toolUseHandler{security: orchestrator})

	return dispatch.New(registry, metrics.NewCollector())
}

// Scenario 1: dangerous bash blocked.
func TestEndToEndDangerousBashBlocked(t *testing.T) {
	d := newTestDispatcher("", nil)
	payload := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"pre_tool_use","tool_name":"Bash","tool_input":{"command":"rm -rf /"}}`)

	_, err := d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: payload})
	require.Error(t, err)
	assert.Equal(t, gateerr.BlockingError, gateerr.Code(err))
	assert.Contains(t, gateerr.Sanitized(err), "Security")
}

// Scenario 2: env file read blocked, sample allowed.
func TestEndToEndEnvFileBlockedSampleAllowed(t *testing.T) {
	d := newTestDispatcher("", nil)

	blocked := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"pre_tool_use","tool_name":"Read","tool_input":{"file_path":"/workspace/.env"}}`)
	_, err := d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: blocked})
	require.Error(t, err)
	assert.Equal(t, gateerr.BlockingError, gateerr.Code(err))

	allowed := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"pre_tool_use","tool_name":"Read","tool_input":{"file_path":"/workspace/.env.sample"}}`)
	_, err = d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: allowed})
	assert.NoError(t, err)
}

// Scenario 3: traversal rejected, workspace file accepted.
func TestEndToEndTraversalRejectedWorkspaceFileAccepted(t *testing.T) {
	root := t.TempDir()
	d := newTestDispatcher(root, nil)

	traversal := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"pre_tool_use","tool_name":"Read","tool_input":{"file_path":"../../../etc/passwd"}}`)
	_, err := d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: traversal})
	require.Error(t, err)
	assert.Equal(t, gateerr.BlockingError, gateerr.Code(err))

	accepted := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"pre_tool_use","tool_name":"Read","tool_input":{"file_path":"src/main.rs"}}`)
	_, err = d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: accepted})
	assert.NoError(t, err)
}

// Scenario 8: unknown hook event rejected.
func TestEndToEndUnknownHookEventRejected(t *testing.T) {
	d := newTestDispatcher("", nil)
	payload := []byte(`{"session_id":"sess_00000000-0000-0000-0000-000000000001","transcript_path":"/tmp/t.jsonl","cwd":"/tmp","hook_event_name":"future_event"}`)

	_, err := d.Dispatch(context.Background(), hookevent.PreToolUse, &jsonProvider{payload: payload})
	require.Error(t, err)
	assert.Equal(t, gateerr.GeneralError, gateerr.Code(err))
}

type stubSessionStore struct {
	known bool
	err   error
}

func (s stubSessionStore) Exists(string) (bool, error) { return s.known, s.err }

func TestUserPromptSubmitHandlerSkipsSessionCheckWhenValidateDisabled(t *testing.T) {
	h := &userPromptSubmitHandler{sessions: stubSessionStore{known: false}, validate: false}
	assert.NoError(t, h.Validate(&dispatch.Input{SessionID: "sess_unknown"}))
}

func TestUserPromptSubmitHandlerRejectsUnknownSessionWhenValidateEnabled(t *testing.T) {
	h := &userPromptSubmitHandler{sessions: stubSessionStore{known: false}, validate: true}
	err := h.Validate(&dispatch.Input{SessionID: "sess_unknown"})
	require.Error(t, err)
	assert.Equal(t, gateerr.GeneralError, gateerr.Code(err))
}

func TestUserPromptSubmitHandlerAcceptsKnownSessionWhenValidateEnabled(t *testing.T) {
	h := &userPromptSubmitHandler{sessions: stubSessionStore{known: true}, validate: true}
	assert.NoError(t, h.Validate(&dispatch.Input{SessionID: "sess_known"}))
}

type upperFormatter struct{}

func (upperFormatter) Format(message string) string { return "[" + message + "]" }

func TestNotifyHandlerPassesMessageThroughWithNoFormatter(t *testing.T) {
	h := &notifyHandler{}
	out, err := h.Execute(&dispatch.Input{Message: "build finished"})
	require.NoError(t, err)
	assert.Equal(t, "build finished", out)
}

func TestNotifyHandlerAppliesConfiguredFormatter(t *testing.T) {
	h := &notifyHandler{formatter: upperFormatter{}}
	out, err := h.Execute(&dispatch.Input{Message: "build finished"})
	require.NoError(t, err)
	assert.Equal(t, "[build finished]", out)
}

func TestStopHandlerOmitsTranscriptWhenChatDisabled(t *testing.T) {
	h := &stopHandler{chat: false}
	out, err := h.Execute(&dispatch.Input{TranscriptPath: "/tmp/t.jsonl"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStopHandlerSurfacesTranscriptPathWhenChatEnabled(t *testing.T) {
	h := &stopHandler{chat: true}
	out, err := h.Execute(&dispatch.Input{TranscriptPath: "/tmp/t.jsonl"})
	require.NoError(t, err)
	assert.Contains(t, out, "/tmp/t.jsonl")
}
