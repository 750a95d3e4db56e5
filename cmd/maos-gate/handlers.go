package main

import (
	"encoding/json"
	"fmt"

	"github.com/maos-gate/gate/internal/dispatch"
	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/security"
)

// toolUseInput is the shape of tool_input the gate cares about: a
// command string for Bash, a file_path for the file-editing tools.
// Unknown/missing fields are simply left zero-valued and treated as
// "nothing to validate" by the security orchestrator.
type toolUseInput struct {
	Command  string `json:"command"`
	FilePath string `json:"file_path"`
}

// toolUseHandler backs both pre_tool_use and post_tool_use: it runs the
// security orchestrator against the tool_input payload before allowing
// the (advisory) execute step to report success.
type toolUseHandler struct {
	security *security.Orchestrator
}

func (h *toolUseHandler) Validate(in *dispatch.Input) error {
	if in.ToolName == "" || in.ToolInput == nil {
		return nil
	}

	var parsed toolUseInput
	if err := json.Unmarshal(in.ToolInput, &parsed); err != nil {
		// tool_input shapes the gate doesn't recognise are passed
		// through unvalidated; the host's own schema already
		// accepted them.
		return nil
	}

	return h.security.ValidateTool(in.ToolName, parsed.Command, parsed.FilePath)
}

func (h *toolUseHandler) Execute(in *dispatch.Input) (string, error) {
	return "", nil
}

// passthroughHandler backs every hook event that carries no tool
// invocation to validate and no optional collaborator of its own
// (subagent_stop, pre_compact, session_start): the gate only needs to
// confirm the input shape, which dispatch.Input.Validate already did
// before the handler was reached.
type passthroughHandler struct{}

func (passthroughHandler) Validate(in *dispatch.Input) error { return nil }

func (passthroughHandler) Execute(in *dispatch.Input) (string, error) { return "", nil }

// userPromptSubmitHandler backs user-prompt-submit. With validate set
// (the --validate flag) it additionally confirms the session id is
// known to sessions before letting the prompt through; sessions is the
// out-of-scope session-state manager's collaborator interface, so a
// NoopSessionStore stands in until that manager is wired up.
type userPromptSubmitHandler struct {
	sessions dispatch.SessionStore
	validate bool
}

func (h *userPromptSubmitHandler) Validate(in *dispatch.Input) error {
	if !h.validate {
		return nil
	}
	known, err := h.sessions.Exists(in.SessionID)
	if err != nil {
		return err
	}
	if !known {
		return &gateerr.Validation{Kind: "invalid-format", Field: "session_id", Message: "unknown session id"}
	}
	return nil
}

func (h *userPromptSubmitHandler) Execute(in *dispatch.Input) (string, error) { return "", nil }

// notifyHandler backs notification. formatter is the out-of-scope
// text-to-speech formatter's collaborator interface; with none
// configured the message passes through unchanged.
type notifyHandler struct {
	formatter dispatch.NotificationFormatter
}

func (notifyHandler) Validate(in *dispatch.Input) error { return nil }

func (h *notifyHandler) Execute(in *dispatch.Input) (string, error) {
	if h.formatter == nil {
		return in.Message, nil
	}
	return h.formatter.Format(in.Message), nil
}

// stopHandler backs stop. With chat set (the --chat flag) its advisory
// output names the transcript path so the host can surface the chat
// history alongside the run's end.
type stopHandler struct {
	chat bool
}

func (stopHandler) Validate(in *dispatch.Input) error { return nil }

func (h *stopHandler) Execute(in *dispatch.Input) (string, error) {
	if h.chat {
		return fmt.Sprintf("transcript: %s", in.TranscriptPath), nil
	}
	return "", nil
}
