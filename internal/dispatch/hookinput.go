// Package dispatch wires the hook event tag, the stdin JSON reader, the
// handler registry, and the performance-metrics collector together into
// the single per-invocation dispatch pipeline.
package dispatch

import (
	"encoding/json"

	"github.com/maos-gate/gate/internal/gateerr"
	"github.com/maos-gate/gate/internal/hookevent"
)

// Input is the deserialised stdin payload. Every field beyond the
// required four is conditionally required depending on HookEventName;
// Validate enforces that.
type Input struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`

	ToolName     string          `json:"tool_name,omitempty"`
	ToolInput    json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`

	Message string `json:"message,omitempty"`
	Prompt  string `json:"prompt,omitempty"`
	Source  string `json:"source,omitempty"`
	Trigger string `json:"trigger,omitempty"`

	tag      hookevent.Tag
	resolved bool
}

var validSources = map[string]bool{"startup": true, "resume": true, "clear": true, "compact": true}
var validTriggers = map[string]bool{"auto": true, "manual": true}

// Validate resolves HookEventName to a closed tag and enforces every
// conditionally-required field for that tag. Once Validate succeeds the
// input is considered frozen; callers must not mutate it afterward.
func (in *Input) Validate() error {
	if in.SessionID == "" {
		return missingField("session_id")
	}
	if in.TranscriptPath == "" {
		return missingField("transcript_path")
	}
	if in.Cwd == "" {
		return missingField("cwd")
	}
	if in.HookEventName == "" {
		return missingField("hook_event_name")
	}

	tag, ok := hookevent.Parse(in.HookEventName)
	if !ok {
		return &gateerr.Validation{
			Kind:    "invalid-format",
			Field:   "hook_event_name",
			Message: "unknown hook_event_name: " + in.HookEventName,
		}
	}

	switch tag {
	case hookevent.PreToolUse:
		if in.ToolName == "" || in.ToolInput == nil {
			return missingField("tool_name/tool_input")
		}
	case hookevent.PostToolUse:
		if in.ToolName == "" || in.ToolInput == nil {
			return missingField("tool_name/tool_input")
		}
		if in.ToolResponse == nil {
			return missingField("tool_response")
		}
	case hookevent.Notification:
		if in.Message == "" {
			return missingField("message")
		}
	case hookevent.UserPromptSubmit:
		if in.Prompt == "" {
			return missingField("prompt")
		}
	case hookevent.SessionStart:
		if !validSources[in.Source] {
			return &gateerr.Validation{
				Kind:    "pattern-mismatch",
				Field:   "source",
				Message: "source must be one of startup, resume, clear, compact",
			}
		}
	case hookevent.PreCompact:
		if !validTriggers[in.Trigger] {
			return &gateerr.Validation{
				Kind:    "pattern-mismatch",
				Field:   "trigger",
				Message: "trigger must be one of auto, manual",
			}
		}
	}

	in.tag = tag
	in.resolved = true
	return nil
}

// Tag returns the resolved hook event tag. Must only be called after a
// successful Validate.
func (in *Input) Tag() hookevent.Tag {
	return in.tag
}

func missingField(name string) error {
	return &gateerr.Validation{
		Kind:    "required-missing",
		Field:   name,
		Message: "required field missing: " + name,
	}
}
