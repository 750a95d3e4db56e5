// Package hookevent defines the closed set of hook event tags the gate
// dispatches on and their wire-string spellings.
package hookevent

// Tag identifies one of the eight lifecycle events a host may send.
type Tag int

const (
	PreToolUse Tag = iota
	PostToolUse
	Notification
	Stop
	SubagentStop
	UserPromptSubmit
	PreCompact
	SessionStart
)

// Category groups tags for metrics and logging purposes.
type Category string

const (
	CategoryToolHooks     Category = "tool-hooks"
	CategoryNotifications Category = "notifications"
	CategoryLifecycle     Category = "lifecycle"
	CategoryUserInput     Category = "user-input"
	CategoryMaintenance   Category = "maintenance"
)

// wireStrings is the single source of truth for the tag <-> string mapping.
// Order matches the Tag const block.
var wireStrings = [...]string{
	PreToolUse:       "pre_tool_use",
	PostToolUse:      "post_tool_use",
	Notification:     "notification",
	Stop:             "stop",
	SubagentStop:     "subagent_stop",
	UserPromptSubmit: "user_prompt_submit",
	PreCompact:       "pre_compact",
	SessionStart:     "session_start",
}

var fromWire = func() map[string]Tag {
	m := make(map[string]Tag, len(wireStrings))
	for i, s := range wireStrings {
		m[s] = Tag(i)
	}
	return m
}()

// All returns the eight tags in declaration order.
func All() []Tag {
	tags := make([]Tag, len(wireStrings))
	for i := range wireStrings {
		tags[i] = Tag(i)
	}
	return tags
}

// String returns the wire-form spelling of the tag.
func (t Tag) String() string {
	if int(t) < 0 || int(t) >= len(wireStrings) {
		return ""
	}
	return wireStrings[t]
}

// Parse resolves a wire string to a tag. The mapping is total and
// bijective over the eight defined spellings; unknown strings fail.
func Parse(s string) (Tag, bool) {
	t, ok := fromWire[s]
	return t, ok
}

// Category returns the metrics/logging grouping for the tag.
func (t Tag) Category() Category {
	switch t {
	case PreToolUse, PostToolUse:
		return CategoryToolHooks
	case Notification:
		return CategoryNotifications
	case Stop, SubagentStop, SessionStart:
		return CategoryLifecycle
	case UserPromptSubmit:
		return CategoryUserInput
	case PreCompact:
		return CategoryMaintenance
	default:
		return ""
	}
}

// IsToolHook reports whether the tag fires around tool execution.
func (t Tag) IsToolHook() bool {
	return t == PreToolUse || t == PostToolUse
}

// IsLifecycleHook reports whether the tag is a session lifecycle event.
func (t Tag) IsLifecycleHook() bool {
	return t == Stop || t == SubagentStop || t == SessionStart
}
