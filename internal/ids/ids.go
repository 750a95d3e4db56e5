// Package ids defines the opaque session and agent identifier types.
package ids

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionPrefix = "sess_"
	agentPrefix   = "agent_"
)

// SessionID is a validated identifier of the form sess_<uuid-v4>.
type SessionID string

// AgentID is a validated identifier of the form agent_<uuid-v4>.
type AgentID string

// NewSessionID generates a fresh random session identifier.
func NewSessionID() SessionID {
	return SessionID(sessionPrefix + uuid.New().String())
}

// NewAgentID generates a fresh random agent identifier.
func NewAgentID() AgentID {
	return AgentID(agentPrefix + uuid.New().String())
}

// ParseSessionID validates s as a session identifier.
func ParseSessionID(s string) (SessionID, error) {
	raw, ok := strings.CutPrefix(s, sessionPrefix)
	if !ok {
		return "", fmt.Errorf("session id missing %q prefix", sessionPrefix)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("session id has invalid uuid shape: %w", err)
	}
	return SessionID(s), nil
}

// ParseAgentID validates s as an agent identifier.
func ParseAgentID(s string) (AgentID, error) {
	raw, ok := strings.CutPrefix(s, agentPrefix)
	if !ok {
		return "", fmt.Errorf("agent id missing %q prefix", agentPrefix)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("agent id has invalid uuid shape: %w", err)
	}
	return AgentID(s), nil
}

// String satisfies fmt.Stringer.
func (s SessionID) String() string { return string(s) }

// String satisfies fmt.Stringer.
func (a AgentID) String() string { return string(a) }
