// Package api defines the request and response bodies of the HTTP
// surface. Handlers live in api/handlers.
package api

import (
	"github.com/agentduel/agentduel/conversation"
	"github.com/agentduel/agentduel/types"
)

// CreateAgentRequest creates one agent persona.
type CreateAgentRequest struct {
	Name                   string `json:"name"`
	PersonalityTraits      string `json:"personality_traits"`
	BehavioralInstructions string `json:"behavioral_instructions,omitempty"`
}

// CreateConversationRequest creates a conversation together with two new
// agents.
type CreateConversationRequest struct {
	GeneralSetting   string `json:"general_setting"`
	SpecificScenario string `json:"specific_scenario"`
	AgentAName       string `json:"agent_a_name"`
	AgentATraits     string `json:"agent_a_traits"`
	AgentBName       string `json:"agent_b_name"`
	AgentBTraits     string `json:"agent_b_traits"`
}

// CreateConversationWithAgentsRequest creates a conversation binding two
// existing agents.
type CreateConversationWithAgentsRequest struct {
	GeneralSetting   string `json:"general_setting"`
	SpecificScenario string `json:"specific_scenario"`
	AgentAID         string `json:"agent_a_id"`
	AgentBID         string `json:"agent_b_id"`
}

// GenerateResponseRequest asks for the next AI turn. NodeID selects the
// branch point; empty means the current pointer.
type GenerateResponseRequest struct {
	ConversationID string `json:"conversation_id"`
	NodeID         string `json:"node_id,omitempty"`
}

// UserResponseRequest records a user-authored turn spoken as AgentID.
// Mood is optional and defaults to neutral.
type UserResponseRequest struct {
	ConversationID string `json:"conversation_id"`
	NodeID         string `json:"node_id,omitempty"`
	AgentID        string `json:"agent_id"`
	Message        string `json:"message"`
	Mood           string `json:"mood,omitempty"`
}

// InterventionRequest asks for an AI turn under an escalate or
// de_escalate directive.
type InterventionRequest struct {
	ConversationID   string `json:"conversation_id"`
	NodeID           string `json:"node_id,omitempty"`
	InterventionType string `json:"intervention_type"`
}

// TurnResponse is the outcome of any appended turn.
type TurnResponse struct {
	NodeID              string           `json:"node_id"`
	Message             *types.Message   `json:"message"`
	CurrentPath         []*types.Message `json:"current_path"`
	InterventionApplied string           `json:"intervention_applied,omitempty"`
}

// TreeResponse is the full-tree payload: the conversation snapshot, the
// hierarchical tree, and the current path.
type TreeResponse struct {
	Conversation *conversation.Snapshot `json:"conversation"`
	Tree         *conversation.TreeNode `json:"tree"`
	CurrentPath  []*types.Message       `json:"current_path"`
}
