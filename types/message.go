package types

import "time"

// Origin marks whether a message was produced by the model collaborator
// or supplied by a user speaking on an agent's behalf.
type Origin string

const (
	OriginAI   Origin = "ai"
	OriginUser Origin = "user"
)

// Message is one utterance in a conversation, always attributed to one
// of the conversation's two agents and tagged with a mood.
type Message struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	Text      string    `json:"text"`
	Mood      Mood      `json:"mood"`
	Origin    Origin    `json:"origin"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh message id and timestamp.
func NewMessage(agentID, text string, mood Mood, origin Origin) *Message {
	return &Message{
		ID:        NewID(KindMessage),
		AgentID:   agentID,
		Text:      text,
		Mood:      mood,
		Origin:    origin,
		CreatedAt: time.Now(),
	}
}

// AgentConfig is an immutable agent persona definition.
type AgentConfig struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	PersonalityTraits      string    `json:"personality_traits"`
	BehavioralInstructions string    `json:"behavioral_instructions,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}
