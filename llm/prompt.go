package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentduel/agentduel/types"
)

// ChatMessage is the provider-neutral chat wire format shared by every
// provider implementation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// BuildSystemPrompt renders the in-character system prompt for one turn,
// including the JSON {"msg","mood"} output contract and any intervention
// directive.
func BuildSystemPrompt(req *TurnRequest) string {
	role := "Agent A"
	if !req.IsAgentA {
		role = "Agent B"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s (%s) in a conflict simulation.\n\n", req.Speaker.Name, role)
	fmt.Fprintf(&b, "General Setting: %s\n", req.GeneralSetting)
	fmt.Fprintf(&b, "Specific Scenario: %s\n\n", req.SpecificScenario)
	fmt.Fprintf(&b, "Your personality traits: %s\n\n", req.Speaker.PersonalityTraits)
	fmt.Fprintf(&b, "The other agent is %s with these traits: %s\n",
		req.Other.Name, req.Other.PersonalityTraits)

	if req.Speaker.BehavioralInstructions != "" {
		fmt.Fprintf(&b, "\n%s\n", req.Speaker.BehavioralInstructions)
	}

	b.WriteString(`
You must respond to messages in character, considering the conversation history and your personality traits. Your response must be a JSON object with exactly these fields:
- "msg": Your response message (string)
- "mood": Your exact mood for this message, which must be one of these values: "happy", "excited", "neutral", "calm", "sad", "frustrated", "angry"

Always stay in character and respond appropriately to the situation and conversation flow.`)

	switch req.Intervention {
	case InterventionEscalate:
		b.WriteString(`

IMPORTANT INTERVENTION DIRECTIVE: You must respond in a way that ESCALATES the conflict.
- Increase tension and disagreement
- Be more confrontational and assertive
- Focus on points of contention
- Express stronger emotions like frustration or anger
- Make the conflict more intense`)
	case InterventionDeEscalate:
		b.WriteString(`

IMPORTANT INTERVENTION DIRECTIVE: You must respond in a way that DE-ESCALATES the conflict.
- Reduce tension and find common ground
- Be more understanding and empathetic
- Acknowledge the other person's perspective
- Use calming language
- Seek resolution and compromise`)
	}

	return b.String()
}

// BuildChatMessages converts a turn request into the chat exchange sent
// upstream: the speaker's own past messages map to the assistant role,
// the other agent's to the user role. An empty transcript seeds the
// opening prompt.
func BuildChatMessages(req *TurnRequest) []ChatMessage {
	messages := []ChatMessage{{Role: RoleSystem, Content: BuildSystemPrompt(req)}}

	if len(req.Transcript) == 0 {
		messages = append(messages, ChatMessage{
			Role:    RoleUser,
			Content: fmt.Sprintf("Start the conversation about: %s", req.SpecificScenario),
		})
		return messages
	}

	for _, msg := range req.Transcript {
		role := RoleUser
		if msg.AgentID == req.Speaker.ID {
			role = RoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}
	return messages
}

// BuildAnalysisMessages renders the observer-agent prompt for a conflict
// analysis request.
func BuildAnalysisMessages(req *AnalysisRequest) []ChatMessage {
	system := `You are the Conflict Analysis Observer, a third agent that analyzes conversations for conflict patterns and provides insights.

Analyze the given conversation for:
1. Overall conflict dynamics and patterns
2. Key turning points (escalations and de-escalations)
3. Communication effectiveness between agents
4. Specific suggestions for improvement

Your response must be a JSON object with exactly these fields:
- "summary": A concise prose summary of the conflict dynamics (string)
- "suggestions": Concrete suggestions for improvement (array of strings)
- "markdown": The full analysis formatted as markdown (string)`

	var b strings.Builder
	b.WriteString("**Conversation Setup:**\n")
	fmt.Fprintf(&b, "- General Setting: %s\n", req.GeneralSetting)
	fmt.Fprintf(&b, "- Specific Scenario: %s\n", req.SpecificScenario)
	fmt.Fprintf(&b, "- Agent A: %s - %s\n", req.AgentA.Name, req.AgentA.PersonalityTraits)
	fmt.Fprintf(&b, "- Agent B: %s - %s\n\n", req.AgentB.Name, req.AgentB.PersonalityTraits)

	b.WriteString("**Conversation Flow:**\n")
	for i, msg := range req.Transcript {
		name := req.AgentA.Name
		if msg.AgentID == req.AgentB.ID {
			name = req.AgentB.Name
		}
		fmt.Fprintf(&b, "%d. [%s] (Mood: %s): %s\n", i+1, name, msg.Mood, msg.Text)
	}

	return []ChatMessage{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: b.String()},
	}
}

// turnPayload is the JSON contract every provider asks the model for.
type turnPayload struct {
	Msg  string `json:"msg"`
	Mood string `json:"mood"`
}

// ParseTurnPayload decodes a model reply into a TurnResponse. A missing
// or empty "msg" is an upstream contract violation; an out-of-set mood
// degrades to neutral rather than failing the turn.
func ParseTurnPayload(data []byte, provider string) (*TurnResponse, error) {
	var payload turnPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "model reply is not valid JSON").
			WithCause(err).WithProvider(provider)
	}
	if strings.TrimSpace(payload.Msg) == "" {
		return nil, types.NewError(types.ErrUpstreamError, "model reply is missing \"msg\"").
			WithProvider(provider)
	}

	mood, err := types.ParseMood(payload.Mood)
	if err != nil {
		mood = types.MoodNeutral
	}
	return &TurnResponse{Text: payload.Msg, Mood: mood}, nil
}

// analysisPayload is the observer agent's JSON contract.
type analysisPayload struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Markdown    string   `json:"markdown"`
}

// ParseAnalysisPayload decodes an observer-agent reply.
func ParseAnalysisPayload(data []byte, provider string) (*AnalysisResponse, error) {
	var payload analysisPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "analysis reply is not valid JSON").
			WithCause(err).WithProvider(provider)
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, types.NewError(types.ErrUpstreamError, "analysis reply is missing \"summary\"").
			WithProvider(provider)
	}
	return &AnalysisResponse{
		Summary:     payload.Summary,
		Suggestions: payload.Suggestions,
		Markdown:    payload.Markdown,
	}, nil
}
