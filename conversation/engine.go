package conversation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/types"
)

// TurnResult is the outcome of one appended turn: the new node, its
// message, and the full message path from the root to the new node.
type TurnResult struct {
	Node         *Node            `json:"node"`
	Message      *types.Message   `json:"message"`
	Path         []*types.Message `json:"path"`
	Intervention llm.Intervention `json:"intervention,omitempty"`
}

// Engine drives turn generation over the conversation store. The model
// provider is called with no tree lock held: the path is snapshotted
// first, the upstream call runs against the snapshot, and the result is
// appended afterwards. A provider failure leaves the tree and the
// current pointer untouched.
type Engine struct {
	store    *Store
	provider llm.Provider
	logger   *zap.Logger
}

// NewEngine creates a turn engine over the given store and provider.
func NewEngine(store *Store, provider llm.Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		provider: provider,
		logger:   logger.With(zap.String("component", "engine")),
	}
}

// resolveBranch picks the node the next turn grows from: the explicit
// node id when given, otherwise the conversation's current pointer.
// Passing a node id selects the branch point for this turn only; the
// current pointer moves solely when a child is appended.
func (e *Engine) resolveBranch(conversationID, nodeID string) (*Conversation, *Node, error) {
	conv, err := e.store.GetConversation(conversationID)
	if err != nil {
		return nil, nil, err
	}
	if nodeID == "" {
		return conv, conv.Current(), nil
	}
	node, err := e.store.GetNode(conversationID, nodeID)
	if err != nil {
		return nil, nil, err
	}
	return conv, node, nil
}

// nextSpeaker derives whose turn it is from the branch point's depth in
// messages: even (root included) means agent A opens, odd means agent B
// answers. Branching to an earlier node rewinds the alternation with it.
func nextSpeaker(conv *Conversation, pathLen int) (speaker, other *types.AgentConfig, isAgentA bool) {
	if pathLen%2 == 0 {
		return conv.AgentA, conv.AgentB, true
	}
	return conv.AgentB, conv.AgentA, false
}

// GenerateResponse asks the model for the next turn and appends it under
// the branch point. nodeID selects the branch point; empty means the
// current pointer.
func (e *Engine) GenerateResponse(ctx context.Context, conversationID, nodeID string) (*TurnResult, error) {
	return e.generate(ctx, conversationID, nodeID, llm.InterventionNone)
}

// ApplyIntervention generates the next turn under an escalation or
// de-escalation directive. The directive shapes this one turn only; it
// is not persisted as conversation state.
func (e *Engine) ApplyIntervention(ctx context.Context, conversationID, nodeID string, intervention llm.Intervention) (*TurnResult, error) {
	if intervention == llm.InterventionNone {
		return nil, types.ValidationError("intervention_type is required")
	}
	return e.generate(ctx, conversationID, nodeID, intervention)
}

func (e *Engine) generate(ctx context.Context, conversationID, nodeID string, intervention llm.Intervention) (*TurnResult, error) {
	conv, branch, err := e.resolveBranch(conversationID, nodeID)
	if err != nil {
		return nil, err
	}

	transcript, err := e.store.PathToRoot(conv.ID, branch.ID)
	if err != nil {
		return nil, err
	}
	speaker, other, isAgentA := nextSpeaker(conv, len(transcript))

	resp, err := e.provider.GenerateTurn(ctx, &llm.TurnRequest{
		GeneralSetting:   conv.GeneralSetting,
		SpecificScenario: conv.SpecificScenario,
		Speaker:          speaker,
		Other:            other,
		IsAgentA:         isAgentA,
		Transcript:       transcript,
		Intervention:     intervention,
	})
	if err != nil {
		e.logger.Warn("turn generation failed",
			zap.String("conversation_id", conv.ID),
			zap.String("branch_id", branch.ID),
			zap.String("agent_id", speaker.ID),
			zap.Error(err))
		return nil, err
	}

	msg := types.NewMessage(speaker.ID, resp.Text, resp.Mood, types.OriginAI)
	node, err := e.store.AppendChild(conv.ID, branch.ID, msg)
	if err != nil {
		return nil, err
	}

	path, err := e.store.PathToRoot(conv.ID, node.ID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("turn generated",
		zap.String("conversation_id", conv.ID),
		zap.String("node_id", node.ID),
		zap.String("agent_id", speaker.ID),
		zap.String("mood", string(resp.Mood)),
		zap.String("intervention", string(intervention)))

	return &TurnResult{Node: node, Message: msg, Path: path, Intervention: intervention}, nil
}

// UserResponse appends a user-authored message as the given agent under
// the branch point. No model call is made; the mood is caller-supplied
// and defaults to neutral.
func (e *Engine) UserResponse(ctx context.Context, conversationID, nodeID, agentID, text string, mood types.Mood) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ValidationError("message text is required")
	}

	conv, branch, err := e.resolveBranch(conversationID, nodeID)
	if err != nil {
		return nil, err
	}
	if agentID != conv.AgentA.ID && agentID != conv.AgentB.ID {
		return nil, types.NotFoundError("agent", agentID)
	}
	if mood == "" {
		mood = types.MoodNeutral
	} else if !mood.IsValid() {
		return nil, types.ValidationError("mood must be one of the known moods")
	}

	msg := types.NewMessage(agentID, text, mood, types.OriginUser)
	node, err := e.store.AppendChild(conv.ID, branch.ID, msg)
	if err != nil {
		return nil, err
	}

	path, err := e.store.PathToRoot(conv.ID, node.ID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("user turn recorded",
		zap.String("conversation_id", conv.ID),
		zap.String("node_id", node.ID),
		zap.String("agent_id", agentID))

	return &TurnResult{Node: node, Message: msg, Path: path}, nil
}
