package llm

import (
	"context"

	"github.com/agentduel/agentduel/types"
)

// Intervention steers a generated turn toward escalation or de-escalation.
type Intervention string

const (
	InterventionNone       Intervention = ""
	InterventionEscalate   Intervention = "escalate"
	InterventionDeEscalate Intervention = "de_escalate"
)

// ParseIntervention validates an intervention tag.
func ParseIntervention(s string) (Intervention, error) {
	switch Intervention(s) {
	case InterventionEscalate, InterventionDeEscalate:
		return Intervention(s), nil
	default:
		return "", types.ValidationError("intervention_type must be \"escalate\" or \"de_escalate\"")
	}
}

// TurnRequest carries everything a provider needs to produce one reply
// in character: the scenario, both personas, who speaks, the transcript
// so far, and an optional intervention directive.
type TurnRequest struct {
	GeneralSetting   string
	SpecificScenario string
	Speaker          *types.AgentConfig
	Other            *types.AgentConfig
	IsAgentA         bool
	Transcript       []*types.Message
	Intervention     Intervention
}

// TurnResponse is one generated reply with its mood classification.
type TurnResponse struct {
	Text string
	Mood types.Mood
}

// AnalysisRequest asks the observer agent for a conflict analysis of a
// finished (or in-progress) transcript.
type AnalysisRequest struct {
	GeneralSetting   string
	SpecificScenario string
	AgentA           *types.AgentConfig
	AgentB           *types.AgentConfig
	Transcript       []*types.Message
}

// AnalysisResponse is the observer agent's structured verdict.
type AnalysisResponse struct {
	Summary     string
	Suggestions []string
	Markdown    string
}

// Provider is the external model collaborator: given conversation-so-far
// and an agent persona, produce one reply with an associated mood. Calls
// block for the duration of the upstream request and honor ctx
// cancellation. Failures surface as *types.Error (MODEL_UNAVAILABLE for
// upstream outages and timeouts); the core never retries.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string
	// GenerateTurn produces the next in-character reply.
	GenerateTurn(ctx context.Context, req *TurnRequest) (*TurnResponse, error)
	// Analyze produces the observer-agent conflict analysis.
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error)
}
