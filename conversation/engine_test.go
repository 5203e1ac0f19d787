package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/types"
)

// stubProvider scripts model replies and records the requests it saw.
type stubProvider struct {
	turns        []*llm.TurnResponse
	turnErr      error
	analysis     *llm.AnalysisResponse
	analysisErr  error
	turnRequests []*llm.TurnRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) GenerateTurn(_ context.Context, req *llm.TurnRequest) (*llm.TurnResponse, error) {
	p.turnRequests = append(p.turnRequests, req)
	if p.turnErr != nil {
		return nil, p.turnErr
	}
	resp := p.turns[0]
	if len(p.turns) > 1 {
		p.turns = p.turns[1:]
	}
	return resp, nil
}

func (p *stubProvider) Analyze(_ context.Context, _ *llm.AnalysisRequest) (*llm.AnalysisResponse, error) {
	if p.analysisErr != nil {
		return nil, p.analysisErr
	}
	return p.analysis, nil
}

func newTestEngine(t *testing.T, provider llm.Provider) (*Engine, *Store, *Conversation) {
	t.Helper()
	store, conv := newTestConversation(t)
	return NewEngine(store, provider, zap.NewNop()), store, conv
}

func TestGenerateResponse_Alternation(t *testing.T) {
	provider := &stubProvider{turns: []*llm.TurnResponse{{Text: "reply", Mood: types.MoodNeutral}}}
	engine, _, conv := newTestEngine(t, provider)
	ctx := context.Background()

	// Root has an empty path, so agent A opens.
	first, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, conv.AgentA.ID, first.Message.AgentID)
	assert.Equal(t, types.OriginAI, first.Message.Origin)
	assert.Len(t, first.Path, 1)

	// Then agent B.
	second, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, conv.AgentB.ID, second.Message.AgentID)
	assert.Len(t, second.Path, 2)

	// And A again.
	third, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, conv.AgentA.ID, third.Message.AgentID)

	// The stub saw the growing transcript.
	require.Len(t, provider.turnRequests, 3)
	assert.Empty(t, provider.turnRequests[0].Transcript)
	assert.Len(t, provider.turnRequests[2].Transcript, 2)
	assert.True(t, provider.turnRequests[0].IsAgentA)
	assert.False(t, provider.turnRequests[1].IsAgentA)
}

func TestGenerateResponse_ExplicitBranchPoint(t *testing.T) {
	provider := &stubProvider{turns: []*llm.TurnResponse{{Text: "reply", Mood: types.MoodNeutral}}}
	engine, store, conv := newTestEngine(t, provider)
	ctx := context.Background()

	first, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)
	_, err = engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)

	// Branch from the first node: the sibling grows there and parity
	// rewinds with it, so agent B speaks again.
	result, err := engine.GenerateResponse(ctx, conv.ID, first.Node.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Node.ID, result.Node.ParentID)
	assert.Equal(t, conv.AgentB.ID, result.Message.AgentID)

	branchNode, err := store.GetNode(conv.ID, first.Node.ID)
	require.NoError(t, err)
	assert.Len(t, branchNode.Children, 2)
}

func TestGenerateResponse_ProviderFailureLeavesTreeUntouched(t *testing.T) {
	provider := &stubProvider{
		turnErr: types.NewError(types.ErrModelUnavailable, "upstream down").WithRetryable(true),
	}
	engine, _, conv := newTestEngine(t, provider)

	_, err := engine.GenerateResponse(context.Background(), conv.ID, "")
	require.Error(t, err)
	assert.Equal(t, types.ErrModelUnavailable, types.GetErrorCode(err))

	assert.Equal(t, 1, conv.NodeCount())
	assert.Equal(t, conv.RootID, conv.CurrentID)
}

func TestGenerateResponse_UnknownConversation(t *testing.T) {
	engine, _, _ := newTestEngine(t, &stubProvider{turns: []*llm.TurnResponse{{Text: "x", Mood: types.MoodNeutral}}})

	_, err := engine.GenerateResponse(context.Background(), types.NewID(types.KindConversation), "")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestUserResponse(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	result, err := engine.UserResponse(context.Background(), conv.ID, "", conv.AgentB.ID, "my line", types.MoodAngry)
	require.NoError(t, err)
	assert.Equal(t, conv.AgentB.ID, result.Message.AgentID)
	assert.Equal(t, "my line", result.Message.Text)
	assert.Equal(t, types.MoodAngry, result.Message.Mood)
	assert.Equal(t, types.OriginUser, result.Message.Origin)
	assert.Equal(t, result.Node.ID, conv.CurrentID)
}

func TestUserResponse_DefaultsMoodToNeutral(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	result, err := engine.UserResponse(context.Background(), conv.ID, "", conv.AgentA.ID, "hi", "")
	require.NoError(t, err)
	assert.Equal(t, types.MoodNeutral, result.Message.Mood)
}

func TestUserResponse_EmptyText(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := engine.UserResponse(context.Background(), conv.ID, "", conv.AgentA.ID, text, "")
		require.Error(t, err, "text %q", text)
		assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	}
	assert.Equal(t, 1, conv.NodeCount())
}

func TestUserResponse_InvalidMood(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	for _, mood := range []types.Mood{"furious", "HAPPY", "ok"} {
		_, err := engine.UserResponse(context.Background(), conv.ID, "", conv.AgentA.ID, "hi", mood)
		require.Error(t, err, "mood %q", mood)
		assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	}
	assert.Equal(t, 1, conv.NodeCount())
}

func TestUserResponse_AgentNotInConversation(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	_, err := engine.UserResponse(context.Background(), conv.ID, "", types.NewID(types.KindAgent), "hi", "")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestUserResponse_NoModelCall(t *testing.T) {
	provider := &stubProvider{}
	engine, _, conv := newTestEngine(t, provider)

	_, err := engine.UserResponse(context.Background(), conv.ID, "", conv.AgentA.ID, "hi", "")
	require.NoError(t, err)
	assert.Empty(t, provider.turnRequests)
}

func TestApplyIntervention(t *testing.T) {
	provider := &stubProvider{turns: []*llm.TurnResponse{{Text: "fine!", Mood: types.MoodAngry}}}
	engine, _, conv := newTestEngine(t, provider)

	result, err := engine.ApplyIntervention(context.Background(), conv.ID, "", llm.InterventionEscalate)
	require.NoError(t, err)
	assert.Equal(t, llm.InterventionEscalate, result.Intervention)

	require.Len(t, provider.turnRequests, 1)
	assert.Equal(t, llm.InterventionEscalate, provider.turnRequests[0].Intervention)
}

func TestApplyIntervention_RequiresDirective(t *testing.T) {
	engine, _, conv := newTestEngine(t, &stubProvider{})

	_, err := engine.ApplyIntervention(context.Background(), conv.ID, "", llm.InterventionNone)
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
}
