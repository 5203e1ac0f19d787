package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/types"
)

func TestDetectTransitions(t *testing.T) {
	msg := func(mood types.Mood, text string) *types.Message {
		return types.NewMessage("a-1", text, mood, types.OriginAI)
	}

	tests := []struct {
		name string
		path []*types.Message
		want []string
	}{
		{
			name: "empty path",
			path: nil,
			want: []string{},
		},
		{
			name: "steady moods",
			path: []*types.Message{msg(types.MoodNeutral, "a"), msg(types.MoodCalm, "b")},
			want: []string{},
		},
		{
			name: "escalation",
			path: []*types.Message{msg(types.MoodHappy, "a"), msg(types.MoodFrustrated, "boom")},
			want: []string{TransitionEscalation},
		},
		{
			name: "de-escalation",
			path: []*types.Message{msg(types.MoodAngry, "a"), msg(types.MoodCalm, "sorry")},
			want: []string{TransitionDeEscalation},
		},
		{
			name: "single step is not a transition",
			path: []*types.Message{msg(types.MoodNeutral, "a"), msg(types.MoodSad, "b")},
			want: []string{},
		},
		{
			name: "mixed sequence",
			path: []*types.Message{
				msg(types.MoodHappy, "a"),
				msg(types.MoodAngry, "b"),
				msg(types.MoodExcited, "c"),
			},
			want: []string{TransitionEscalation, TransitionDeEscalation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transitions := DetectTransitions(tt.path)
			kinds := make([]string, 0, len(transitions))
			for _, tr := range transitions {
				kinds = append(kinds, tr.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestDetectTransitions_Snippet(t *testing.T) {
	long := strings.Repeat("x", 200)
	path := []*types.Message{
		types.NewMessage("a-1", "fine", types.MoodHappy, types.OriginAI),
		types.NewMessage("a-1", long, types.MoodAngry, types.OriginAI),
	}

	transitions := DetectTransitions(path)
	require.Len(t, transitions, 1)
	assert.Equal(t, 1, transitions[0].Index)
	assert.True(t, strings.HasSuffix(transitions[0].Snippet, "..."))
	assert.Less(t, len(transitions[0].Snippet), len(long))
}

func TestAnalyzer_Analyze(t *testing.T) {
	provider := &stubProvider{
		turns: []*llm.TurnResponse{{Text: "x", Mood: types.MoodNeutral}},
		analysis: &llm.AnalysisResponse{
			Summary:     "tense standoff",
			Suggestions: []string{"take a break"},
			Markdown:    "# Report",
		},
	}
	store, conv := newTestConversation(t)
	engine := NewEngine(store, provider, zap.NewNop())
	analyzer := NewAnalyzer(store, provider, zap.NewNop())
	ctx := context.Background()

	_, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)
	_, err = engine.UserResponse(ctx, conv.ID, "", conv.AgentB.ID, "furious reply", types.MoodAngry)
	require.NoError(t, err)

	report, err := analyzer.Analyze(ctx, conv.ID, "")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, report.ConversationID)
	assert.Equal(t, "tense standoff", report.Summary)
	assert.Equal(t, []string{"take a break"}, report.Suggestions)
	assert.Equal(t, []types.Mood{types.MoodNeutral, types.MoodAngry}, report.MoodProgression)
	require.Len(t, report.Transitions, 1)
	assert.Equal(t, TransitionEscalation, report.Transitions[0].Kind)
}

func TestAnalyzer_EmptyConversation(t *testing.T) {
	store, conv := newTestConversation(t)
	analyzer := NewAnalyzer(store, &stubProvider{}, zap.NewNop())

	_, err := analyzer.Analyze(context.Background(), conv.ID, "")
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
}

func TestAnalyzer_ProviderFailure(t *testing.T) {
	provider := &stubProvider{
		turns:       []*llm.TurnResponse{{Text: "x", Mood: types.MoodNeutral}},
		analysisErr: types.NewError(types.ErrModelUnavailable, "down"),
	}
	store, conv := newTestConversation(t)
	engine := NewEngine(store, provider, zap.NewNop())
	analyzer := NewAnalyzer(store, provider, zap.NewNop())
	ctx := context.Background()

	_, err := engine.GenerateResponse(ctx, conv.ID, "")
	require.NoError(t, err)

	_, err = analyzer.Analyze(ctx, conv.ID, "")
	require.Error(t, err)
	assert.Equal(t, types.ErrModelUnavailable, types.GetErrorCode(err))
}
