package conversation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/types"
)

// MoodTransition is one detected shift between consecutive messages on
// the analyzed path.
type MoodTransition struct {
	Index   int        `json:"index"`
	AgentID string     `json:"agent_id"`
	From    types.Mood `json:"from"`
	To      types.Mood `json:"to"`
	Delta   int        `json:"delta"`
	Snippet string     `json:"snippet"`
	Kind    string     `json:"kind"`
}

const (
	TransitionEscalation   = "escalation"
	TransitionDeEscalation = "de-escalation"
)

// ConflictReport combines the locally computed mood progression with the
// observer model's verdict.
type ConflictReport struct {
	ConversationID  string           `json:"conversation_id"`
	Summary         string           `json:"summary"`
	Suggestions     []string         `json:"suggestions"`
	Markdown        string           `json:"markdown"`
	Transitions     []MoodTransition `json:"transitions"`
	MoodProgression []types.Mood     `json:"mood_progression"`
}

// Analyzer produces conflict reports for a conversation path. Mood
// transitions are computed locally from the mood scale; the prose
// summary and suggestions come from the observer model.
type Analyzer struct {
	store    *Store
	provider llm.Provider
	logger   *zap.Logger
}

// NewAnalyzer creates an analyzer over the given store and provider.
func NewAnalyzer(store *Store, provider llm.Provider, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		store:    store,
		provider: provider,
		logger:   logger.With(zap.String("component", "analyzer")),
	}
}

// Analyze reports on the path from the root to the given node (empty
// node id means the current pointer). An empty path cannot be analyzed.
func (a *Analyzer) Analyze(ctx context.Context, conversationID, nodeID string) (*ConflictReport, error) {
	conv, err := a.store.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if nodeID == "" {
		nodeID = conv.Current().ID
	}

	path, err := a.store.PathToRoot(conversationID, nodeID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, types.ValidationError("conversation has no messages to analyze")
	}

	resp, err := a.provider.Analyze(ctx, &llm.AnalysisRequest{
		GeneralSetting:   conv.GeneralSetting,
		SpecificScenario: conv.SpecificScenario,
		AgentA:           conv.AgentA,
		AgentB:           conv.AgentB,
		Transcript:       path,
	})
	if err != nil {
		a.logger.Warn("observer analysis failed",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return nil, err
	}

	report := &ConflictReport{
		ConversationID:  conv.ID,
		Summary:         resp.Summary,
		Suggestions:     resp.Suggestions,
		Markdown:        resp.Markdown,
		Transitions:     DetectTransitions(path),
		MoodProgression: moodProgression(path),
	}

	a.logger.Info("conversation analyzed",
		zap.String("conversation_id", conv.ID),
		zap.Int("messages", len(path)),
		zap.Int("transitions", len(report.Transitions)))

	return report, nil
}

// DetectTransitions scans consecutive messages for mood shifts of more
// than one step on the mood scale. A drop is an escalation, a rise a
// de-escalation.
func DetectTransitions(path []*types.Message) []MoodTransition {
	transitions := make([]MoodTransition, 0)
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		delta := cur.Mood.Scale() - prev.Mood.Scale()
		if delta >= -1 && delta <= 1 {
			continue
		}

		kind := TransitionDeEscalation
		if delta < 0 {
			kind = TransitionEscalation
		}
		transitions = append(transitions, MoodTransition{
			Index:   i,
			AgentID: cur.AgentID,
			From:    prev.Mood,
			To:      cur.Mood,
			Delta:   delta,
			Snippet: snippet(cur.Text),
			Kind:    kind,
		})
	}
	return transitions
}

func moodProgression(path []*types.Message) []types.Mood {
	moods := make([]types.Mood, 0, len(path))
	for _, msg := range path {
		moods = append(moods, msg.Mood)
	}
	return moods
}

const snippetLen = 80

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:snippetLen]))
}
