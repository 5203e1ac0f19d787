package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/agent"
	"github.com/agentduel/agentduel/api"
	"github.com/agentduel/agentduel/conversation"
	"github.com/agentduel/agentduel/internal/metrics"
	"github.com/agentduel/agentduel/llm"
	"github.com/agentduel/agentduel/types"
)

// ConversationHandler serves conversation creation, turns, branching,
// transcripts, and analysis.
type ConversationHandler struct {
	registry *agent.Registry
	store    *conversation.Store
	engine   *conversation.Engine
	analyzer *conversation.Analyzer
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// NewConversationHandler creates a conversation handler. The collector
// may be nil.
func NewConversationHandler(
	registry *agent.Registry,
	store *conversation.Store,
	engine *conversation.Engine,
	analyzer *conversation.Analyzer,
	collector *metrics.Collector,
	logger *zap.Logger,
) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{
		registry: registry,
		store:    store,
		engine:   engine,
		analyzer: analyzer,
		metrics:  collector,
		logger:   logger.With(zap.String("component", "conversation_handler")),
	}
}

// HandleCreate handles POST /api/conversations/create: two new agents
// plus the conversation in one request.
func (h *ConversationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateConversationRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if err := validateScenario(req.GeneralSetting, req.SpecificScenario); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	agentA, err := h.registry.Create(req.AgentAName, req.AgentATraits, "")
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	agentB, err := h.registry.Create(req.AgentBName, req.AgentBTraits, "")
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.createConversation(w, req.GeneralSetting, req.SpecificScenario, agentA.ID, agentB.ID)
}

// HandleCreateWithAgents handles POST /api/conversations/create-with-agents.
func (h *ConversationHandler) HandleCreateWithAgents(w http.ResponseWriter, r *http.Request) {
	var req api.CreateConversationWithAgentsRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	h.createConversation(w, req.GeneralSetting, req.SpecificScenario, req.AgentAID, req.AgentBID)
}

func validateScenario(setting, scenario string) error {
	if strings.TrimSpace(setting) == "" {
		return types.ValidationError("general_setting is required")
	}
	if strings.TrimSpace(scenario) == "" {
		return types.ValidationError("specific_scenario is required")
	}
	return nil
}

func (h *ConversationHandler) createConversation(w http.ResponseWriter, setting, scenario, agentAID, agentBID string) {
	if err := validateScenario(setting, scenario); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	conv, err := h.store.CreateConversation(setting, scenario, agentAID, agentBID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordConversationCreated()
	}
	WriteJSON(w, http.StatusCreated, conv.Snapshot())
}

// HandleList handles GET /api/conversations/.
func (h *ConversationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	out := h.store.SnapshotAll()
	WriteJSON(w, http.StatusOK, out)
}

// HandleGenerateResponse handles POST /api/conversations/generate-response.
func (h *ConversationHandler) HandleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateResponseRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	result, err := h.engine.GenerateResponse(r.Context(), req.ConversationID, req.NodeID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordTurn("ai")
	}
	WriteJSON(w, http.StatusOK, turnResponse(result))
}

// HandleUserResponse handles POST /api/conversations/user-response.
func (h *ConversationHandler) HandleUserResponse(w http.ResponseWriter, r *http.Request) {
	var req api.UserResponseRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	mood := types.Mood(req.Mood)
	result, err := h.engine.UserResponse(r.Context(), req.ConversationID, req.NodeID, req.AgentID, req.Message, mood)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordTurn("user")
	}
	WriteJSON(w, http.StatusOK, turnResponse(result))
}

// HandleApplyIntervention handles POST /api/conversations/apply-intervention.
func (h *ConversationHandler) HandleApplyIntervention(w http.ResponseWriter, r *http.Request) {
	var req api.InterventionRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	intervention, err := llm.ParseIntervention(req.InterventionType)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	result, err := h.engine.ApplyIntervention(r.Context(), req.ConversationID, req.NodeID, intervention)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordTurn("ai")
	}
	WriteJSON(w, http.StatusOK, turnResponse(result))
}

// HandleTree handles GET /api/conversations/{id}/tree.
func (h *ConversationHandler) HandleTree(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := types.ValidateID(id, types.KindConversation); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	conv, err := h.store.GetConversation(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	tree, err := h.store.TreeView(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	path, err := h.store.CurrentPath(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, api.TreeResponse{
		Conversation: conv.Snapshot(),
		Tree:         tree,
		CurrentPath:  path,
	})
}

// HandleMessages handles GET /api/conversations/{id}/messages/{node_id}.
func (h *ConversationHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	nodeID := r.PathValue("node_id")
	if err := types.ValidateID(id, types.KindConversation); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if err := types.ValidateID(nodeID, types.KindNode); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	path, err := h.store.PathToRoot(id, nodeID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, path)
}

// HandleBranch handles POST /api/conversations/{id}/branch/{node_id}.
func (h *ConversationHandler) HandleBranch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	nodeID := r.PathValue("node_id")
	if err := types.ValidateID(id, types.KindConversation); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if err := types.ValidateID(nodeID, types.KindNode); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if err := h.store.SetCurrent(id, nodeID); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordBranchSwitch()
	}

	conv, err := h.store.GetConversation(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, conv.Snapshot())
}

// HandleAnalyze handles POST /api/conversations/{id}/analyze.
func (h *ConversationHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := types.ValidateID(id, types.KindConversation); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), id, "")
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

func turnResponse(result *conversation.TurnResult) api.TurnResponse {
	return api.TurnResponse{
		NodeID:              result.Node.ID,
		Message:             result.Message,
		CurrentPath:         result.Path,
		InterventionApplied: string(result.Intervention),
	}
}
