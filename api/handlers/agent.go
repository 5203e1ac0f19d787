package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/agent"
	"github.com/agentduel/agentduel/api"
	"github.com/agentduel/agentduel/types"
)

// AgentHandler serves agent persona CRUD.
type AgentHandler struct {
	registry *agent.Registry
	logger   *zap.Logger
}

// NewAgentHandler creates an agent handler.
func NewAgentHandler(registry *agent.Registry, logger *zap.Logger) *AgentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentHandler{
		registry: registry,
		logger:   logger.With(zap.String("component", "agent_handler")),
	}
}

// HandleCreate handles POST /api/agents/.
func (h *AgentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAgentRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	created, err := h.registry.Create(req.Name, req.PersonalityTraits, req.BehavioralInstructions)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /api/agents/.
func (h *AgentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.registry.List())
}

// HandleGet handles GET /api/agents/{id}.
func (h *AgentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := types.ValidateID(id, types.KindAgent); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	found, err := h.registry.Get(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, found)
}

// HandleDelete handles DELETE /api/agents/{id}.
func (h *AgentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := types.ValidateID(id, types.KindAgent); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if err := h.registry.Delete(id); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "agent deleted"})
}
