package handlers

import "net/http"

// Routes binds every handler to its method and path pattern on a fresh
// ServeMux. Any handler may be nil, in which case its routes are skipped.
func Routes(agents *AgentHandler, conversations *ConversationHandler, viz *VisualizationHandler, health *HealthHandler, version, buildTime, gitCommit string) *http.ServeMux {
	mux := http.NewServeMux()

	if agents != nil {
		mux.HandleFunc("POST /api/agents/{$}", agents.HandleCreate)
		mux.HandleFunc("GET /api/agents/{$}", agents.HandleList)
		mux.HandleFunc("GET /api/agents/{id}", agents.HandleGet)
		mux.HandleFunc("DELETE /api/agents/{id}", agents.HandleDelete)
	}

	if conversations != nil {
		mux.HandleFunc("POST /api/conversations/create", conversations.HandleCreate)
		mux.HandleFunc("POST /api/conversations/create-with-agents", conversations.HandleCreateWithAgents)
		mux.HandleFunc("POST /api/conversations/generate-response", conversations.HandleGenerateResponse)
		mux.HandleFunc("POST /api/conversations/user-response", conversations.HandleUserResponse)
		mux.HandleFunc("POST /api/conversations/apply-intervention", conversations.HandleApplyIntervention)
		mux.HandleFunc("GET /api/conversations/{$}", conversations.HandleList)
		mux.HandleFunc("GET /api/conversations/{id}/tree", conversations.HandleTree)
		mux.HandleFunc("GET /api/conversations/{id}/messages/{node_id}", conversations.HandleMessages)
		mux.HandleFunc("POST /api/conversations/{id}/branch/{node_id}", conversations.HandleBranch)
		mux.HandleFunc("POST /api/conversations/{id}/analyze", conversations.HandleAnalyze)
	}

	if viz != nil {
		mux.HandleFunc("GET /api/visualization/{id}/tree-data", viz.HandleTreeData)
		mux.HandleFunc("GET /api/visualization/{id}/graph-data", viz.HandleGraphData)
	}

	if health != nil {
		mux.HandleFunc("GET /health", health.HandleHealth)
		mux.HandleFunc("GET /healthz", health.HandleHealthz)
		mux.HandleFunc("GET /ready", health.HandleReady)
		mux.HandleFunc("GET /readyz", health.HandleReady)
		mux.HandleFunc("GET /version", health.HandleVersion(version, buildTime, gitCommit))
	}

	return mux
}
