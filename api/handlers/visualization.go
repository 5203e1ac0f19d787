package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentduel/agentduel/conversation"
	"github.com/agentduel/agentduel/types"
)

const (
	treeLabelLimit  = 50
	graphLabelLimit = 30
	defaultColor    = "#9ca3af"
)

// VizTreeNode is one node of the frontend tree payload. Field names
// follow the shape the visualization frontend consumes.
type VizTreeNode struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	FullMessage     string         `json:"fullMessage"`
	Mood            string         `json:"mood"`
	Color           string         `json:"color"`
	Agent           string         `json:"agent"`
	AgentID         string         `json:"agentId"`
	Timestamp       *time.Time     `json:"timestamp,omitempty"`
	IsUserOverride  bool           `json:"isUserOverride"`
	Depth           int            `json:"depth"`
	IsCurrentBranch bool           `json:"isCurrentBranch"`
	Children        []*VizTreeNode `json:"children"`
}

// VizSetup describes the scenario and the two personas of a conversation.
type VizSetup struct {
	GeneralSetting   string `json:"generalSetting"`
	SpecificScenario string `json:"specificScenario"`
	AgentA           string `json:"agentA"`
	AgentB           string `json:"agentB"`
}

// VizTreeResponse is the GET tree-data payload.
type VizTreeResponse struct {
	ConversationID string       `json:"conversationId"`
	Setup          VizSetup     `json:"setup"`
	TreeData       *VizTreeNode `json:"treeData"`
	TotalNodes     int          `json:"totalNodes"`
	MaxDepth       int          `json:"maxDepth"`
}

// VizGraphNode is one node of the flat graph payload.
type VizGraphNode struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	FullMessage     string `json:"fullMessage"`
	Mood            string `json:"mood"`
	Color           string `json:"color"`
	Agent           string `json:"agent"`
	IsCurrentBranch bool   `json:"isCurrentBranch"`
	IsUserOverride  bool   `json:"isUserOverride"`
}

// VizGraphEdge is one parent to child link of the graph payload.
type VizGraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// VizGraphResponse is the GET graph-data payload.
type VizGraphResponse struct {
	ConversationID string         `json:"conversationId"`
	Nodes          []VizGraphNode `json:"nodes"`
	Edges          []VizGraphEdge `json:"edges"`
}

// VisualizationHandler serves frontend-shaped tree and graph projections
// of conversations.
type VisualizationHandler struct {
	store  *conversation.Store
	logger *zap.Logger
}

// NewVisualizationHandler creates a visualization handler.
func NewVisualizationHandler(store *conversation.Store, logger *zap.Logger) *VisualizationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisualizationHandler{
		store:  store,
		logger: logger.With(zap.String("component", "visualization_handler")),
	}
}

// HandleTreeData handles GET /api/visualization/{id}/tree-data.
func (h *VisualizationHandler) HandleTreeData(w http.ResponseWriter, r *http.Request) {
	snap, currentIDs, err := h.snapshot(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	root := buildVizTree(snap, snap.Nodes[snap.RootID], 0, currentIDs)
	WriteJSON(w, http.StatusOK, VizTreeResponse{
		ConversationID: snap.ID,
		Setup: VizSetup{
			GeneralSetting:   snap.GeneralSetting,
			SpecificScenario: snap.SpecificScenario,
			AgentA:           snap.AgentA.Name,
			AgentB:           snap.AgentB.Name,
		},
		TreeData:   root,
		TotalNodes: len(snap.Nodes),
		MaxDepth:   maxVizDepth(root),
	})
}

// HandleGraphData handles GET /api/visualization/{id}/graph-data.
func (h *VisualizationHandler) HandleGraphData(w http.ResponseWriter, r *http.Request) {
	snap, currentIDs, err := h.snapshot(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	resp := VizGraphResponse{
		ConversationID: snap.ID,
		Nodes:          make([]VizGraphNode, 0, len(snap.Nodes)),
		Edges:          make([]VizGraphEdge, 0, len(snap.Nodes)),
	}

	var walk func(node *conversation.Node)
	walk = func(node *conversation.Node) {
		gn := VizGraphNode{
			ID:              node.ID,
			Label:           "Start",
			Color:           defaultColor,
			IsCurrentBranch: currentIDs[node.ID],
		}
		if msg := node.Message; msg != nil {
			name := agentNameFor(snap, msg.AgentID)
			gn.Label = name + ": " + truncate(msg.Text, graphLabelLimit)
			gn.FullMessage = msg.Text
			gn.Mood = string(msg.Mood)
			gn.Color = msg.Mood.Color()
			gn.Agent = name
			gn.IsUserOverride = msg.Origin == types.OriginUser
		}
		resp.Nodes = append(resp.Nodes, gn)
		for _, childID := range node.Children {
			child, ok := snap.Nodes[childID]
			if !ok {
				continue
			}
			resp.Edges = append(resp.Edges, VizGraphEdge{From: node.ID, To: child.ID})
			walk(child)
		}
	}
	walk(snap.Nodes[snap.RootID])

	WriteJSON(w, http.StatusOK, resp)
}

func (h *VisualizationHandler) snapshot(r *http.Request) (*conversation.Snapshot, map[string]bool, error) {
	id := r.PathValue("id")
	if err := types.ValidateID(id, types.KindConversation); err != nil {
		return nil, nil, err
	}
	conv, err := h.store.GetConversation(id)
	if err != nil {
		return nil, nil, err
	}
	snap := conv.Snapshot()

	// Mark every node on the root-to-current path so both projections can
	// highlight the active branch.
	currentIDs := make(map[string]bool)
	for node := snap.Nodes[snap.CurrentID]; node != nil; node = snap.Nodes[node.ParentID] {
		currentIDs[node.ID] = true
		if node.ParentID == "" {
			break
		}
	}
	return snap, currentIDs, nil
}

func buildVizTree(snap *conversation.Snapshot, node *conversation.Node, depth int, currentIDs map[string]bool) *VizTreeNode {
	vn := &VizTreeNode{
		ID:              node.ID,
		Name:            "Start",
		Color:           defaultColor,
		Depth:           depth,
		IsCurrentBranch: currentIDs[node.ID],
		Children:        make([]*VizTreeNode, 0, len(node.Children)),
	}
	if msg := node.Message; msg != nil {
		name := agentNameFor(snap, msg.AgentID)
		ts := msg.CreatedAt
		vn.Name = name + ": " + truncate(msg.Text, treeLabelLimit)
		vn.FullMessage = msg.Text
		vn.Mood = string(msg.Mood)
		vn.Color = msg.Mood.Color()
		vn.Agent = name
		vn.AgentID = msg.AgentID
		vn.Timestamp = &ts
		vn.IsUserOverride = msg.Origin == types.OriginUser
	}
	for _, childID := range node.Children {
		if child, ok := snap.Nodes[childID]; ok {
			vn.Children = append(vn.Children, buildVizTree(snap, child, depth+1, currentIDs))
		}
	}
	return vn
}

func agentNameFor(snap *conversation.Snapshot, agentID string) string {
	switch agentID {
	case snap.AgentA.ID:
		return snap.AgentA.Name
	case snap.AgentB.ID:
		return snap.AgentB.Name
	}
	return "Unknown"
}

func maxVizDepth(node *VizTreeNode) int {
	max := node.Depth
	for _, child := range node.Children {
		if d := maxVizDepth(child); d > max {
			max = d
		}
	}
	return max
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
