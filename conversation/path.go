package conversation

import (
	"time"

	"github.com/agentduel/agentduel/types"
)

// TreeNode is one entry of the hierarchical tree projection: node id,
// message (absent for the root), and children in creation order.
type TreeNode struct {
	ID        string         `json:"id"`
	Message   *types.Message `json:"message,omitempty"`
	IsCurrent bool           `json:"is_current"`
	Depth     int            `json:"depth"`
	CreatedAt time.Time      `json:"created_at"`
	Children  []*TreeNode    `json:"children"`
}

// GraphNode is one entry of the flat graph projection.
type GraphNode struct {
	ID        string         `json:"id"`
	Message   *types.Message `json:"message,omitempty"`
	IsRoot    bool           `json:"is_root"`
	IsCurrent bool           `json:"is_current"`
}

// GraphEdge is one parent->child edge of the graph projection.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the flat node/edge projection of one conversation tree.
type Graph struct {
	ConversationID string      `json:"conversation_id"`
	Nodes          []GraphNode `json:"nodes"`
	Edges          []GraphEdge `json:"edges"`
}

// PathToRoot returns the messages on the path from the root to the given
// node in chronological order. The root's absent message is skipped, so
// the root itself yields an empty sequence. O(depth).
func (s *Store) PathToRoot(conversationID, nodeID string) ([]*types.Message, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	node, ok := conv.nodes[nodeID]
	if !ok {
		return nil, types.NotFoundError("node", nodeID)
	}

	var reversed []*types.Message
	for current := node; current != nil; {
		if current.Message != nil {
			reversed = append(reversed, current.Message)
		}
		if current.ParentID == "" {
			break
		}
		current = conv.nodes[current.ParentID]
	}

	messages := make([]*types.Message, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		messages = append(messages, reversed[i])
	}
	return messages, nil
}

// CurrentPath returns the messages on the path from the root to the
// conversation's current pointer.
func (s *Store) CurrentPath(conversationID string) ([]*types.Message, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	conv.mu.RLock()
	currentID := conv.CurrentID
	conv.mu.RUnlock()
	return s.PathToRoot(conversationID, currentID)
}

// TreeView materializes the whole tree as a recursive node->children
// structure rooted at the conversation's root node.
func (s *Store) TreeView(conversationID string) (*TreeNode, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	return buildTreeNode(conv, conv.nodes[conv.RootID], 0), nil
}

func buildTreeNode(conv *Conversation, node *Node, depth int) *TreeNode {
	tn := &TreeNode{
		ID:        node.ID,
		Message:   node.Message,
		IsCurrent: node.ID == conv.CurrentID,
		Depth:     depth,
		CreatedAt: node.CreatedAt,
		Children:  make([]*TreeNode, 0, len(node.Children)),
	}
	for _, childID := range node.Children {
		if child, ok := conv.nodes[childID]; ok {
			tn.Children = append(tn.Children, buildTreeNode(conv, child, depth+1))
		}
	}
	return tn
}

// GraphView materializes the tree as a flat node set plus parent->child
// edges. It walks the same arena as TreeView, so the two projections can
// never drift apart.
func (s *Store) GraphView(conversationID string) (*Graph, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	graph := &Graph{
		ConversationID: conv.ID,
		Nodes:          make([]GraphNode, 0, len(conv.nodes)),
		Edges:          make([]GraphEdge, 0, len(conv.nodes)-1),
	}

	// Depth-first from the root so node order is deterministic.
	var walk func(node *Node)
	walk = func(node *Node) {
		graph.Nodes = append(graph.Nodes, GraphNode{
			ID:        node.ID,
			Message:   node.Message,
			IsRoot:    node.IsRoot(),
			IsCurrent: node.ID == conv.CurrentID,
		})
		for _, childID := range node.Children {
			child, ok := conv.nodes[childID]
			if !ok {
				continue
			}
			graph.Edges = append(graph.Edges, GraphEdge{From: node.ID, To: child.ID})
			walk(child)
		}
	}
	walk(conv.nodes[conv.RootID])

	return graph, nil
}
