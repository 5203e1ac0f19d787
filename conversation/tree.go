package conversation

import (
	"sync"
	"time"

	"github.com/agentduel/agentduel/agent"
	"github.com/agentduel/agentduel/types"
	"go.uber.org/zap"
)

// Node is one point in a conversation tree. The root node carries no
// message and represents "conversation start". A node's parent link is
// permanent; children accumulate monotonically in creation order.
type Node struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	ParentID       string         `json:"parent_id,omitempty"`
	Children       []string       `json:"children"`
	Message        *types.Message `json:"message,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// IsRoot reports whether the node is its conversation's root.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// Conversation is a scenario plus a branching tree of messages between
// two bound agents. The node arena is keyed by node id; parent/child
// linkage is by identifier rather than owning pointers, which keeps the
// structure acyclic and trivially serializable.
type Conversation struct {
	ID               string             `json:"id"`
	GeneralSetting   string             `json:"general_setting"`
	SpecificScenario string             `json:"specific_scenario"`
	AgentA           *types.AgentConfig `json:"agent_a"`
	AgentB           *types.AgentConfig `json:"agent_b"`
	RootID           string             `json:"root_id"`
	CurrentID        string             `json:"current_id"`
	CreatedAt        time.Time          `json:"created_at"`

	// nodes is the arena. Guarded by mu together with CurrentID:
	// all mutations to one conversation are serialized, conversations
	// are independent of each other.
	nodes map[string]*Node
	mu    sync.RWMutex
}

// Store owns all conversation trees. Agent references are validated
// against the registry at creation time and immutable afterwards.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	order         []string
	agents        *agent.Registry
	logger        *zap.Logger
}

// NewStore creates a conversation store backed by the given agent registry.
func NewStore(agents *agent.Registry, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		conversations: make(map[string]*Conversation),
		agents:        agents,
		logger:        logger.With(zap.String("component", "conversation_store")),
	}
}

// CreateConversation validates both agent references, then atomically
// creates the conversation together with its message-less root node and
// points the current pointer at the root.
func (s *Store) CreateConversation(setting, scenario, agentAID, agentBID string) (*Conversation, error) {
	agentA, err := s.agents.Get(agentAID)
	if err != nil {
		return nil, err
	}
	agentB, err := s.agents.Get(agentBID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	root := &Node{
		ID:        types.NewID(types.KindNode),
		Children:  []string{},
		CreatedAt: now,
	}
	conv := &Conversation{
		ID:               types.NewID(types.KindConversation),
		GeneralSetting:   setting,
		SpecificScenario: scenario,
		AgentA:           agentA,
		AgentB:           agentB,
		RootID:           root.ID,
		CurrentID:        root.ID,
		CreatedAt:        now,
		nodes:            map[string]*Node{root.ID: root},
	}
	root.ConversationID = conv.ID

	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.order = append(s.order, conv.ID)
	s.mu.Unlock()

	s.logger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("agent_a", agentA.ID),
		zap.String("agent_b", agentB.ID),
	)

	return conv, nil
}

// GetConversation returns the conversation for the given id.
func (s *Store) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, types.NotFoundError("conversation", id)
	}
	return conv, nil
}

// List returns all conversations in creation order.
func (s *Store) List() []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.order))
	for _, id := range s.order {
		if conv, ok := s.conversations[id]; ok {
			out = append(out, conv)
		}
	}
	return out
}

// GetNode returns a node scoped to its owning conversation. Node ids from
// a different conversation are rejected with NotFound: a node id is only
// meaningful within the conversation it belongs to.
func (s *Store) GetNode(conversationID, nodeID string) (*Node, error) {
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
	return node, nil
}

// SetCurrent moves the conversation's current pointer to an existing node
// ("branch"). It is a pure pointer move: no node is created, deleted, or
// mutated. Idempotent.
func (s *Store) SetCurrent(conversationID, nodeID string) error {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if _, ok := conv.nodes[nodeID]; !ok {
		return types.NotFoundError("node", nodeID)
	}
	conv.CurrentID = nodeID

	s.logger.Debug("branch point moved",
		zap.String("conversation_id", conversationID),
		zap.String("node_id", nodeID),
	)
	return nil
}

// AppendChild creates a new node carrying the message under the given
// parent and advances the current pointer to it. This is the only
// operation that grows a tree; it never removes or reorders existing
// nodes, so previously returned node references stay valid forever.
// On any failure the tree is untouched.
func (s *Store) AppendChild(conversationID, parentID string, msg *types.Message) (*Node, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, types.ValidationError("message is required")
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	parent, ok := conv.nodes[parentID]
	if !ok {
		return nil, types.NotFoundError("node", parentID)
	}

	node := &Node{
		ID:             types.NewID(types.KindNode),
		ConversationID: conv.ID,
		ParentID:       parent.ID,
		Children:       []string{},
		Message:        msg,
		CreatedAt:      time.Now(),
	}

	conv.nodes[node.ID] = node
	parent.Children = append(parent.Children, node.ID)
	conv.CurrentID = node.ID

	s.logger.Debug("node appended",
		zap.String("conversation_id", conv.ID),
		zap.String("node_id", node.ID),
		zap.String("parent_id", parent.ID),
	)

	return node, nil
}

// Current returns the conversation's current node.
func (c *Conversation) Current() *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[c.CurrentID]
}

// NodeCount returns the number of nodes in the tree, root included.
func (c *Conversation) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}
