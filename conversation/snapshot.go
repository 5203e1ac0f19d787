package conversation

import (
	"time"

	"github.com/agentduel/agentduel/types"
)

// Snapshot is a point-in-time, fully serializable copy of one
// conversation tree. The arena layout (nodes keyed by id with parent and
// child ids) round-trips directly through JSON.
type Snapshot struct {
	ID               string             `json:"id"`
	GeneralSetting   string             `json:"general_setting"`
	SpecificScenario string             `json:"specific_scenario"`
	AgentA           *types.AgentConfig `json:"agent_a"`
	AgentB           *types.AgentConfig `json:"agent_b"`
	RootID           string             `json:"root_id"`
	CurrentID        string             `json:"current_id"`
	CreatedAt        time.Time          `json:"created_at"`
	Nodes            map[string]*Node   `json:"nodes"`
}

// Snapshot copies the conversation under its lock. Nodes are deep-copied
// so the snapshot stays stable while the live tree keeps growing.
func (c *Conversation) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nodes := make(map[string]*Node, len(c.nodes))
	for id, n := range c.nodes {
		cp := *n
		cp.Children = append([]string(nil), n.Children...)
		nodes[id] = &cp
	}

	return &Snapshot{
		ID:               c.ID,
		GeneralSetting:   c.GeneralSetting,
		SpecificScenario: c.SpecificScenario,
		AgentA:           c.AgentA,
		AgentB:           c.AgentB,
		RootID:           c.RootID,
		CurrentID:        c.CurrentID,
		CreatedAt:        c.CreatedAt,
		Nodes:            nodes,
	}
}

// SnapshotAll captures every conversation in creation order.
func (s *Store) SnapshotAll() []*Snapshot {
	convs := s.List()
	out := make([]*Snapshot, 0, len(convs))
	for _, conv := range convs {
		out = append(out, conv.Snapshot())
	}
	return out
}

// Restore re-inserts conversations from snapshots, preserving the given
// order. Existing conversations with the same id are replaced.
func (s *Store) Restore(snapshots []*Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		nodes := make(map[string]*Node, len(snap.Nodes))
		for id, n := range snap.Nodes {
			cp := *n
			if cp.Children == nil {
				cp.Children = []string{}
			}
			nodes[id] = &cp
		}

		conv := &Conversation{
			ID:               snap.ID,
			GeneralSetting:   snap.GeneralSetting,
			SpecificScenario: snap.SpecificScenario,
			AgentA:           snap.AgentA,
			AgentB:           snap.AgentB,
			RootID:           snap.RootID,
			CurrentID:        snap.CurrentID,
			CreatedAt:        snap.CreatedAt,
			nodes:            nodes,
		}

		if _, ok := s.conversations[conv.ID]; !ok {
			s.order = append(s.order, conv.ID)
		}
		s.conversations[conv.ID] = conv
	}
}
