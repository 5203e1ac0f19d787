package agent

import (
	"strings"
	"sync"
	"time"

	"github.com/agentduel/agentduel/types"
	"go.uber.org/zap"
)

// Registry stores agent persona definitions. Personas are immutable once
// created; the registry preserves creation order for listing.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]*types.AgentConfig
	order  []string
	logger *zap.Logger
}

// NewRegistry creates a new agent registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		agents: make(map[string]*types.AgentConfig),
		logger: logger.With(zap.String("component", "agent_registry")),
	}
}

// Create allocates a new identifier, stores the persona, and returns it.
// Name and personality traits are required.
func (r *Registry) Create(name, traits, instructions string) (*types.AgentConfig, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.ValidationError("agent name is required")
	}
	if strings.TrimSpace(traits) == "" {
		return nil, types.ValidationError("personality traits are required")
	}

	cfg := &types.AgentConfig{
		ID:                     types.NewID(types.KindAgent),
		Name:                   name,
		PersonalityTraits:      traits,
		BehavioralInstructions: instructions,
	}
	cfg.CreatedAt = time.Now()

	r.mu.Lock()
	r.agents[cfg.ID] = cfg
	r.order = append(r.order, cfg.ID)
	r.mu.Unlock()

	r.logger.Info("agent created",
		zap.String("agent_id", cfg.ID),
		zap.String("name", cfg.Name),
	)

	return cfg, nil
}

// Get returns the persona for the given id.
func (r *Registry) Get(id string) (*types.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.agents[id]
	if !ok {
		return nil, types.NotFoundError("agent", id)
	}
	return cfg, nil
}

// List returns all personas in creation order.
func (r *Registry) List() []*types.AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*types.AgentConfig, 0, len(r.order))
	for _, id := range r.order {
		if cfg, ok := r.agents[id]; ok {
			out = append(out, cfg)
		}
	}
	return out
}

// Delete removes a persona. Conversations that already reference the
// agent keep their copy; deletion only prevents new lookups.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return types.NotFoundError("agent", id)
	}
	delete(r.agents, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("agent deleted", zap.String("agent_id", id))
	return nil
}

// Restore re-inserts personas loaded from a snapshot, preserving the
// given order. Existing entries with the same id are overwritten.
func (r *Registry) Restore(agents []*types.AgentConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cfg := range agents {
		if _, ok := r.agents[cfg.ID]; !ok {
			r.order = append(r.order, cfg.ID)
		}
		r.agents[cfg.ID] = cfg
	}
}
