// Package dialog drives the honeypot conversation: per-conversation state,
// pluggable state stores, persona-scripted response generation, and the
// continuation policy.
package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TrapWireAI/lurebox/pkg/intel"
	"github.com/TrapWireAI/lurebox/pkg/persona"
)

// State is everything the engine remembers about one conversation.
type State struct {
	ConversationID string          `json:"conversation_id"`
	Persona        persona.Tag     `json:"persona,omitempty"`
	PersonaLocked  bool            `json:"persona_locked"`
	TurnCount      int             `json:"turn_count"`
	StartedAt      time.Time       `json:"started_at"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	Intelligence   *intel.Snapshot `json:"intelligence"`
}

// NewState initializes state for a fresh conversation.
func NewState(conversationID string) *State {
	now := time.Now()
	return &State{
		ConversationID: conversationID,
		StartedAt:      now,
		LastActivityAt: now,
		Intelligence:   intel.NewSnapshot(),
	}
}

// EngagementMetrics summarizes how long a conversation has held the
// scammer's attention.
type EngagementMetrics struct {
	ConversationID  string    `json:"conversation_id"`
	Turns           int       `json:"turns"`
	DurationSeconds float64   `json:"duration_seconds"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// Metrics derives engagement metrics from the state.
func (s *State) Metrics() EngagementMetrics {
	return EngagementMetrics{
		ConversationID:  s.ConversationID,
		Turns:           s.TurnCount,
		DurationSeconds: s.LastActivityAt.Sub(s.StartedAt).Seconds(),
		LastActivityAt:  s.LastActivityAt,
	}
}

// Store persists conversation state. Get returns nil, nil when the
// conversation is unknown; Delete on an unknown conversation is a no-op.
type Store interface {
	Get(ctx context.Context, conversationID string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, conversationID string) error
}

// MemoryStore is a thread-safe in-memory Store for single-node deployments.
type MemoryStore struct {
	states map[string]*State
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

// Get retrieves state by conversation id. Returns nil, nil if not found.
func (m *MemoryStore) Get(_ context.Context, conversationID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[conversationID]
	if !ok {
		return nil, nil
	}
	return state, nil
}

// Save creates or updates a conversation's state.
func (m *MemoryStore) Save(_ context.Context, state *State) error {
	if state == nil {
		return fmt.Errorf("state is nil")
	}
	if state.ConversationID == "" {
		return fmt.Errorf("conversation id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.ConversationID] = state
	return nil
}

// Delete removes a conversation's state.
func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, conversationID)
	return nil
}

// Len reports how many conversations the store currently holds.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

var _ Store = (*MemoryStore)(nil)
