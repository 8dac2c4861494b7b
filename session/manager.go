package session

import (
	"errors"
	"sync"

	"github.com/caomingyu/soulqun/llm"
	"github.com/caomingyu/soulqun/message"
	"github.com/caomingyu/soulqun/persona"
	"github.com/caomingyu/soulqun/rng"
	"github.com/caomingyu/soulqun/topic"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Manager tracks live sessions by id so several can run side by side.
// Sessions share the persona store and responder but nothing mutable.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store     *persona.Store
	responder llm.Responder
	newRng    func() rng.Source
	opts      []Option
}

func NewManager(store *persona.Store, responder llm.Responder, newRng func() rng.Source, opts ...Option) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		store:     store,
		responder: responder,
		newRng:    newRng,
		opts:      opts,
	}
}

// Start creates a new session and registers it.
func (m *Manager) Start(aId, bId string, t *topic.Topic) (*Session, []*message.Message, error) {
	s, opening, err := Start(m.store, m.responder, m.newRng(), aId, bId, t, m.opts...)
	if err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, opening, nil
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops an ended session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
