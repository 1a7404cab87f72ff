package checkout

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds the checkouts in progress, keyed by the id handed to the
// client when the checkout starts. The payment return flow resolves the same
// id back to the session to settle it after the gateway redirect.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Create(customerID string) (string, *Session) {
	id := uuid.NewString()
	session := NewSession(customerID)
	session.Ref = id
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
	return id, session
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}
