package session

import "sync"

// Registry maps participant identities to their active session. Each
// identity belongs to at most one session at a time.
type Registry struct {
	mu       sync.RWMutex
	byPlayer map[string]*Session
	sessions map[string]*Session
	bots     map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		byPlayer: map[string]*Session{},
		sessions: map[string]*Session{},
		bots:     map[string]*Session{},
	}
}

func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range s.players {
		if p.ID == "" {
			continue
		}
		if _, ok := r.byPlayer[p.ID]; ok {
			return ErrAlreadyPlaying
		}
	}
	for _, p := range s.players {
		if p.ID != "" {
			r.byPlayer[p.ID] = s
		}
	}
	r.sessions[s.ID] = s
	if s.HasBot() {
		r.bots[s.ID] = s
	}
	return nil
}

// Remove drops both identities of s in one step. Identities already mapped
// to a different session are left alone.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range s.players {
		if cur, ok := r.byPlayer[p.ID]; ok && cur == s {
			delete(r.byPlayer, p.ID)
		}
	}
	delete(r.sessions, s.ID)
	delete(r.bots, s.ID)
}

func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPlayer[id]
	return s, ok
}

func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// BotSessions lists sessions with an automated participant.
func (r *Registry) BotSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.bots))
	for _, s := range r.bots {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
