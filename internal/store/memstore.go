package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*User
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: map[string]*User{},
	}
}

func (m *MemoryStore) Lookup(_ context.Context, login string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[login]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (m *MemoryStore) Register(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Login]; ok {
		return User{}, fmt.Errorf("%w: %s", ErrDuplicate, u.Login)
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.Login] = &u
	return u, nil
}

func (m *MemoryStore) PersistScores(_ context.Context, users ...User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if _, ok := m.users[u.Login]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, u.Login)
		}
	}
	for _, u := range users {
		m.users[u.Login].Score = u.Score
	}
	return nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, limit int) ([]User, error) {
	m.mu.RLock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		row := *u
		row.PasswordHash = ""
		out = append(out, row)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Login < out[j].Login
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
