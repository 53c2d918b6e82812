package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    map[string][]Message
	failing map[string]bool
	closed  map[string]string
	// onSend runs after a message is recorded, outside the lock.
	onSend func(id string, msg Message)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sent:    map[string][]Message{},
		failing: map[string]bool{},
		closed:  map[string]string{},
	}
}

func (f *fakeTransport) Send(id string, msg Message) error {
	f.mu.Lock()
	if f.failing[id] {
		f.mu.Unlock()
		return errors.New("connection closed")
	}
	f.sent[id] = append(f.sent[id], msg)
	hook := f.onSend
	f.mu.Unlock()
	if hook != nil {
		hook(id, msg)
	}
	return nil
}

func (f *fakeTransport) IsConnected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, closed := f.closed[id]
	return !closed && !f.failing[id]
}

func (f *fakeTransport) Close(id, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[id] = reason
}

func (f *fakeTransport) fail(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[id] = true
}

func (f *fakeTransport) messages(id string) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent[id]...)
}

func (f *fakeTransport) actions(id string) []string {
	var out []string
	for _, m := range f.messages(id) {
		out = append(out, m.Action)
	}
	return out
}

func (f *fakeTransport) last(id string) Message {
	msgs := f.messages(id)
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}

func (f *fakeTransport) isClosed(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.closed[id]
	return ok
}

type countingStore struct {
	*store.MemoryStore
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingStore) PersistScores(ctx context.Context, users ...store.User) error {
	c.mu.Lock()
	c.calls++
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return c.MemoryStore.PersistScores(ctx, users...)
}

func (c *countingStore) persistCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// firstOpen strikes the first unstruck cell in row-major order.
type firstOpen struct{}

func (firstOpen) Decide(f game.Field) (game.Cell, error) {
	open := f.Open()
	if len(open) == 0 {
		return game.Cell{}, errors.New("no open cells")
	}
	return open[0], nil
}

var onePerBoard = game.FleetPolicy{Size: 3, Ships: map[int]int{1: 1}}

// fixture builds a service whose coin always puts the second participant
// under attack first.
type fixture struct {
	svc   *Service
	tr    *fakeTransport
	store *countingStore
}

func newFixture(t *testing.T, fleet game.FleetPolicy) *fixture {
	t.Helper()
	tr := newFakeTransport()
	st := &countingStore{MemoryStore: store.NewMemoryStore()}
	svc := NewService(tr, st, Options{
		Fleet:     fleet,
		Coin:      func() int { return 1 },
		NewPolicy: func() player.Policy { return firstOpen{} },
	})
	return &fixture{svc: svc, tr: tr, store: st}
}

func (f *fixture) human(t *testing.T, login string, score int) *player.Player {
	t.Helper()
	u, err := f.store.Register(context.Background(), store.User{Login: login, PasswordHash: "x", Score: score})
	require.NoError(t, err)
	return player.NewHuman(u, f.svc.NewBoard())
}

// pair queues a then b and returns their session.
func (f *fixture) pair(t *testing.T, a, b *player.Player) *Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.Enqueue(ctx, a))
	require.NoError(t, f.svc.Enqueue(ctx, b))
	sess, ok := f.svc.Lookup(a.ID)
	require.True(t, ok)
	return sess
}

func single(r, c int) game.Ship {
	return game.Ship{Cells: []game.Cell{{Row: r, Col: c}}}
}

func score(t *testing.T, f *fixture, login string) int {
	t.Helper()
	u, err := f.store.Lookup(context.Background(), login)
	require.NoError(t, err)
	return u.Score
}
