package bot

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopTransport struct {
	mu   sync.Mutex
	gone map[string]bool
}

func (t *nopTransport) Send(string, session.Message) error { return nil }

func (t *nopTransport) IsConnected(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.gone[id]
}

func (t *nopTransport) Close(id, _ string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gone == nil {
		t.gone = map[string]bool{}
	}
	t.gone[id] = true
}

func struckField(size int, struck map[game.Cell]game.CellStatus) game.Field {
	f := game.Field{Cells: make([][]game.CellStatus, size)}
	for r := range f.Cells {
		f.Cells[r] = make([]game.CellStatus, size)
	}
	for c, st := range struck {
		f.Cells[c.Row][c.Col] = st
	}
	return f
}

func TestPolicies_NeverPickStruckCells(t *testing.T) {
	struck := map[game.Cell]game.CellStatus{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if r != 2 || c != 1 {
				struck[game.Cell{Row: r, Col: c}] = game.Miss
			}
		}
	}
	f := struckField(4, struck)
	for _, name := range []string{"random", "hunt"} {
		p, err := NewPolicy(name, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		for i := 0; i < 20; i++ {
			cell, err := p.Decide(f)
			require.NoError(t, err)
			assert.Equal(t, game.Cell{Row: 2, Col: 1}, cell, name)
		}
	}

	struck[game.Cell{Row: 2, Col: 1}] = game.Hit
	for _, name := range []string{"random", "hunt"} {
		p, err := NewPolicy(name, nil)
		require.NoError(t, err)
		_, err = p.Decide(struckField(4, struck))
		require.ErrorIs(t, err, ErrNoTarget)
	}

	_, err := NewPolicy("psychic", nil)
	assert.Error(t, err)
}

func TestHuntPolicy_FinishesWoundedShip(t *testing.T) {
	f := struckField(6, map[game.Cell]game.CellStatus{
		{Row: 3, Col: 2}: game.Hit,
		{Row: 3, Col: 3}: game.Hit,
		{Row: 2, Col: 2}: game.Miss,
	})
	p := NewHuntPolicy(game.DefaultTargetWeights(), rand.New(rand.NewSource(3)))
	for i := 0; i < 10; i++ {
		cell, err := p.Decide(f)
		require.NoError(t, err)
		assert.Contains(t, []game.Cell{{Row: 3, Col: 1}, {Row: 3, Col: 4}}, cell)
	}
}

func newService(t *testing.T, tr session.Transport) (*session.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := session.NewService(tr, st, session.Options{
		Fleet: game.FleetPolicy{Size: 4, Ships: map[int]int{2: 1, 1: 1}},
		Coin:  func() int { return 1 },
		NewPolicy: func() player.Policy {
			return NewHuntPolicy(game.DefaultTargetWeights(), rand.New(rand.NewSource(11)))
		},
	})
	return svc, st
}

func TestDriver_PlaysSessionToTheEnd(t *testing.T) {
	svc, st := newService(t, &nopTransport{})
	ctx := context.Background()
	u, err := st.Register(ctx, store.User{Login: "h", PasswordHash: "x", Score: 50})
	require.NoError(t, err)
	h := player.NewHuman(u, svc.NewBoard())

	sess, err := svc.PlayBot(ctx, h)
	require.NoError(t, err)
	require.NoError(t, svc.AcceptField(ctx, "h", game.Layout{
		{Cells: []game.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
		{Cells: []game.Cell{{Row: 3, Col: 3}}},
	}))

	d := NewDriver(svc, time.Millisecond)
	assert.Zero(t, d.Tick(ctx), "the human attacks first")

	targets := sess.Second().Board.Field().Open()
	for _, c := range targets {
		require.NoError(t, svc.Move(ctx, "h", c))
		if sess.Status() != session.Active {
			break
		}
		require.Equal(t, 1, d.Tick(ctx))
		if sess.Status() != session.Active {
			break
		}
	}
	assert.Equal(t, session.Finished, sess.Status())
	assert.Empty(t, svc.BotSessions())
	assert.Zero(t, d.Tick(ctx))
}

func TestDriver_SkipsDisconnectedSessions(t *testing.T) {
	tr := &nopTransport{}
	svc, st := newService(t, tr)
	ctx := context.Background()
	u, err := st.Register(ctx, store.User{Login: "h", PasswordHash: "x"})
	require.NoError(t, err)
	sess, err := svc.PlayBot(ctx, player.NewHuman(u, svc.NewBoard()))
	require.NoError(t, err)
	require.NoError(t, svc.AcceptField(ctx, "h", game.Layout{
		{Cells: []game.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
		{Cells: []game.Cell{{Row: 3, Col: 3}}},
	}))
	require.NoError(t, svc.Move(ctx, "h", game.Cell{Row: 2, Col: 2}))
	require.Equal(t, session.Active, sess.Status())

	tr.Close("h", "gone")
	d := NewDriver(svc, time.Millisecond)
	assert.Zero(t, d.Tick(ctx))
	assert.Equal(t, 1, sess.Snapshot().Moves)
}

func TestDriver_RunStopsOnCancel(t *testing.T) {
	svc, _ := newService(t, &nopTransport{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewDriver(svc, time.Millisecond).Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}
