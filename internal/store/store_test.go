package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "seabattle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore_RegisterLookup(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			u, err := s.Register(ctx, User{Login: "anna", Email: "anna@sea.io", PasswordHash: "x", Score: 500})
			require.NoError(t, err)
			assert.NotZero(t, u.ID)

			got, err := s.Lookup(ctx, "anna")
			require.NoError(t, err)
			assert.Equal(t, u, got)

			_, err = s.Register(ctx, User{Login: "anna", PasswordHash: "y"})
			assert.ErrorIs(t, err, ErrDuplicate)

			_, err = s.Lookup(ctx, "nobody")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_PersistScoresAllOrNothing(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, err := s.Register(ctx, User{Login: "a", PasswordHash: "x", Score: 500})
			require.NoError(t, err)
			b, err := s.Register(ctx, User{Login: "b", PasswordHash: "x", Score: 800})
			require.NoError(t, err)

			a.Score, b.Score = 680, 720
			require.NoError(t, s.PersistScores(ctx, a, b))

			got, err := s.Lookup(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, 680, got.Score)

			a.Score = 1
			err = s.PersistScores(ctx, a, User{Login: "ghost", Score: 5})
			require.ErrorIs(t, err, ErrNotFound)
			got, err = s.Lookup(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, 680, got.Score, "failed batch must not leave partial writes")
		})
	}
}

func TestStore_Leaderboard(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for login, score := range map[string]int{"low": 10, "mid": 50, "top": 90, "also-mid": 50} {
				_, err := s.Register(ctx, User{Login: login, PasswordHash: "x", Score: score})
				require.NoError(t, err)
			}
			board, err := s.Leaderboard(ctx, 3)
			require.NoError(t, err)
			require.Len(t, board, 3)
			assert.Equal(t, "top", board[0].Login)
			assert.Equal(t, "also-mid", board[1].Login)
			assert.Equal(t, "mid", board[2].Login)
			assert.Empty(t, board[0].PasswordHash)
		})
	}
}
