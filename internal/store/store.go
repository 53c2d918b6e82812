package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type User struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Score        int    `json:"score"`
}

// Store is the credential and score store consumed by the game core and the
// HTTP API.
type Store interface {
	Lookup(ctx context.Context, login string) (User, error)
	Register(ctx context.Context, u User) (User, error)
	// PersistScores writes the Score of every given user. Either all of
	// them are written or none is.
	PersistScores(ctx context.Context, users ...User) error
	Leaderboard(ctx context.Context, limit int) ([]User, error)
}
