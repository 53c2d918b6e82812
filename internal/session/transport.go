package session

import (
	"context"

	"seabattle/internal/store"
)

// Transport delivers messages to connected participants.
type Transport interface {
	Send(participantID string, msg Message) error
	IsConnected(participantID string) bool
	Close(participantID string, reason string)
}

// ScoreStore persists updated scores at the end of a match.
type ScoreStore interface {
	PersistScores(ctx context.Context, users ...store.User) error
}
