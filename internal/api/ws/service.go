package ws

import (
	"context"

	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"
)

// Service is what the hub dispatches inbound frames to.
type Service interface {
	NewBoard() *game.Board
	Enqueue(ctx context.Context, p *player.Player) error
	PlayBot(ctx context.Context, p *player.Player) (*session.Session, error)
	AcceptField(ctx context.Context, id string, layout game.Layout) error
	Move(ctx context.Context, id string, cell game.Cell) error
	Leave(ctx context.Context, id string)
	State(id string) (session.Snapshot, error)
}

type UserLookup interface {
	Lookup(ctx context.Context, login string) (store.User, error)
}
