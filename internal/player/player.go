package player

import (
	"errors"

	"seabattle/internal/game"
	"seabattle/internal/store"
)

// Policy picks the next cell to strike given the damaged field of the opponent.
type Policy interface {
	Decide(field game.Field) (game.Cell, error)
}

var ErrNoPolicy = errors.New("participant has no decision policy")

// Player is one side of a match. Humans carry a connection identity and a
// user record; automated participants carry a decision policy instead.
type Player struct {
	ID    string      `json:"id,omitempty"`
	Name  string      `json:"name"`
	Score int         `json:"score"`
	User  *store.User `json:"-"`
	Board *game.Board `json:"-"`

	policy Policy
}

func NewHuman(u store.User, board *game.Board) *Player {
	return &Player{
		ID:    u.Login,
		Name:  u.Login,
		Score: u.Score,
		User:  &u,
		Board: board,
	}
}

func NewBot(name string, policy Policy, board *game.Board) *Player {
	return &Player{
		Name:   name,
		Board:  board,
		policy: policy,
	}
}

func (p *Player) IsBot() bool {
	return p.policy != nil
}

func (p *Player) Decide(field game.Field) (game.Cell, error) {
	if p.policy == nil {
		return game.Cell{}, ErrNoPolicy
	}
	return p.policy.Decide(field)
}

// Record returns the user record with the player's current score, for
// persistence. ok is false for automated participants.
func (p *Player) Record() (store.User, bool) {
	if p.User == nil {
		return store.User{}, false
	}
	u := *p.User
	u.Score = p.Score
	return u, true
}
