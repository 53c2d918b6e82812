package session

import (
	"fmt"
	"sync"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/player"

	"github.com/google/uuid"
)

type Status int

const (
	AwaitingFields Status = iota
	Active
	Finished
	Aborted
)

func (s Status) String() string {
	switch s {
	case AwaitingFields:
		return "awaiting_fields"
	case Active:
		return "active"
	case Finished:
		return "finished"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for st := AwaitingFields; st <= Aborted; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session status %q", b)
}

// Session is one match between exactly two participants. All transitions
// run under mu; the participants themselves are fixed at construction.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	players [2]*player.Player
	status  Status
	damaged int // index of the side currently under attack
	winner  *player.Player
	ended   bool
	moves   int
	coin    func() int
}

func newSession(first, second *player.Player, coin func() int) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		players:   [2]*player.Player{first, second},
		status:    AwaitingFields,
		coin:      coin,
	}
}

func (s *Session) First() *player.Player  { return s.players[0] }
func (s *Session) Second() *player.Player { return s.players[1] }

func (s *Session) HasBot() bool {
	return s.players[0].IsBot() || s.players[1].IsBot()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Winner() *player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

// Attacker returns the side holding the attack, nil outside active play.
func (s *Session) Attacker() *player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Active {
		return nil
	}
	return s.players[1-s.damaged]
}

// BotTurn reports the automated attacker and a snapshot of the field it is
// attacking, if an automated participant currently holds the attack.
func (s *Session) BotTurn() (*player.Player, game.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != Active {
		return nil, game.Field{}, false
	}
	attacker := s.players[1-s.damaged]
	if !attacker.IsBot() {
		return nil, game.Field{}, false
	}
	return attacker, s.players[s.damaged].Board.Field(), true
}

func (s *Session) side(p *player.Player) int {
	for i, q := range s.players {
		if q == p {
			return i
		}
	}
	return -1
}

func (s *Session) opponent(p *player.Player) *player.Player {
	if s.players[0] == p {
		return s.players[1]
	}
	return s.players[0]
}

func (s *Session) byID(id string) *player.Player {
	for _, p := range s.players {
		if p.ID != "" && p.ID == id {
			return p
		}
	}
	return nil
}

// acceptField places p's fleet; started is true on the call that makes both
// boards accepted.
func (s *Session) acceptField(p *player.Player, layout game.Layout) (started bool, err error) {
	if s.side(p) < 0 {
		return false, ErrUnknownParticipant
	}
	if s.status == Finished || s.status == Aborted {
		return false, ErrSessionOver
	}
	if err := p.Board.PlaceFleet(layout); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	if !s.players[0].Board.Accepted() || !s.players[1].Board.Accepted() {
		return false, nil
	}
	s.damaged = s.coin() & 1
	s.status = Active
	return true, nil
}

// submitMove strikes the defender's board on behalf of attacker. The attack
// passes to the other side after every resolved strike.
func (s *Session) submitMove(attacker *player.Player, cell game.Cell) (game.CellStatus, error) {
	if s.status != Active {
		return game.Empty, ErrNotGamePhase
	}
	side := s.side(attacker)
	if side < 0 {
		return game.Empty, ErrUnknownParticipant
	}
	if side == s.damaged {
		return game.Empty, ErrNotYourTurn
	}

	defender := s.players[s.damaged]
	st, err := defender.Board.Strike(cell)
	if err != nil {
		return game.Empty, fmt.Errorf("%w: %w", ErrInvalidMove, err)
	}
	s.moves++
	s.damaged = side

	if st == game.Destructed && defender.Board.IsFullyDestroyed() {
		s.status = Finished
		s.winner = attacker
	}
	return st, nil
}

// yourTurn reports whether p holds the attack right now.
func (s *Session) yourTurn(p *player.Player) bool {
	return s.status == Active && s.side(p) == 1-s.damaged
}

// markEnded is the one-shot edge guarding scoring and teardown.
func (s *Session) markEnded() bool {
	if s.ended {
		return false
	}
	s.ended = true
	return true
}

func (s *Session) abort() bool {
	if s.status != Finished {
		s.status = Aborted
	}
	return s.markEnded()
}

type Snapshot struct {
	ID       string `json:"id"`
	Status   Status `json:"status"`
	First    string `json:"first"`
	Second   string `json:"second"`
	Attacker string `json:"attacker,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Moves    int    `json:"moves"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:     s.ID,
		Status: s.status,
		First:  s.players[0].Name,
		Second: s.players[1].Name,
		Moves:  s.moves,
	}
	if s.status == Active {
		snap.Attacker = s.players[1-s.damaged].Name
	}
	if s.winner != nil {
		snap.Winner = s.winner.Name
	}
	return snap
}
