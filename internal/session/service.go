package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/store"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	Fleet   game.FleetPolicy
	Rules   Rules
	BotName string
	// NewPolicy builds the decision policy for each automated participant.
	NewPolicy func() player.Policy
	// Coin picks the side attacked first; 0 or 1. Defaults to a fair coin.
	Coin func() int
}

// Service wires the queue, the registry and the per-session state machine
// to the transport and the score store.
type Service struct {
	transport Transport
	scores    ScoreStore
	queue     *Queue
	registry  *Registry
	opts      Options
	logger    *log.Entry

	// pairMu makes leaving the queue and entering the registry one step.
	pairMu sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewService(t Transport, scores ScoreStore, opts Options) *Service {
	if opts.Fleet.Size == 0 {
		opts.Fleet = game.ClassicFleet()
	}
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.BotName == "" {
		opts.BotName = "Bot"
	}
	s := &Service{
		transport: t,
		scores:    scores,
		queue:     NewQueue(),
		registry:  NewRegistry(),
		opts:      opts,
		logger:    log.WithField("component", "session"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if s.opts.Coin == nil {
		s.opts.Coin = func() int { return s.intn(2) }
	}
	return s
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) Fleet() game.FleetPolicy { return s.opts.Fleet }
func (s *Service) Queue() *Queue           { return s.queue }
func (s *Service) Registry() *Registry     { return s.registry }

func (s *Service) Lookup(id string) (*Session, bool) {
	return s.registry.Lookup(id)
}

func (s *Service) BotSessions() []*Session {
	return s.registry.BotSessions()
}

// NewBoard returns an empty board under the service's fleet policy.
func (s *Service) NewBoard() *game.Board {
	return game.NewBoard(s.opts.Fleet)
}

// Enqueue puts p in the matchmaking queue and pairs the two oldest waiting
// participants as soon as there are two.
func (s *Service) Enqueue(ctx context.Context, p *player.Player) error {
	s.pairMu.Lock()
	if _, ok := s.registry.Lookup(p.ID); ok {
		s.pairMu.Unlock()
		return ErrAlreadyPlaying
	}
	a, b, paired, err := s.queue.Push(p)
	if err != nil {
		s.pairMu.Unlock()
		return err
	}
	var sess *Session
	if paired {
		if sess, err = s.register(a, b); err != nil {
			s.queue.Requeue(a, b)
			s.pairMu.Unlock()
			return err
		}
	}
	s.pairMu.Unlock()

	logger := s.logger.WithField("player", p.ID)
	logger.Info("queued")
	if err := s.transport.Send(p.ID, Message{Action: ActionQueued, Data: QueuedNotice{Nickname: p.Name}}); err != nil {
		logger.WithError(err).Warn("queued notice not delivered")
		s.transport.Close(p.ID, "server error")
		if !paired {
			s.queue.Withdraw(p.ID)
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}
	}
	if !paired {
		return nil
	}
	return s.announce(sess)
}

// Withdraw takes a participant out of the queue if it is still waiting.
func (s *Service) Withdraw(id string) bool {
	return s.queue.Withdraw(id)
}

// PlayBot pairs p with a freshly created automated participant whose fleet
// is already placed.
func (s *Service) PlayBot(ctx context.Context, p *player.Player) (*Session, error) {
	var policy player.Policy
	if s.opts.NewPolicy != nil {
		policy = s.opts.NewPolicy()
	}
	if policy == nil {
		return nil, player.ErrNoPolicy
	}
	s.rngMu.Lock()
	layout, err := game.RandomLayout(s.opts.Fleet, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		return nil, err
	}
	board := s.NewBoard()
	if err := board.PlaceFleet(layout); err != nil {
		return nil, err
	}
	bot := player.NewBot(s.opts.BotName, policy, board)

	s.pairMu.Lock()
	if _, ok := s.registry.Lookup(p.ID); ok {
		s.pairMu.Unlock()
		return nil, ErrAlreadyPlaying
	}
	s.queue.Withdraw(p.ID)
	sess, err := s.register(p, bot)
	s.pairMu.Unlock()
	if err != nil {
		return nil, err
	}
	return sess, s.announce(sess)
}

// register creates and registers the session of a and b. Caller holds
// pairMu, so nobody leaves the queue for a session without passing here.
func (s *Service) register(a, b *player.Player) (*Session, error) {
	sess := newSession(a, b, s.opts.Coin)
	if err := s.registry.Register(sess); err != nil {
		s.logger.WithError(err).Warnf("could not register session for %s and %s", a.Name, b.Name)
		return nil, err
	}
	s.logger.WithFields(log.Fields{"session": sess.ID, "first": a.Name, "second": b.Name}).Info("session created")
	return sess, nil
}

// announce tells both sides about their new session; if either cannot be
// reached the session is torn down.
func (s *Service) announce(sess *Session) error {
	a, b := sess.First(), sess.Second()
	sess.mu.Lock()
	failed := s.deliver(sess, a, Message{Action: ActionLobbyCreated, Data: LobbyCreated{Opponent: b.Name}})
	failed = s.deliver(sess, b, Message{Action: ActionLobbyCreated, Data: LobbyCreated{Opponent: a.Name}}) || failed
	sess.mu.Unlock()

	if failed {
		s.logger.WithField("session", sess.ID).Warn("failed to create session, closing both sides")
		s.forceClose(sess)
		return ErrDelivery
	}
	return nil
}

// AcceptField places the fleet of participant id. The session becomes
// active once both fleets are placed.
func (s *Service) AcceptField(ctx context.Context, id string, layout game.Layout) error {
	sess, p, err := s.find(id)
	if err != nil {
		return err
	}
	logger := s.logger.WithFields(log.Fields{"session": sess.ID, "player": id})

	sess.mu.Lock()
	started, err := sess.acceptField(p, layout)
	if err != nil {
		s.deliver(sess, p, errorMessage(err.Error()))
		sess.mu.Unlock()
		logger.WithError(err).Info("field rejected")
		return err
	}
	failed := false
	if started {
		for _, q := range sess.players {
			failed = s.deliver(sess, q, Message{Action: ActionGameStarted, Data: GameStarted{AttackFirst: sess.yourTurn(q)}}) || failed
		}
	}
	sess.mu.Unlock()

	if started {
		logger.Info("game started")
	}
	if failed {
		logger.Warn("can't start game, closing both sides")
		s.forceClose(sess)
		return ErrDelivery
	}
	return nil
}

// Move submits a strike for participant id in its current session.
func (s *Service) Move(ctx context.Context, id string, cell game.Cell) error {
	sess, p, err := s.find(id)
	if err != nil {
		return err
	}
	return s.SubmitMove(ctx, sess, p, cell)
}

// SubmitMove is the single entry point for strikes, human or automated.
func (s *Service) SubmitMove(ctx context.Context, sess *Session, attacker *player.Player, cell game.Cell) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	logger := s.logger.WithFields(log.Fields{"session": sess.ID, "player": attacker.Name, "cell": cell})
	st, err := sess.submitMove(attacker, cell)
	switch {
	case errors.Is(err, ErrNotGamePhase):
		for _, q := range sess.players {
			s.deliver(sess, q, errorMessage("Not game phase"))
		}
		return err
	case err != nil:
		s.deliver(sess, attacker, errorMessage(err.Error()))
		logger.WithError(err).Debug("move rejected")
		return err
	}

	logger.WithField("status", st).Debug("move resolved")
	for _, q := range sess.players {
		s.deliver(sess, q, Message{Action: ActionMoveResult, Data: MoveResult{Cell: cell, Status: st, YourTurn: sess.yourTurn(q)}})
	}
	if sess.status == Finished {
		s.end(ctx, sess)
	}
	return nil
}

// end runs scoring, end-of-game notification and teardown once per session.
// Caller holds sess.mu.
func (s *Service) end(ctx context.Context, sess *Session) {
	if !sess.markEnded() {
		return
	}
	logger := s.logger.WithFields(log.Fields{"session": sess.ID, "winner": sess.winner.Name})
	if err := s.applyScore(ctx, sess); err != nil {
		logger.WithError(err).Warn("could not update scores")
	}
	for _, q := range sess.players {
		s.deliver(sess, q, Message{Action: ActionEndGame, Data: EndGame{Win: q == sess.winner, Score: q.Score}})
	}
	s.registry.Remove(sess)
	logger.Info("session finished")
}

func (s *Service) applyScore(ctx context.Context, sess *Session) error {
	winner := sess.winner
	loser := sess.opponent(winner)
	won, ok := winner.Record()
	if !ok {
		return nil
	}
	out := s.opts.Rules.Score(winner.Score, loser.Score, loser.IsBot())

	won.Score = out.WinnerScore
	users := []store.User{won}
	if out.LoserChanged {
		lost, _ := loser.Record()
		lost.Score = out.LoserScore
		users = append(users, lost)
	}
	if err := s.scores.PersistScores(ctx, users...); err != nil {
		return fmt.Errorf("%w: %w", ErrScoring, err)
	}
	winner.Score = out.WinnerScore
	if out.LoserChanged {
		loser.Score = out.LoserScore
	}
	return nil
}

// Leave handles a participant that went away: it leaves the queue, or its
// session is aborted without scoring and the other side is told.
func (s *Service) Leave(ctx context.Context, id string) {
	if s.queue.Withdraw(id) {
		s.logger.WithField("player", id).Info("left the queue")
		return
	}
	sess, ok := s.registry.Lookup(id)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.abort() {
		return
	}
	s.registry.Remove(sess)
	if leaver := sess.byID(id); leaver != nil {
		s.deliver(sess, sess.opponent(leaver), errorMessage("Opponent left the game"))
	}
	s.logger.WithFields(log.Fields{"session": sess.ID, "player": id}).Info("session aborted")
}

// SessionAlive is true while every human participant is still connected.
func (s *Service) SessionAlive(sess *Session) bool {
	for _, p := range sess.players {
		if p.IsBot() {
			continue
		}
		if !s.transport.IsConnected(p.ID) {
			return false
		}
	}
	return true
}

// State describes the session participant id is in.
func (s *Service) State(id string) (Snapshot, error) {
	sess, ok := s.registry.Lookup(id)
	if !ok {
		return Snapshot{}, ErrNotPlaying
	}
	return sess.Snapshot(), nil
}

func (s *Service) find(id string) (*Session, *player.Player, error) {
	sess, ok := s.registry.Lookup(id)
	if !ok {
		return nil, nil, ErrNotPlaying
	}
	p := sess.byID(id)
	if p == nil {
		return nil, nil, ErrUnknownParticipant
	}
	return sess, p, nil
}

// deliver sends msg to p unless p has no connection. It reports whether the
// delivery failed; a failed delivery never undoes the transition.
func (s *Service) deliver(sess *Session, p *player.Player, msg Message) (failed bool) {
	if p.ID == "" {
		return false
	}
	if err := s.transport.Send(p.ID, msg); err != nil {
		s.logger.WithFields(log.Fields{"session": sess.ID, "player": p.ID, "action": msg.Action}).
			WithError(err).Warn("can't send message")
		return true
	}
	return false
}

func (s *Service) forceClose(sess *Session) {
	for _, p := range sess.players {
		if p.ID != "" {
			s.transport.Close(p.ID, "server error")
		}
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.abort() {
		s.registry.Remove(sess)
	}
}
