package bot

import (
	"context"
	"errors"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"

	log "github.com/sirupsen/logrus"
)

// Mover is the part of the session service the driver plays through.
type Mover interface {
	BotSessions() []*session.Session
	SessionAlive(sess *session.Session) bool
	SubmitMove(ctx context.Context, sess *session.Session, attacker *player.Player, cell game.Cell) error
}

// Driver periodically makes a move for every automated participant that
// holds the attack. Moves go through the same path as human moves.
type Driver struct {
	mover    Mover
	interval time.Duration
	logger   *log.Entry
}

func NewDriver(mover Mover, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Driver{
		mover:    mover,
		interval: interval,
		logger:   log.WithField("component", "bot"),
	}
}

// Run ticks until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.WithField("interval", d.interval).Info("bot driver started")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("bot driver stopped")
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick makes at most one move per session and reports how many were applied.
func (d *Driver) Tick(ctx context.Context) int {
	moved := 0
	for _, sess := range d.mover.BotSessions() {
		if ctx.Err() != nil {
			return moved
		}
		if !d.mover.SessionAlive(sess) {
			continue
		}
		bot, field, ok := sess.BotTurn()
		if !ok {
			continue
		}
		logger := d.logger.WithField("session", sess.ID)
		cell, err := bot.Decide(field)
		if err != nil {
			logger.WithError(err).Warn("bot could not decide")
			continue
		}
		// the session may have moved on since the snapshot
		err = d.mover.SubmitMove(ctx, sess, bot, cell)
		switch {
		case err == nil:
			moved++
		case errors.Is(err, session.ErrNotYourTurn), errors.Is(err, session.ErrNotGamePhase):
			logger.WithError(err).Debug("bot move skipped")
		default:
			logger.WithError(err).Warn("bot move rejected")
		}
	}
	return moved
}
