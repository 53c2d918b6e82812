package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"seabattle/internal/game"
	"seabattle/internal/player"
)

var ErrNoTarget = errors.New("no open cell to strike")

// lockedRand lets one source back every policy of a process.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{rng: rng}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// RandomPolicy strikes a uniformly random unstruck cell.
type RandomPolicy struct {
	rng *lockedRand
}

func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: newLockedRand(rng)}
}

func (p *RandomPolicy) Decide(f game.Field) (game.Cell, error) {
	open := f.Open()
	if len(open) == 0 {
		return game.Cell{}, ErrNoTarget
	}
	return open[p.rng.Intn(len(open))], nil
}

// HuntPolicy strikes the best scored cell, finishing wounded ships before
// searching on a parity grid. Ties break at random.
type HuntPolicy struct {
	weights game.TargetWeights
	rng     *lockedRand
}

func NewHuntPolicy(w game.TargetWeights, rng *rand.Rand) *HuntPolicy {
	return &HuntPolicy{weights: w, rng: newLockedRand(rng)}
}

func (p *HuntPolicy) Decide(f game.Field) (game.Cell, error) {
	scores := game.TargetScores(f, p.weights)
	best := game.Unavailable
	var candidates []game.Cell
	for r, rowScores := range scores {
		for c, s := range rowScores {
			if f.Cells[r][c] != game.Empty {
				continue
			}
			switch {
			case s > best:
				best = s
				candidates = append(candidates[:0], game.Cell{Row: r, Col: c})
			case s == best:
				candidates = append(candidates, game.Cell{Row: r, Col: c})
			}
		}
	}
	if len(candidates) == 0 {
		return game.Cell{}, ErrNoTarget
	}
	return candidates[p.rng.Intn(len(candidates))], nil
}

// NewPolicy builds a policy by name: "random" or "hunt".
func NewPolicy(name string, rng *rand.Rand) (player.Policy, error) {
	switch name {
	case "random":
		return NewRandomPolicy(rng), nil
	case "hunt", "":
		return NewHuntPolicy(game.DefaultTargetWeights(), rng), nil
	default:
		return nil, fmt.Errorf("unknown bot policy %q", name)
	}
}
