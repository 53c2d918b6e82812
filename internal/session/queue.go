package session

import (
	"sync"

	"seabattle/internal/player"
)

// Queue holds participants waiting for an opponent, oldest first.
type Queue struct {
	mu      sync.Mutex
	waiting []*player.Player
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push appends p and, when two or more are waiting, takes the two oldest
// off the head in the same critical section.
func (q *Queue) Push(p *player.Player) (a, b *player.Player, paired bool, err error) {
	if p.ID == "" {
		return nil, nil, false, ErrUnknownParticipant
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.indexOf(p.ID) >= 0 {
		return nil, nil, false, ErrAlreadyQueued
	}
	q.waiting = append(q.waiting, p)
	if len(q.waiting) < 2 {
		return nil, nil, false, nil
	}
	a, b = q.waiting[0], q.waiting[1]
	q.waiting = append(q.waiting[:0:0], q.waiting[2:]...)
	return a, b, true, nil
}

// Requeue puts participants back at the head of the queue in the given
// order, ahead of anyone who joined since they were taken off.
func (q *Queue) Requeue(ps ...*player.Player) {
	q.mu.Lock()
	defer q.mu.Unlock()
	head := make([]*player.Player, 0, len(ps)+len(q.waiting))
	for _, p := range ps {
		if q.indexOf(p.ID) < 0 {
			head = append(head, p)
		}
	}
	q.waiting = append(head, q.waiting...)
}

// Withdraw removes the participant if still waiting.
func (q *Queue) Withdraw(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexOf(id)
	if i < 0 {
		return false
	}
	q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
	return true
}

func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(id) >= 0
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

func (q *Queue) indexOf(id string) int {
	for i, p := range q.waiting {
		if p.ID == id {
			return i
		}
	}
	return -1
}
