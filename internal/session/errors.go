package session

import "errors"

var (
	ErrInvalidLayout      = errors.New("invalid layout")
	ErrInvalidMove        = errors.New("invalid move")
	ErrNotGamePhase       = errors.New("not game phase")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrSessionOver        = errors.New("session is over")
	ErrScoring            = errors.New("scoring failure")
	ErrDelivery           = errors.New("delivery failure")
	ErrAlreadyQueued      = errors.New("already waiting for an opponent")
	ErrAlreadyPlaying     = errors.New("already in a session")
	ErrNotPlaying         = errors.New("not in a session")
	ErrUnknownParticipant = errors.New("participant does not belong to session")
)
