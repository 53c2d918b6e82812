package session

import "seabattle/internal/game"

const (
	ActionQueued       = "queued"
	ActionLobbyCreated = "lobby_created"
	ActionGameStarted  = "game_started"
	ActionMoveResult   = "move_result"
	ActionEndGame      = "end_game"
	ActionError        = "error"
	ActionState        = "state"
)

// Message is the envelope every outbound frame is sent in.
type Message struct {
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

type QueuedNotice struct {
	Nickname string `json:"nickname"`
}

type LobbyCreated struct {
	Opponent string `json:"opponent"`
}

type GameStarted struct {
	AttackFirst bool `json:"attackFirst"`
}

type MoveResult struct {
	Cell     game.Cell       `json:"cell"`
	Status   game.CellStatus `json:"status"`
	YourTurn bool            `json:"yourTurn"`
}

type EndGame struct {
	Win   bool `json:"win"`
	Score int  `json:"score"`
}

type ErrorNotice struct {
	Reason string `json:"reason"`
}

func errorMessage(reason string) Message {
	return Message{Action: ActionError, Data: ErrorNotice{Reason: reason}}
}
