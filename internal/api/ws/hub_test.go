package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seabattle/internal/api/auth"
	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type testBot struct{}

func (testBot) Decide(f game.Field) (game.Cell, error) { return f.Open()[0], nil }

var cookies = auth.NewCookies("test-secret")

func newServer(t *testing.T, logins ...string) (*httptest.Server, *session.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	for _, l := range logins {
		_, err := st.Register(context.Background(), store.User{Login: l, PasswordHash: "x"})
		require.NoError(t, err)
	}
	hub := NewHub(st, cookies, "*")
	svc := session.NewService(hub, st, session.Options{
		Fleet:     game.FleetPolicy{Size: 3, Ships: map[int]int{1: 1}},
		Coin:      func() int { return 1 },
		NewPolicy: func() player.Policy { return testBot{} },
	})
	hub.Attach(svc)

	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func identity(t *testing.T, login string) string {
	t.Helper()
	v, err := cookies.Value(login)
	require.NoError(t, err)
	return auth.CookieName + "=" + v
}

func dial(t *testing.T, srv *httptest.Server, login string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Cookie": {identity(t, login)}})
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"action": action, "data": data}))
}

func expect(t *testing.T, conn *websocket.Conn, action string, into interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	require.Equal(t, action, f.Action, string(f.Data))
	if into != nil {
		require.NoError(t, json.Unmarshal(f.Data, into))
	}
}

func ships(cells ...game.Cell) map[string]interface{} {
	var layout game.Layout
	for _, c := range cells {
		layout = append(layout, game.Ship{Cells: []game.Cell{c}})
	}
	return map[string]interface{}{"ships": layout}
}

func TestHub_FullMatch(t *testing.T) {
	srv, _ := newServer(t, "a", "b")
	a, b := dial(t, srv, "a"), dial(t, srv, "b")

	send(t, a, "join", nil)
	expect(t, a, session.ActionQueued, nil)
	send(t, b, "join", nil)
	expect(t, b, session.ActionQueued, nil)

	var lobby session.LobbyCreated
	expect(t, a, session.ActionLobbyCreated, &lobby)
	assert.Equal(t, "b", lobby.Opponent)
	expect(t, b, session.ActionLobbyCreated, &lobby)
	assert.Equal(t, "a", lobby.Opponent)

	send(t, a, "field", ships(game.Cell{Row: 0, Col: 0}))
	send(t, b, "field", ships(game.Cell{Row: 2, Col: 2}))
	var started session.GameStarted
	expect(t, a, session.ActionGameStarted, &started)
	assert.True(t, started.AttackFirst)
	expect(t, b, session.ActionGameStarted, &started)
	assert.False(t, started.AttackFirst)

	send(t, b, "move", game.Cell{Row: 0, Col: 0})
	var notice session.ErrorNotice
	expect(t, b, session.ActionError, &notice)
	assert.Equal(t, session.ErrNotYourTurn.Error(), notice.Reason)

	send(t, a, "move", game.Cell{Row: 2, Col: 2})
	var res session.MoveResult
	expect(t, a, session.ActionMoveResult, &res)
	assert.Equal(t, game.Destructed, res.Status)
	expect(t, b, session.ActionMoveResult, &res)

	var end session.EndGame
	expect(t, a, session.ActionEndGame, &end)
	assert.Equal(t, session.EndGame{Win: true, Score: 100}, end)
	expect(t, b, session.ActionEndGame, &end)
	assert.False(t, end.Win)
}

func TestHub_DisconnectAbortsSession(t *testing.T) {
	srv, svc := newServer(t, "a", "b")
	a, b := dial(t, srv, "a"), dial(t, srv, "b")

	send(t, a, "join", nil)
	expect(t, a, session.ActionQueued, nil)
	send(t, b, "join", nil)
	expect(t, b, session.ActionQueued, nil)
	expect(t, a, session.ActionLobbyCreated, nil)
	expect(t, b, session.ActionLobbyCreated, nil)

	require.NoError(t, b.Close())
	var notice session.ErrorNotice
	expect(t, a, session.ActionError, &notice)
	assert.Equal(t, "Opponent left the game", notice.Reason)

	_, err := svc.State("a")
	assert.ErrorIs(t, err, session.ErrNotPlaying)
}

func TestHub_StateAndErrors(t *testing.T) {
	srv, _ := newServer(t, "a")
	a := dial(t, srv, "a")

	var notice session.ErrorNotice
	send(t, a, "state", nil)
	expect(t, a, session.ActionError, &notice)
	assert.Equal(t, session.ErrNotPlaying.Error(), notice.Reason)

	send(t, a, "dance", nil)
	expect(t, a, session.ActionError, &notice)
	assert.Equal(t, errUnknownAction.Error(), notice.Reason)

	send(t, a, "play_bot", nil)
	expect(t, a, session.ActionLobbyCreated, nil)
	send(t, a, "state", nil)
	var snap session.Snapshot
	expect(t, a, session.ActionState, &snap)
	assert.Equal(t, "a", snap.First)
	assert.Equal(t, session.AwaitingFields, snap.Status)
}

func TestHub_RejectsAnonymous(t *testing.T) {
	srv, _ := newServer(t, "a")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url, http.Header{"Cookie": {identity(t, "ghost")}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
