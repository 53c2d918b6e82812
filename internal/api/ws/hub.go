package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"seabattle/internal/api/auth"
	"seabattle/internal/game"
	"seabattle/internal/player"
	"seabattle/internal/session"
	"seabattle/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub holds one websocket per participant identity and implements
// session.Transport on top of them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	users    UserLookup
	cookies  *auth.Cookies
	service  Service
	upgrader websocket.Upgrader
	logger   *log.Entry
}

func NewHub(users UserLookup, cookies *auth.Cookies, allowedOrigin string) *Hub {
	h := &Hub{
		clients: make(map[string]*client),
		users:   users,
		cookies: cookies,
		logger:  log.WithField("component", "ws"),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
	return h
}

// Attach sets the service inbound frames are dispatched to. The service
// itself usually takes the hub as its transport, so the two are wired in
// two steps.
func (h *Hub) Attach(svc Service) {
	h.service = svc
}

func (h *Hub) Send(id string, msg session.Message) error {
	h.mu.RLock()
	c, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return errClosed
	}
	return c.enqueue(msg)
}

func (h *Hub) IsConnected(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return ok && c.alive()
}

func (h *Hub) Close(id, reason string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		c.close(reason)
	}
}

func (h *Hub) HandleWS(c *gin.Context) {
	login, ok := h.cookies.Login(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}
	u, err := h.users.Lookup(c.Request.Context(), login)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("failed to upgrade connection")
		return
	}
	cl := newClient(u.Login, conn, sendBuffer)
	go cl.writeLoop()

	h.mu.Lock()
	prev := h.clients[cl.id]
	h.clients[cl.id] = cl
	h.mu.Unlock()
	if prev != nil {
		prev.close("replaced by a newer connection")
	}

	logger := h.logger.WithField("player", cl.id)
	logger.Info("connected")
	h.readLoop(cl, u)

	h.mu.Lock()
	current := h.clients[cl.id] == cl
	if current {
		delete(h.clients, cl.id)
	}
	h.mu.Unlock()
	cl.close("bye")
	if current {
		h.service.Leave(context.Background(), cl.id)
	}
	logger.Info("disconnected")
}

type inbound struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type fieldRequest struct {
	Ships game.Layout `json:"ships"`
}

func (h *Hub) readLoop(cl *client, u store.User) {
	ctx := context.Background()
	for {
		var msg inbound
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithField("player", cl.id).WithError(err).Warn("read failed")
			}
			return
		}
		if err := h.dispatch(ctx, cl, u, msg); err != nil {
			h.reply(cl, err)
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, cl *client, u store.User, msg inbound) error {
	switch msg.Action {
	case "join":
		return h.service.Enqueue(ctx, h.participant(ctx, u))
	case "play_bot":
		_, err := h.service.PlayBot(ctx, h.participant(ctx, u))
		return err
	case "field":
		var req fieldRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return errBadPayload
		}
		return h.service.AcceptField(ctx, cl.id, req.Ships)
	case "move":
		var cell game.Cell
		if err := json.Unmarshal(msg.Data, &cell); err != nil {
			return errBadPayload
		}
		return h.service.Move(ctx, cl.id, cell)
	case "leave":
		h.service.Leave(ctx, cl.id)
		return nil
	case "state":
		snap, err := h.service.State(cl.id)
		if err != nil {
			return err
		}
		return cl.enqueue(session.Message{Action: session.ActionState, Data: snap})
	default:
		return errUnknownAction
	}
}

// participant builds a fresh participant for u with the latest stored score.
func (h *Hub) participant(ctx context.Context, u store.User) *player.Player {
	if fresh, err := h.users.Lookup(ctx, u.Login); err == nil {
		u = fresh
	}
	return player.NewHuman(u, h.service.NewBoard())
}

var (
	errBadPayload    = errors.New("malformed payload")
	errUnknownAction = errors.New("unknown action")
)

// reply reports dispatch errors the service has not already delivered.
func (h *Hub) reply(cl *client, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidLayout),
		errors.Is(err, session.ErrInvalidMove),
		errors.Is(err, session.ErrNotGamePhase),
		errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrSessionOver),
		errors.Is(err, session.ErrUnknownParticipant),
		errors.Is(err, session.ErrDelivery):
		return
	}
	h.logger.WithField("player", cl.id).WithError(err).Debug("request rejected")
	_ = cl.enqueue(session.Message{Action: session.ActionError, Data: session.ErrorNotice{Reason: err.Error()}})
}
