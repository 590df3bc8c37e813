package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/chat"
	"github.com/trezcool/darasa/core/user"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type (
	// hub keeps the set of open connections and fans room messages out to
	// the members of that room.
	hub struct {
		logger  core.Logger
		metrics *metrics

		clients    map[*wsClient]bool
		broadcast  chan chat.Message
		register   chan *wsClient
		unregister chan *wsClient
	}

	wsClient struct {
		hub    *hub
		conn   *websocket.Conn
		send   chan []byte
		roomID string
		usr    user.User

		// post persists an inbound frame before it is fanned out
		post func(content string) (chat.Message, error)
	}
)

func newHub(logger core.Logger, m *metrics) *hub {
	return &hub{
		logger:     logger,
		metrics:    m,
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan chat.Message),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.metrics.wsConnections.Inc()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.wsConnections.Dec()
			}
		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("marshalling chat message", err)
				continue
			}
			for client := range h.clients {
				if client.roomID != msg.RoomID {
					continue
				}
				select {
				case client.send <- data:
				default: // slow consumer, drop it
					delete(h.clients, client)
					close(client.send)
					h.metrics.wsConnections.Dec()
				}
			}
		}
	}
}

// broadcastMessage fans a stored message out to the room's open connections.
func (h *hub) broadcastMessage(msg chat.Message) {
	h.broadcast <- msg
}

// readPump pumps messages from the websocket connection to the hub.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("reading websocket message", err)
			}
			return
		}

		msg, err := c.post(string(raw))
		if err != nil {
			c.hub.logger.Error("posting websocket message", err)
			continue
		}
		c.hub.broadcastMessage(msg)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// serveWs upgrades the connection and joins ctxUser to the room's live feed.
func (api *chatApi) serveWs(deps ServerDeps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := ParseToken(deps.Conf, ctx.QueryParam("token"))
		if err != nil {
			return err
		}
		ctxUsr, err := api.userSvc.GetByID(ctx.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "finding user by ID")
		}
		if ctxUsr.IsActive != nil && !*ctxUsr.IsActive {
			return errAccountDeactivated
		}

		room, err := api.svc.GetRoom(ctx.Request().Context(), ctx.Param("roomID"))
		if err != nil {
			if errors.Cause(err) == chat.ErrRoomNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding room by ID")
		}
		crs, err := api.courseSvc.GetByID(ctx.Request().Context(), room.CourseID)
		if err != nil {
			return errors.Wrap(err, "finding course by ID")
		}
		if !crs.CanView(ctxUsr) {
			return errHttpNotFound
		}

		conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
		if err != nil {
			return errors.Wrap(err, "upgrading connection")
		}

		client := &wsClient{
			hub:    api.hub,
			conn:   conn,
			send:   make(chan []byte, 256),
			roomID: room.ID,
			usr:    ctxUsr,
			post: func(content string) (chat.Message, error) {
				nm := chat.NewMessage{Content: content}
				if err := nm.Validate(api.validate); err != nil {
					return chat.Message{}, err
				}
				// the request context dies once the connection is hijacked
				return api.svc.Post(context.Background(), room, ctxUsr, nm)
			},
		}
		client.hub.register <- client

		go client.writePump()
		go client.readPump()
		return nil
	}
}
