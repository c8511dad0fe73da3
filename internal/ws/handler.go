package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"chain-chat-relay/backend/internal/chat"
	"chain-chat-relay/backend/internal/metrics"
	"chain-chat-relay/backend/internal/models"
	"chain-chat-relay/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Envelope is the wire frame exchanged with clients: an event name and
// its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection identified by its session id.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub owns the set of live connections and delivers the relay's
// outbound events to them. It implements chat.Sender.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	relay      *chat.Relay
	mu         sync.Mutex
	log        *logger.Logger
}

// NewHub creates a hub with no relay attached; call SetRelay before
// serving connections. Hub and relay reference each other, so
// construction happens in two steps.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetRelay attaches the relay controller that consumes inbound events.
func (h *Hub) SetRelay(relay *chat.Relay) {
	h.relay = relay
}

// Run processes connection registration until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			metrics.ActiveConnections.Inc()
			h.log.Debug("client registered", "session", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
				metrics.ActiveConnections.Dec()
				h.log.Debug("client unregistered", "session", client.ID)
			}
			h.mu.Unlock()
		}
	}
}

// ToSession delivers one outbound event to a session. It never blocks:
// a client whose send buffer is full is dropped, the usual treatment
// for slow consumers.
func (h *Hub) ToSession(sessionID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.LogError(err, "marshal outbound payload", "event", event)
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.LogError(err, "marshal outbound envelope", "event", event)
		return
	}

	h.mu.Lock()
	client, ok := h.clients[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	select {
	case client.Send <- frame:
		h.mu.Unlock()
	default:
		delete(h.clients, sessionID)
		close(client.Send)
		metrics.ActiveConnections.Dec()
		h.mu.Unlock()
		h.log.Warn("client removed due to blocked channel", "session", sessionID)
	}
}

// ReadPump decodes inbound frames and feeds them to the relay. Events
// are handled in arrival order so one client's messages reach the room
// in the order they were sent.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.relay.Handle(context.Background(), chat.Event{
			Type:      chat.EventDisconnect,
			SessionID: c.ID,
		})
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.LogError(err, "websocket read failed", "session", c.ID)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.Hub.log.LogError(err, "malformed frame", "session", c.ID)
			continue
		}

		c.dispatch(env)
	}
}

func (c *Client) dispatch(env Envelope) {
	ctx := context.Background()

	switch env.Event {
	case models.EventJoin:
		var data models.JoinData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			c.Hub.log.LogError(err, "malformed join payload", "session", c.ID)
			return
		}
		c.Hub.relay.Handle(ctx, chat.Event{
			Type:      chat.EventJoin,
			SessionID: c.ID,
			Join:      &data,
		})

	case models.EventLeave:
		c.Hub.relay.Handle(ctx, chat.Event{
			Type:      chat.EventLeave,
			SessionID: c.ID,
		})

	case models.EventLoadMessages:
		c.Hub.relay.Handle(ctx, chat.Event{
			Type:      chat.EventLoadMessages,
			SessionID: c.ID,
		})

	case models.EventMessage:
		var data models.UserMessage
		if err := json.Unmarshal(env.Data, &data); err != nil {
			c.Hub.log.LogError(err, "malformed message payload", "session", c.ID)
			return
		}
		c.Hub.relay.Handle(ctx, chat.Event{
			Type:      chat.EventSendMessage,
			SessionID: c.ID,
			Message:   &data,
		})

	default:
		c.Hub.log.Warn("unknown event", "event", env.Event, "session", c.ID)
	}
}

// WritePump pushes queued frames to the peer and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

			// Drain queued frames as separate websocket frames.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades an HTTP request to a websocket connection, assigns
// the session id, and announces the new session to the relay.
func ServeWs(hub *Hub, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.LogError(err, "websocket upgrade failed")
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	hub.register <- client

	go client.WritePump()

	// Registers the session and echoes the assigned id back to this
	// client only.
	hub.relay.Handle(context.Background(), chat.Event{
		Type:      chat.EventConnect,
		SessionID: client.ID,
	})

	go client.ReadPump()
}
