package chat

import (
	"context"
	"sync"
	"time"

	"chain-chat-relay/backend/internal/metrics"
	"chain-chat-relay/backend/internal/models"
	"chain-chat-relay/backend/pkg/logger"

	"github.com/google/uuid"
)

// EventType identifies an inbound client event.
type EventType string

const (
	EventConnect      EventType = "connect"
	EventDisconnect   EventType = "disconnect"
	EventJoin         EventType = "join"
	EventLeave        EventType = "leave"
	EventLoadMessages EventType = "loadMessages"
	EventSendMessage  EventType = "message"
)

// Event is one inbound client event, decoupled from the transport that
// produced it.
type Event struct {
	Type      EventType
	SessionID string
	Join      *models.JoinData
	Message   *models.UserMessage
}

// Sender delivers outbound events to a single session. Implementations
// must not block; the relay calls it while holding its lock.
type Sender interface {
	ToSession(sessionID, event string, payload any)
}

// Enricher resolves transaction identifiers into transaction details.
// It always succeeds from the relay's point of view: identifiers that
// fail to resolve are simply absent from the result.
type Enricher interface {
	Enrich(ctx context.Context, txIDs []string) []models.Transaction
}

// Extractor scans message text for transaction identifiers.
type Extractor func(text string) []string

// Relay orchestrates the session registry and room store on each client
// event and drives broadcast to room members. It is the sole writer of
// both; one mutex serializes every mutation, so room append order is
// the order in which all members observe messages. Enrichment is the
// only suspending work and runs outside the lock, so two overlapping
// sendMessage calls may enrich concurrently while their
// append-then-broadcast steps stay serialized.
type Relay struct {
	mu       sync.Mutex
	registry *Registry
	rooms    *RoomStore
	extract  Extractor
	enricher Enricher
	sender   Sender
	log      *logger.Logger
}

// NewRelay wires a relay controller with its collaborators.
func NewRelay(extract Extractor, enricher Enricher, sender Sender, log *logger.Logger) *Relay {
	return &Relay{
		registry: NewRegistry(),
		rooms:    NewRoomStore(),
		extract:  extract,
		enricher: enricher,
		sender:   sender,
		log:      log,
	}
}

// Handle dispatches one inbound event. Unknown event types are logged
// and dropped.
func (r *Relay) Handle(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventConnect:
		r.handleConnect(ev.SessionID)
	case EventDisconnect:
		r.handleDisconnect(ev.SessionID)
	case EventJoin:
		if ev.Join != nil {
			r.handleJoin(ev.SessionID, ev.Join.ChatID, ev.Join.UserName)
		}
	case EventLeave:
		r.handleLeave(ev.SessionID)
	case EventLoadMessages:
		r.handleLoadMessages(ev.SessionID)
	case EventSendMessage:
		if ev.Message != nil {
			r.handleSendMessage(ctx, ev.SessionID, ev.Message.Text)
		}
	default:
		r.log.Warn("unknown event type", "type", ev.Type, "session", ev.SessionID)
	}
}

func (r *Relay) handleConnect(sessionID string) {
	r.mu.Lock()
	_, err := r.registry.Register(sessionID, "")
	r.mu.Unlock()
	if err != nil {
		r.log.LogError(err, "duplicate session registration", "session", sessionID)
		return
	}

	// The assigned id goes back to the originating client only.
	r.sender.ToSession(sessionID, models.EventLoadUserID, sessionID)
	r.log.Debug("session connected", "session", sessionID)
}

func (r *Relay) handleDisconnect(sessionID string) {
	r.mu.Lock()
	r.registry.Unregister(sessionID)
	r.mu.Unlock()
	r.log.Debug("session disconnected", "session", sessionID)
}

func (r *Relay) handleJoin(sessionID, roomID, userName string) {
	if roomID == "" {
		return
	}

	msg := &models.Message{
		ID:           uuid.New().String(),
		ChatID:       roomID,
		UserID:       uuid.New().String(),
		Sender:       models.SystemSender,
		Type:         models.MessageTypeSystem,
		Text:         userName + " has joined the chat!",
		Transactions: []models.Transaction{},
		Timestamp:    time.Now(),
	}

	r.mu.Lock()
	if r.registry.Find(sessionID) == nil {
		// Transport feeds connect before join, but a race with
		// disconnect can leave the session gone.
		r.mu.Unlock()
		return
	}
	r.registry.SetName(sessionID, userName)
	r.registry.SetRoom(sessionID, roomID)
	r.appendAndBroadcast(roomID, msg)
	r.mu.Unlock()

	metrics.RoomJoins.Inc()
	r.log.Info("participant joined room", "session", sessionID, "room", roomID, "user", userName)
}

func (r *Relay) handleLeave(sessionID string) {
	r.mu.Lock()
	r.registry.SetRoom(sessionID, "")
	r.mu.Unlock()
	// Joins are announced, leaves are not.
	r.log.Debug("participant left room", "session", sessionID)
}

func (r *Relay) handleLoadMessages(sessionID string) {
	r.mu.Lock()
	p := r.registry.Find(sessionID)
	if !p.InRoom() {
		r.mu.Unlock()
		return
	}
	history := r.rooms.Messages(p.ChatID)
	r.mu.Unlock()

	r.sender.ToSession(sessionID, models.EventLoadMessages, history)
}

func (r *Relay) handleSendMessage(ctx context.Context, sessionID, text string) {
	r.mu.Lock()
	p := r.registry.Find(sessionID)
	if !p.InRoom() {
		r.mu.Unlock()
		r.log.Debug("message from session with no room dropped", "session", sessionID)
		return
	}
	roomID := p.ChatID
	sender := p.UserName
	r.mu.Unlock()

	// Enrichment suspends on external I/O and must not hold the lock;
	// the room and sender captured above attribute the message even if
	// the participant leaves while lookups are in flight.
	txIDs := r.extract(text)
	txs := r.enricher.Enrich(ctx, txIDs)

	msg := &models.Message{
		ID:           uuid.New().String(),
		ChatID:       roomID,
		UserID:       sessionID,
		Sender:       sender,
		Type:         models.MessageTypeUser,
		Text:         text,
		Transactions: txs,
		Timestamp:    time.Now(),
	}

	r.mu.Lock()
	r.appendAndBroadcast(roomID, msg)
	r.mu.Unlock()
}

// appendAndBroadcast is the single serialization point for room order.
// Callers must hold r.mu.
func (r *Relay) appendAndBroadcast(roomID string, msg *models.Message) {
	r.rooms.Append(roomID, msg)
	for _, id := range r.registry.MembersOf(roomID) {
		r.sender.ToSession(id, models.EventMessage, msg)
	}
	metrics.MessagesBroadcast.WithLabelValues(string(msg.Type)).Inc()
}

// Participant returns a copy of the registry entry for id, or nil.
// Read-only accessor for the transport and tests.
func (r *Relay) Participant(id string) *models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.registry.Find(id)
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// RoomHistory returns a snapshot of roomID's history.
func (r *Relay) RoomHistory(roomID string) []*models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms.Messages(roomID)
}
