package chat

import (
	"chain-chat-relay/backend/internal/models"
)

// RoomStore holds the per-room message history for the lifetime of the
// process. Rooms are created implicitly on first append and never
// destroyed. Like the Registry it relies on the Relay for
// serialization.
type RoomStore struct {
	rooms map[string][]*models.Message
}

// NewRoomStore creates an empty room store.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string][]*models.Message),
	}
}

// Append adds msg to the end of roomID's history, creating the room if
// it does not exist yet.
func (s *RoomStore) Append(roomID string, msg *models.Message) {
	s.rooms[roomID] = append(s.rooms[roomID], msg)
}

// Messages returns the ordered history of roomID. Unknown rooms yield
// an empty slice, never an error. The returned slice is a snapshot:
// later appends may reallocate the backing array but never mutate
// entries visible through it.
func (s *RoomStore) Messages(roomID string) []*models.Message {
	msgs := s.rooms[roomID]
	if msgs == nil {
		return []*models.Message{}
	}
	return msgs[:len(msgs):len(msgs)]
}

// Len returns the number of messages stored for roomID.
func (s *RoomStore) Len(roomID string) int {
	return len(s.rooms[roomID])
}
