package chat

import (
	"fmt"

	"chain-chat-relay/backend/internal/models"
)

// Registry tracks connected participants and their room membership.
// It carries no locking of its own; all mutation goes through the
// Relay, which serializes access (see relay.go).
type Registry struct {
	participants map[string]*models.Participant
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*models.Participant),
	}
}

// Register adds a participant with no room. Registering an id that is
// already present is a protocol error; a reconnect must unregister
// first.
func (r *Registry) Register(id, userName string) (*models.Participant, error) {
	if _, exists := r.participants[id]; exists {
		return nil, fmt.Errorf("session %q already registered", id)
	}
	p := &models.Participant{ID: id, UserName: userName}
	r.participants[id] = p
	return p, nil
}

// Find returns the participant for id, or nil when unknown.
func (r *Registry) Find(id string) *models.Participant {
	return r.participants[id]
}

// SetRoom moves the participant into roomID. An empty roomID clears
// membership (leave). Unknown ids are ignored.
func (r *Registry) SetRoom(id, roomID string) {
	if p, ok := r.participants[id]; ok {
		p.ChatID = roomID
	}
}

// SetName updates the participant's display name. Unknown ids are
// ignored.
func (r *Registry) SetName(id, userName string) {
	if p, ok := r.participants[id]; ok {
		p.UserName = userName
	}
}

// Unregister removes the participant. Removing an unknown id is a
// no-op.
func (r *Registry) Unregister(id string) {
	delete(r.participants, id)
}

// MembersOf returns the ids of all participants currently in roomID.
func (r *Registry) MembersOf(roomID string) []string {
	if roomID == "" {
		return nil
	}
	var ids []string
	for id, p := range r.participants {
		if p.ChatID == roomID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of registered participants.
func (r *Registry) Len() int {
	return len(r.participants)
}
