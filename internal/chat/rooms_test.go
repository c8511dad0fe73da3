package chat

import (
	"fmt"
	"testing"

	"chain-chat-relay/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCreatesRoomImplicitly(t *testing.T) {
	s := NewRoomStore()

	msg := &models.Message{ID: "m1", ChatID: "r1", Text: "hi"}
	s.Append("r1", msg)

	got := s.Messages("r1")
	require.Len(t, got, 1)
	assert.Same(t, msg, got[0])
}

func TestMessagesUnknownRoomIsEmpty(t *testing.T) {
	s := NewRoomStore()

	got := s.Messages("nowhere")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMessagesPreserveAppendOrder(t *testing.T) {
	s := NewRoomStore()
	for i := 0; i < 5; i++ {
		s.Append("r1", &models.Message{ID: fmt.Sprintf("m%d", i)})
	}

	got := s.Messages("r1")
	require.Len(t, got, 5)
	for i, m := range got {
		assert.Equal(t, fmt.Sprintf("m%d", i), m.ID)
	}
}

func TestMessagesSnapshotUnaffectedByLaterAppends(t *testing.T) {
	s := NewRoomStore()
	s.Append("r1", &models.Message{ID: "m0"})

	snapshot := s.Messages("r1")
	s.Append("r1", &models.Message{ID: "m1"})

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, s.Len("r1"))
}
