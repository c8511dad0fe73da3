package models

// Wire event names shared by the websocket transport and its clients.
const (
	EventJoin         = "join"
	EventLeave        = "leave"
	EventMessage      = "message"
	EventLoadMessages = "loadMessages"
	EventLoadUserID   = "loadUserId"
)

// JoinData is the payload of an inbound join event.
type JoinData struct {
	UserName string `json:"userName"`
	ChatID   string `json:"chatId"`
}

// UserMessage is the payload of an inbound message event.
type UserMessage struct {
	Text     string `json:"text"`
	UserName string `json:"userName"`
	ChatID   string `json:"chatId"`
}
