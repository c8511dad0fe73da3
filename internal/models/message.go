package models

import (
	"time"
)

// MessageType distinguishes user-authored messages from system notices.
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
)

// SystemSender is the sender label carried by system messages.
const SystemSender = "System"

// Message represents one chat message. Once appended to a room it is
// never mutated; enrichment completes before the message is stored or
// broadcast.
type Message struct {
	ID           string        `json:"id"`
	ChatID       string        `json:"chatId"`
	UserID       string        `json:"userId"`
	Sender       string        `json:"sender"`
	Type         MessageType   `json:"type"`
	Text         string        `json:"text"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Transaction is the enrichment result for one transaction identifier
// found in a message body.
type Transaction struct {
	TxID  string    `json:"txId"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Date  time.Time `json:"date"`
	Value string    `json:"value"` // ether, converted from wei
}

// Participant is one live client connection and its room membership.
// ChatID stays empty until the participant joins a room.
type Participant struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	ChatID   string `json:"chatId"`
}

// InRoom reports whether the participant currently occupies a room.
func (p *Participant) InRoom() bool {
	return p != nil && p.ChatID != ""
}
