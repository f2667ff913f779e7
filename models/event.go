package models

const (
	EventNewMessage   = "newMessage"
	EventTyping       = "typing"
	EventStopTyping   = "stopTyping"
	EventMessagesRead = "messagesRead"
	EventError        = "error"
)

// Event is a frame pushed to live connections.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Signal is an ephemeral frame sent by a client about one of its conversations.
type Signal struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
}

const (
	SignalTyping     = "typing"
	SignalStopTyping = "stopTyping"
	SignalMarkAsRead = "markAsRead"
)

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         uint   `json:"userId"`
}

type ReadReceiptPayload struct {
	ConversationID string `json:"conversationId"`
	ReaderID       uint   `json:"readerId"`
	Count          int64  `json:"count"`
}
