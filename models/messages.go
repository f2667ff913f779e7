package models

import (
	"mime/multipart"
	"strings"
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// MessageTypeFor picks the message type from an attachment's MIME type.
func MessageTypeFor(contentType string) MessageType {
	if strings.HasPrefix(contentType, "image/") {
		return MessageTypeImage
	}
	return MessageTypeFile
}

type Message struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	SenderID       uint        `gorm:"not null;index" json:"senderId"`
	ReceiverID     uint        `gorm:"not null;index" json:"receiverId"`
	ConversationID string      `gorm:"type:varchar(100);not null;index;index:idx_messages_conversation_created,priority:1" json:"conversationId"`
	Content        string      `gorm:"type:text;not null;default:''" json:"content"`
	MessageType    MessageType `gorm:"type:varchar(10);not null;default:'text'" json:"messageType"`
	FileURL        *string     `gorm:"size:500" json:"fileUrl"`
	FileName       *string     `gorm:"size:255" json:"fileName"`
	ThumbnailURL   *string     `gorm:"size:500" json:"thumbnailUrl,omitempty"`
	IsRead         bool        `gorm:"not null;default:false;index" json:"isRead"`
	ReadAt         *time.Time  `json:"readAt"`
	ReplyToID      *uint       `gorm:"index" json:"replyToId"`
	CreatedAt      time.Time   `gorm:"index;index:idx_messages_conversation_created,priority:2" json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`

	Conversation *Conversation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReplyTo      *Message      `gorm:"foreignKey:ReplyToID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Sender       *User         `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Receiver     *User         `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HasBody reports whether the message has text or an attachment.
func (m *Message) HasBody() bool {
	return strings.TrimSpace(m.Content) != "" || (m.FileURL != nil && *m.FileURL != "")
}

// SendMessageInput is what the HTTP layer hands to the chat service.
type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
	Attachment *multipart.FileHeader
	ReplyToID  *uint
}

// SendMessageRequest is the body of POST /messages/send, JSON or multipart. A
// zero replyToId means no reply.
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiverId" form:"receiverId" validate:"required,min=1"`
	Content    string `json:"content" form:"content" validate:"max=2000" conform:"trim"`
	ReplyToID  *uint  `json:"replyToId" form:"replyToId"`
}

type StartConversationRequest struct {
	UserID uint `json:"userId" validate:"required,min=1"`
}

// ReplyPreview is the replied-to message embedded in a hydrated message.
type ReplyPreview struct {
	ID          uint         `json:"id"`
	SenderID    uint         `json:"senderId"`
	Content     string       `json:"content"`
	MessageType MessageType  `json:"messageType"`
	FileName    *string      `json:"fileName"`
	CreatedAt   time.Time    `json:"createdAt"`
	Sender      *UserSummary `json:"sender"`
}

// MessageResponse is a message hydrated with display attributes.
type MessageResponse struct {
	Message
	Sender  *UserSummary  `json:"sender"`
	ReplyTo *ReplyPreview `json:"replyTo"`
}

type MessagePage struct {
	Messages []MessageResponse `json:"messages"`
	HasMore  bool              `json:"hasMore"`
}
