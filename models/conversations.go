package models

import (
	"time"
)

// Conversation is the messaging relationship between exactly two users. Its id
// is the canonical pairing "<smaller>-<larger>" of the participants' ids.
type Conversation struct {
	ID               string     `gorm:"type:varchar(100);primaryKey" json:"id"`
	User1ID          uint       `gorm:"not null;index" json:"user1Id"`
	User2ID          uint       `gorm:"not null;index" json:"user2Id"`
	LastMessageID    *uint      `json:"lastMessageId"`
	LastMessageAt    *time.Time `gorm:"index" json:"lastMessageAt"`
	User1UnreadCount int        `gorm:"not null;default:0" json:"user1UnreadCount"`
	User2UnreadCount int        `gorm:"not null;default:0" json:"user2UnreadCount"`
	IsActive         bool       `gorm:"not null;default:true" json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	User1 *User `gorm:"foreignKey:User1ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User2 *User `gorm:"foreignKey:User2ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (c *Conversation) HasParticipant(userID uint) bool {
	return userID != 0 && (c.User1ID == userID || c.User2ID == userID)
}

// OtherParticipant returns the peer of userID. It returns 0 when userID is not
// a participant.
func (c *Conversation) OtherParticipant(userID uint) uint {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return 0
}

// UnreadCountFor returns the unread counter slot belonging to userID.
func (c *Conversation) UnreadCountFor(userID uint) int {
	switch userID {
	case c.User1ID:
		return c.User1UnreadCount
	case c.User2ID:
		return c.User2UnreadCount
	}
	return 0
}

// UnreadColumnFor names the counter column belonging to userID, or "" when
// userID is not a participant.
func (c *Conversation) UnreadColumnFor(userID uint) string {
	switch userID {
	case c.User1ID:
		return "user1_unread_count"
	case c.User2ID:
		return "user2_unread_count"
	}
	return ""
}

// ConversationSummary is a conversation as seen by one of its participants.
type ConversationSummary struct {
	ID            string           `json:"id"`
	OtherUser     *UserSummary     `json:"otherUser"`
	LastMessage   *MessageResponse `json:"lastMessage"`
	LastMessageAt *time.Time       `json:"lastMessageAt"`
	UnreadCount   int              `json:"unreadCount"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
