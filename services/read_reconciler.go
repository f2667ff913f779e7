package services

import (
	"context"

	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
)

// MarkRead zeroes userID's unread counter and marks every message addressed to
// userID in the conversation as read. The peer is told when anything changed.
func (s *chatService) MarkRead(ctx context.Context, conversationID string, userID uint) error {
	conversation, err := s.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	count, err := s.messages.MarkConversationRead(ctx, conversation, userID)
	if err != nil {
		return storeError(err)
	}

	if count > 0 {
		s.publish(ctx, []uint{conversation.OtherParticipant(userID)}, models.Event{
			Type: models.EventMessagesRead,
			Data: models.ReadReceiptPayload{
				ConversationID: conversation.ID,
				ReaderID:       userID,
				Count:          count,
			},
		})
	}
	return nil
}

// RelaySignal forwards an ephemeral signal from userID to the other participant
// of an existing conversation. Nothing is persisted.
func (s *chatService) RelaySignal(ctx context.Context, userID uint, signal models.Signal) error {
	conversation, err := s.participantConversation(ctx, signal.ConversationID, userID)
	if err != nil {
		return err
	}
	peer := conversation.OtherParticipant(userID)

	var event models.Event
	switch signal.Type {
	case models.SignalTyping, models.SignalStopTyping:
		event = models.Event{
			Type: signal.Type,
			Data: models.TypingPayload{ConversationID: signal.ConversationID, UserID: userID},
		}
	case models.SignalMarkAsRead:
		event = models.Event{
			Type: models.EventMessagesRead,
			Data: models.ReadReceiptPayload{ConversationID: signal.ConversationID, ReaderID: userID},
		}
	default:
		return errs.ErrUnknownSignal
	}

	s.publish(ctx, []uint{peer}, event)
	return nil
}
