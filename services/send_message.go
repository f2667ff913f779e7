package services

import (
	"context"
	"errors"
	"strings"

	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"github.com/techagentng/photohire/pairing"
	"gorm.io/gorm"
)

// SendMessage stores a message from input.SenderID to input.ReceiverID and
// pushes it to both participants once committed.
func (s *chatService) SendMessage(ctx context.Context, input models.SendMessageInput) (*models.MessageResponse, error) {
	conversationID, err := pairing.ResolveConversationID(input.SenderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" && input.Attachment == nil {
		return nil, errs.ErrEmptyMessage
	}

	if _, err := s.users.FindUserByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrReceiverNotFound
		}
		return nil, storeError(err)
	}

	if input.ReplyToID != nil {
		if err := s.checkReply(ctx, *input.ReplyToID, conversationID); err != nil {
			return nil, err
		}
	}

	message := &models.Message{
		SenderID:    input.SenderID,
		ReceiverID:  input.ReceiverID,
		Content:     content,
		MessageType: models.MessageTypeText,
		ReplyToID:   input.ReplyToID,
	}

	if input.Attachment != nil {
		if s.store == nil {
			return nil, errs.ErrUnsupportedAttachment
		}
		attachment, err := s.store.Save(ctx, input.Attachment)
		if err != nil {
			var apiErr *errs.Error
			if errors.As(err, &apiErr) {
				return nil, err
			}
			s.log.Errorw("attachment upload failed", "sender_id", input.SenderID, "error", err)
			return nil, errs.Wrap(errs.ErrInternalServerError, err)
		}
		message.MessageType = models.MessageTypeFor(attachment.ContentType)
		message.FileURL = &attachment.URL
		message.FileName = &attachment.FileName
		message.ThumbnailURL = attachment.ThumbnailURL
	}

	if _, err := s.messages.Append(ctx, message); err != nil {
		s.log.Errorw("append message failed", "conversation_id", conversationID, "sender_id", input.SenderID, "error", err)
		return nil, storeError(err)
	}

	hydrated, err := s.hydrate(ctx, []models.Message{*message})
	if err != nil {
		return nil, err
	}
	response := &hydrated[0]

	s.publish(ctx, []uint{input.ReceiverID, input.SenderID}, models.Event{
		Type: models.EventNewMessage,
		Data: response,
	})
	return response, nil
}

func (s *chatService) checkReply(ctx context.Context, replyToID uint, conversationID string) error {
	target, err := s.messages.FindByID(ctx, replyToID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrInvalidReply
		}
		return storeError(err)
	}
	if target.ConversationID != conversationID {
		return errs.ErrInvalidReply
	}
	return nil
}
