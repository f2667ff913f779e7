package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Append(ctx context.Context, message *models.Message) (*models.Conversation, error)
	ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID string, receiverID uint) (int64, error)
	MarkConversationRead(ctx context.Context, conversation *models.Conversation, userID uint) (int64, error)
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Message, error)
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

// Append stores message as unread and updates its conversation in a single
// transaction, creating the conversation on first contact. It returns the
// conversation as committed.
func (m *messageRepo) Append(ctx context.Context, message *models.Message) (*models.Conversation, error) {
	if !message.HasBody() {
		return nil, errs.ErrEmptyMessage
	}

	var conversation *models.Conversation
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conversations := &conversationRepo{DB: tx}

		c, err := conversations.GetOrCreate(ctx, message.SenderID, message.ReceiverID)
		if err != nil {
			return err
		}
		// id and created_at are assigned under the lock so they follow commit order.
		if c, err = conversations.lockForUpdate(ctx, c.ID); err != nil {
			return err
		}

		message.ConversationID = c.ID
		message.CreatedAt = time.Now()
		message.IsRead = false
		message.ReadAt = nil
		if message.MessageType == "" {
			message.MessageType = models.MessageTypeText
		}
		if err := tx.Create(message).Error; err != nil {
			return errors.Wrap(err, "messageRepo.Append: insert")
		}

		if err := conversations.RecordNewMessage(ctx, c, message, message.ReceiverID); err != nil {
			return err
		}

		conversation, err = conversations.FindByID(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// ListByConversation returns one page of messages, newest first.
func (m *messageRepo) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	var messages []models.Message
	err := m.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "messageRepo.ListByConversation")
	}
	return messages, nil
}

// MarkRead flips every unread message addressed to receiverID in the
// conversation. Calling it again is a no-op.
func (m *messageRepo) MarkRead(ctx context.Context, conversationID string, receiverID uint) (int64, error) {
	res := m.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, receiverID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "messageRepo.MarkRead")
	}
	return res.RowsAffected, nil
}

// MarkConversationRead zeroes userID's counter and flips userID's unread
// messages together. The counter update runs first so it holds the
// conversation row lock while the messages are flipped; a concurrent send
// waits for it and its increment lands afterwards.
func (m *messageRepo) MarkConversationRead(ctx context.Context, conversation *models.Conversation, userID uint) (int64, error) {
	var flipped int64
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := (&conversationRepo{DB: tx}).ResetUnread(ctx, conversation, userID); err != nil {
			return err
		}
		n, err := (&messageRepo{DB: tx}).MarkRead(ctx, conversation.ID, userID)
		flipped = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return flipped, nil
}

func (m *messageRepo) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	message := &models.Message{}
	if err := m.DB.WithContext(ctx).Where("id = ?", id).First(message).Error; err != nil {
		return nil, errors.Wrap(err, "messageRepo.FindByID")
	}
	return message, nil
}

func (m *messageRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*models.Message, error) {
	out := make(map[uint]*models.Message, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var messages []models.Message
	if err := m.DB.WithContext(ctx).Where("id IN ?", ids).Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "messageRepo.FindByIDs")
	}
	for i := range messages {
		out[messages[i].ID] = &messages[i]
	}
	return out, nil
}
