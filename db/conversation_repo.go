package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"github.com/techagentng/photohire/pairing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	RecordNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
	ResetUnread(ctx context.Context, conversation *models.Conversation, userID uint) error
}

type conversationRepo struct {
	DB *gorm.DB
}

func NewConversationRepo(db *GormDB) ConversationRepository {
	return &conversationRepo{db.DB}
}

// GetOrCreate returns the conversation between userA and userB, creating it on
// first contact. Two callers racing on the same pair both get the single row.
func (r *conversationRepo) GetOrCreate(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	id, err := pairing.ResolveConversationID(userA, userB)
	if err != nil {
		return nil, err
	}
	lo, hi := pairing.Order(userA, userB)

	conversation := &models.Conversation{
		ID:       id,
		User1ID:  lo,
		User2ID:  hi,
		IsActive: true,
	}
	err = r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(conversation).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, errors.Wrap(err, "conversationRepo.GetOrCreate: insert")
	}
	return r.FindByID(ctx, id)
}

func (r *conversationRepo) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	conversation := &models.Conversation{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(conversation).Error; err != nil {
		return nil, errors.Wrap(err, "conversationRepo.FindByID")
	}
	return conversation, nil
}

// lockForUpdate reloads the conversation holding its row lock until the
// surrounding transaction ends. Sends to one conversation serialise here.
func (r *conversationRepo) lockForUpdate(ctx context.Context, id string) (*models.Conversation, error) {
	conversation := &models.Conversation{}
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(conversation).Error
	if err != nil {
		return nil, errors.Wrap(err, "conversationRepo.lockForUpdate")
	}
	return conversation, nil
}

// RecordNewMessage moves the last-message pointer to message and increments the
// recipient's unread counter in one statement, so concurrent sends accumulate.
func (r *conversationRepo) RecordNewMessage(ctx context.Context, conversation *models.Conversation, message *models.Message, recipientID uint) error {
	column := conversation.UnreadColumnFor(recipientID)
	if column == "" || recipientID == message.SenderID {
		return errors.Errorf("conversationRepo.RecordNewMessage: user %d is not the recipient in %s", recipientID, conversation.ID)
	}

	lastMessageAt := message.CreatedAt
	if lastMessageAt.IsZero() {
		lastMessageAt = time.Now()
	}
	res := r.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Updates(map[string]interface{}{
			"last_message_id": message.ID,
			"last_message_at": lastMessageAt,
			column:            gorm.Expr(column+" + ?", 1),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "conversationRepo.RecordNewMessage")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(gorm.ErrRecordNotFound, "conversationRepo.RecordNewMessage")
	}
	return nil
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.DB.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Order("last_message_at DESC NULLS LAST").
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, errors.Wrap(err, "conversationRepo.ListForUser")
	}
	return conversations, nil
}

func (r *conversationRepo) ResetUnread(ctx context.Context, conversation *models.Conversation, userID uint) error {
	column := conversation.UnreadColumnFor(userID)
	if column == "" {
		return errs.ErrNotParticipant
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversation.ID).
		Update(column, 0).Error
	if err != nil {
		return errors.Wrap(err, "conversationRepo.ResetUnread")
	}
	return nil
}
