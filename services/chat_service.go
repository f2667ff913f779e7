package services

import (
	"context"
	"errors"

	"github.com/techagentng/photohire/config"
	"github.com/techagentng/photohire/db"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"github.com/techagentng/photohire/pairing"
	"github.com/techagentng/photohire/services/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

//go:generate mockgen -destination=../mocks/mock_publisher.go -package=mocks github.com/techagentng/photohire/services Publisher

// Publisher pushes an event to every live connection of the given users.
type Publisher interface {
	Publish(ctx context.Context, userIDs []uint, event models.Event) error
}

type ChatService interface {
	ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error)
	StartConversation(ctx context.Context, userID, otherUserID uint) (*models.ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID string, userID uint, page, pageSize int) (*models.MessagePage, error)
	SendMessage(ctx context.Context, input models.SendMessageInput) (*models.MessageResponse, error)
	MarkRead(ctx context.Context, conversationID string, userID uint) error
	RelaySignal(ctx context.Context, userID uint, signal models.Signal) error
}

type chatService struct {
	Config        *config.Config
	users         db.UserRepository
	conversations db.ConversationRepository
	messages      db.MessageRepository
	store         storage.Store
	publisher     Publisher
	log           *zap.SugaredLogger
}

func NewChatService(
	users db.UserRepository,
	conversations db.ConversationRepository,
	messages db.MessageRepository,
	store storage.Store,
	publisher Publisher,
	log *zap.SugaredLogger,
	conf *config.Config,
) ChatService {
	return &chatService{
		Config:        conf,
		users:         users,
		conversations: conversations,
		messages:      messages,
		store:         store,
		publisher:     publisher,
		log:           log,
	}
}

func (s *chatService) ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	conversations, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return s.summarize(ctx, userID, conversations)
}

func (s *chatService) StartConversation(ctx context.Context, userID, otherUserID uint) (*models.ConversationSummary, error) {
	if _, err := pairing.ResolveConversationID(userID, otherUserID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindUserByID(ctx, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, storeError(err)
	}

	conversation, err := s.conversations.GetOrCreate(ctx, userID, otherUserID)
	if err != nil {
		return nil, storeError(err)
	}
	summaries, err := s.summarize(ctx, userID, []models.Conversation{*conversation})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *chatService) ListMessages(ctx context.Context, conversationID string, userID uint, page, pageSize int) (*models.MessagePage, error) {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	messages, err := s.messages.ListByConversation(ctx, conversationID, page, pageSize)
	if err != nil {
		return nil, storeError(err)
	}
	hasMore := len(messages) == pageSize

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	hydrated, err := s.hydrate(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &models.MessagePage{Messages: hydrated, HasMore: hasMore}, nil
}

// participantConversation loads a conversation for one of its participants.
// Missing conversations and outsiders get the same not-found error.
func (s *chatService) participantConversation(ctx context.Context, conversationID string, userID uint) (*models.Conversation, error) {
	if _, err := pairing.Peer(conversationID, userID); err != nil {
		return nil, errs.ErrNotParticipant
	}
	conversation, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotParticipant
		}
		return nil, storeError(err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, errs.ErrNotParticipant
	}
	return conversation, nil
}

// publish delivers event after the write it describes has committed. Delivery
// failures never fail the caller.
func (s *chatService) publish(ctx context.Context, userIDs []uint, event models.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, userIDs, event); err != nil {
		s.log.Warnw("event delivery failed", "type", event.Type, "user_ids", userIDs, "error", err)
	}
}

// storeError passes typed API errors through and turns anything else from a
// repository into ErrStoreUnavailable.
func storeError(err error) error {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.Wrap(errs.ErrStoreUnavailable, err)
}
