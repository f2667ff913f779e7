package services

import (
	"context"

	"github.com/techagentng/photohire/models"
)

// hydrate attaches sender and reply previews to messages with two batched
// lookups, keeping the order of messages.
func (s *chatService) hydrate(ctx context.Context, messages []models.Message) ([]models.MessageResponse, error) {
	out := make([]models.MessageResponse, len(messages))
	if len(messages) == 0 {
		return out, nil
	}

	var replyIDs []uint
	for _, m := range messages {
		if m.ReplyToID != nil {
			replyIDs = append(replyIDs, *m.ReplyToID)
		}
	}
	replies, err := s.messages.FindByIDs(ctx, replyIDs)
	if err != nil {
		return nil, storeError(err)
	}

	userIDs := make([]uint, 0, len(messages)+len(replies))
	for _, m := range messages {
		userIDs = append(userIDs, m.SenderID)
	}
	for _, r := range replies {
		userIDs = append(userIDs, r.SenderID)
	}
	users, err := s.users.FindSummaries(ctx, userIDs)
	if err != nil {
		return nil, storeError(err)
	}

	for i, m := range messages {
		out[i] = models.MessageResponse{
			Message: m,
			Sender:  users[m.SenderID],
		}
		if m.ReplyToID == nil {
			continue
		}
		if r, ok := replies[*m.ReplyToID]; ok {
			out[i].ReplyTo = &models.ReplyPreview{
				ID:          r.ID,
				SenderID:    r.SenderID,
				Content:     r.Content,
				MessageType: r.MessageType,
				FileName:    r.FileName,
				CreatedAt:   r.CreatedAt,
				Sender:      users[r.SenderID],
			}
		}
	}
	return out, nil
}

// summarize renders conversations from userID's point of view.
func (s *chatService) summarize(ctx context.Context, userID uint, conversations []models.Conversation) ([]models.ConversationSummary, error) {
	out := make([]models.ConversationSummary, len(conversations))
	if len(conversations) == 0 {
		return out, nil
	}

	peerIDs := make([]uint, 0, len(conversations))
	var lastIDs []uint
	for _, c := range conversations {
		peerIDs = append(peerIDs, c.OtherParticipant(userID))
		if c.LastMessageID != nil {
			lastIDs = append(lastIDs, *c.LastMessageID)
		}
	}

	peers, err := s.users.FindSummaries(ctx, peerIDs)
	if err != nil {
		return nil, storeError(err)
	}
	lastByID, err := s.messages.FindByIDs(ctx, lastIDs)
	if err != nil {
		return nil, storeError(err)
	}

	lastMessages := make([]models.Message, 0, len(lastByID))
	for _, m := range lastByID {
		lastMessages = append(lastMessages, *m)
	}
	hydrated, err := s.hydrate(ctx, lastMessages)
	if err != nil {
		return nil, err
	}
	lastHydrated := make(map[uint]*models.MessageResponse, len(hydrated))
	for i := range hydrated {
		lastHydrated[hydrated[i].ID] = &hydrated[i]
	}

	for i, c := range conversations {
		out[i] = models.ConversationSummary{
			ID:            c.ID,
			OtherUser:     peers[c.OtherParticipant(userID)],
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   c.UnreadCountFor(userID),
			CreatedAt:     c.CreatedAt,
			UpdatedAt:     c.UpdatedAt,
		}
		if c.LastMessageID != nil {
			out[i].LastMessage = lastHydrated[*c.LastMessageID]
		}
	}
	return out, nil
}
