package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"gorm.io/gorm"
)

func TestConversationRepo_GetOrCreate(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 5, 9)
	repo := NewConversationRepo(g)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 9, 5)
	require.NoError(t, err)
	assert.Equal(t, "5-9", first.ID)
	assert.Equal(t, uint(5), first.User1ID)
	assert.Equal(t, uint(9), first.User2ID)
	assert.True(t, first.IsActive)
	assert.Nil(t, first.LastMessageAt)
	assert.Zero(t, first.User1UnreadCount)
	assert.Zero(t, first.User2UnreadCount)

	again, err := repo.GetOrCreate(ctx, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.CreatedAt.Unix(), again.CreatedAt.Unix())

	var count int64
	require.NoError(t, g.DB.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConversationRepo_GetOrCreateRejectsSelf(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 5)

	_, err := NewConversationRepo(g).GetOrCreate(context.Background(), 5, 5)
	assert.ErrorIs(t, err, errs.ErrInvalidPairing)
}

func TestConversationRepo_GetOrCreateConcurrent(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 5, 9)
	repo := NewConversationRepo(g)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errList := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := uint(5), uint(9)
			if i%2 == 1 {
				a, b = b, a
			}
			c, err := repo.GetOrCreate(context.Background(), a, b)
			errList[i] = err
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errList[i])
		assert.Equal(t, "5-9", ids[i])
	}
	var count int64
	require.NoError(t, g.DB.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConversationRepo_RecordNewMessage(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 5, 9)
	repo := NewConversationRepo(g)
	ctx := context.Background()

	conv, err := repo.GetOrCreate(ctx, 5, 9)
	require.NoError(t, err)

	msg := &models.Message{ID: 77, SenderID: 9, ReceiverID: 5, CreatedAt: time.Now()}
	require.NoError(t, repo.RecordNewMessage(ctx, conv, msg, 5))
	require.NoError(t, repo.RecordNewMessage(ctx, conv, msg, 5))

	updated, err := repo.FindByID(ctx, "5-9")
	require.NoError(t, err)
	assert.Equal(t, 2, updated.UnreadCountFor(5))
	assert.Equal(t, 0, updated.UnreadCountFor(9))
	require.NotNil(t, updated.LastMessageID)
	assert.Equal(t, uint(77), *updated.LastMessageID)
	assert.NotNil(t, updated.LastMessageAt)

	assert.Error(t, repo.RecordNewMessage(ctx, conv, msg, 9), "sender cannot be the recipient")
	assert.Error(t, repo.RecordNewMessage(ctx, conv, msg, 3), "outsider has no counter")
}

func TestConversationRepo_ListForUser(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 1, 5, 9, 12)
	repo := NewConversationRepo(g)
	ctx := context.Background()

	quiet, err := repo.GetOrCreate(ctx, 5, 12)
	require.NoError(t, err)
	older, err := repo.GetOrCreate(ctx, 5, 1)
	require.NoError(t, err)
	newer, err := repo.GetOrCreate(ctx, 9, 5)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, 1, 9)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.RecordNewMessage(ctx, older, &models.Message{ID: 1, SenderID: 1, CreatedAt: now.Add(-time.Hour)}, 5))
	require.NoError(t, repo.RecordNewMessage(ctx, newer, &models.Message{ID: 2, SenderID: 9, CreatedAt: now}, 5))

	list, err := repo.ListForUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, quiet.ID, list[2].ID, "conversations without messages sort last")

	require.NoError(t, g.DB.Model(&models.Conversation{}).Where("id = ?", quiet.ID).Update("is_active", false).Error)
	list, err = repo.ListForUser(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	none, err := repo.ListForUser(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConversationRepo_ResetUnread(t *testing.T) {
	g := newTestDB(t)
	seedUsers(t, g, 5, 9)
	repo := NewConversationRepo(g)
	ctx := context.Background()

	conv, err := repo.GetOrCreate(ctx, 5, 9)
	require.NoError(t, err)
	require.NoError(t, repo.RecordNewMessage(ctx, conv, &models.Message{ID: 1, SenderID: 9}, 5))
	require.NoError(t, repo.RecordNewMessage(ctx, conv, &models.Message{ID: 2, SenderID: 5}, 9))

	require.NoError(t, repo.ResetUnread(ctx, conv, 5))
	updated, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.UnreadCountFor(5))
	assert.Equal(t, 1, updated.UnreadCountFor(9))

	assert.ErrorIs(t, repo.ResetUnread(ctx, conv, 3), errs.ErrNotParticipant)
}

func TestConversationRepo_FindByIDMissing(t *testing.T) {
	g := newTestDB(t)
	_, err := NewConversationRepo(g).FindByID(context.Background(), "1-2")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
