package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/photohire/config"
	"github.com/techagentng/photohire/models"
)

func TestAuthorize(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", env.Errors)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/conversations", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w, _ = ts.serve(t, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 12, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "inactive user", env.Errors)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 13, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 404, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages/conversations?token="+token(t, 5), nil)
	w, _ = ts.serve(t, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMessagingFlow(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 9, "content": "  hi  "})
	require.Equal(t, http.StatusCreated, w.Code, env.Errors)
	var sent models.MessageResponse
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, "hi", sent.Content)
	assert.Equal(t, "5-9", sent.ConversationID)
	assert.Equal(t, "Ada", sent.Sender.FirstName)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 9, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, 1, list.Conversations[0].UnreadCount)
	assert.Equal(t, uint(5), list.Conversations[0].OtherUser.ID)
	require.NotNil(t, list.Conversations[0].LastMessage)
	assert.Equal(t, sent.ID, list.Conversations[0].LastMessage.ID)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations/5-9?page=1&limit=10", 9, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.MessagePage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Messages, 1)
	assert.False(t, page.HasMore)
	assert.False(t, page.Messages[0].IsRead)

	w, env = ts.do(t, http.MethodPatch, "/api/v1/messages/conversations/5-9/read", 9, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Messages marked as read", env.Message)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations", 9, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Zero(t, list.Conversations[0].UnreadCount)
}

func TestSendMessageErrors(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 9, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message must have content or file", env.Errors)

	w, env = ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"content": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "receiverId is a required field")

	w, env = ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 9, "content": strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "content")

	w, _ = ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 5, "content": "me"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 404, "content": "hello?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "receiver not found", env.Errors)
}

func TestSendMessageMultipart(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"receiverId": "9", "replyToId": ""}, "brief.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/send", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token(t, 5))
	w, env := ts.serve(t, req)
	require.Equal(t, http.StatusCreated, w.Code, env.Errors)

	var sent models.MessageResponse
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	assert.Equal(t, models.MessageTypeFile, sent.MessageType)
	require.NotNil(t, sent.FileURL)
	assert.True(t, strings.HasPrefix(*sent.FileURL, "/uploads/messages/"))
	require.NotNil(t, sent.FileName)
	assert.Equal(t, "brief.pdf", *sent.FileName)

	fileReq := httptest.NewRequest(http.MethodGet, *sent.FileURL, nil)
	fw := httptest.NewRecorder()
	ts.router.ServeHTTP(fw, fileReq)
	assert.Equal(t, http.StatusOK, fw.Code)
	assert.Equal(t, "%PDF-1.4", fw.Body.String())

	body, contentType = multipartBody(t, map[string]string{"receiverId": "9"}, "tool.exe", "application/octet-stream", []byte("MZ"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/messages/send", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token(t, 5))
	w, env = ts.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "only images and documents are allowed", env.Errors)
}

func TestConversationAccess(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/v1/messages/conversations/start", 9, gin.H{"userId": 5})
	require.Equal(t, http.StatusOK, w.Code, env.Errors)
	var started struct {
		Conversation models.ConversationSummary `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &started))
	assert.Equal(t, "5-9", started.Conversation.ID)
	assert.Nil(t, started.Conversation.LastMessage)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/messages/conversations/start", 9, gin.H{"userId": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = ts.do(t, http.MethodPost, "/api/v1/messages/conversations/start", 9, gin.H{"userId": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", env.Errors)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations/5-9", 13, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = ts.do(t, http.MethodGet, "/api/v1/messages/conversations/9-12", 5, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "conversation not found", env.Errors)

	w, _ = ts.do(t, http.MethodPatch, "/api/v1/messages/conversations/9-12/read", 5, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/messages/conversations/5-9?page=zero", 5, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.SendRateLimit = 2
		c.SendRateWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		w, env := ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 9, "content": "ping"})
		require.Equal(t, http.StatusCreated, w.Code, env.Errors)
	}
	w, env := ts.do(t, http.MethodPost, "/api/v1/messages/send", 5, gin.H{"receiverId": 9, "content": "ping"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "too many requests", env.Errors)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w, _ = ts.do(t, http.MethodPost, "/api/v1/messages/send", 9, gin.H{"receiverId": 5, "content": "pong"})
	assert.Equal(t, http.StatusCreated, w.Code, "limits are per user")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w, env := ts.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", env.Message)
}
