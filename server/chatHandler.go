package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/models"
	"github.com/techagentng/photohire/server/response"
	"github.com/techagentng/photohire/services"
)

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		conversations, err := s.ChatService.ListConversations(c.Request.Context(), userID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "Conversations retrieved", http.StatusOK, gin.H{"conversations": conversations}, nil)
	}
}

func (s *Server) handleStartConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		var req models.StartConversationRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}

		conversation, err := s.ChatService.StartConversation(c.Request.Context(), userID, req.UserID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "Conversation ready", http.StatusOK, gin.H{"conversation": conversation}, nil)
	}
}

func (s *Server) handleListMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		page, err := queryInt(c, "page", 1)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		limit, err := queryInt(c, "limit", services.DefaultPageSize)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}

		result, err := s.ChatService.ListMessages(c.Request.Context(), c.Param("conversationId"), userID, page, limit)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "Messages retrieved", http.StatusOK, result, nil)
	}
}

// handleSendMessage accepts JSON, or multipart form data with an optional
// "file" part.
func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		if s.Config.MaxAttachmentSize > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.Config.MaxAttachmentSize+1<<20)
		}

		var req models.SendMessageRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if req.ReplyToID != nil && *req.ReplyToID == 0 {
			req.ReplyToID = nil
		}

		input := models.SendMessageInput{
			SenderID:   userID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
			ReplyToID:  req.ReplyToID,
		}
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			file, err := c.FormFile("file")
			if err != nil && !errors.Is(err, http.ErrMissingFile) {
				response.HandleErrors(c, errs.Wrap(errs.ErrBadRequest, err))
				return
			}
			input.Attachment = file
		}

		message, err := s.ChatService.SendMessage(c.Request.Context(), input)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "Message sent successfully", http.StatusCreated, message, nil)
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		if err := s.ChatService.MarkRead(c.Request.Context(), c.Param("conversationId"), userID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "Messages marked as read", http.StatusOK, nil, nil)
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errs.New(key+" must be a positive integer", http.StatusBadRequest)
	}
	return n, nil
}
