package errors

import (
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is an API error carrying the HTTP status it should be rendered with.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	cause   error
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

// Wrap returns a copy of base that records cause. The copy still matches base
// with errors.Is.
func Wrap(base *Error, cause error) *Error {
	return &Error{
		Message: base.Message,
		Status:  base.Status,
		cause:   cause,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == e.Message && t.Status == e.Status
}

var (
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrInActiveUser        = New("inactive user", http.StatusUnauthorized)
	ErrUnknownRole         = New("account role is not allowed to message", http.StatusForbidden)
	ErrTooManyRequests     = New("too many requests", http.StatusTooManyRequests)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)

	ErrInvalidPairing        = New("cannot start a conversation with yourself", http.StatusBadRequest)
	ErrNotParticipant        = New("conversation not found", http.StatusNotFound)
	ErrEmptyMessage          = New("message must have content or file", http.StatusBadRequest)
	ErrStoreUnavailable      = New("service temporarily unavailable", http.StatusServiceUnavailable)
	ErrUserNotFound          = New("user not found", http.StatusNotFound)
	ErrReceiverNotFound      = New("receiver not found", http.StatusNotFound)
	ErrInvalidReply          = New("reply target not found in this conversation", http.StatusBadRequest)
	ErrUnsupportedAttachment = New("only images and documents are allowed", http.StatusBadRequest)
	ErrAttachmentTooLarge    = New("attachment exceeds the maximum allowed size", http.StatusRequestEntityTooLarge)
	ErrUnknownSignal         = New("unknown signal type", http.StatusBadRequest)
)

// ErrorHandler renders rate limiter rejections.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(time.Until(info.ResetTime).Seconds())+1))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"message":   "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
		"data":      nil,
		"errors":    ErrTooManyRequests.Message,
		"status":    http.StatusText(http.StatusTooManyRequests),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
