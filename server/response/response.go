package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/photohire/errors"
)

// JSON writes the standard envelope.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	errMessage := ""
	if err != nil {
		errMessage = err.Error()
	}
	c.JSON(status, gin.H{
		"message":   message,
		"data":      data,
		"errors":    errMessage,
		"status":    http.StatusText(status),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleErrors renders err with the status an *errors.Error carries. Anything
// else is a 500 and its text is not exposed.
func HandleErrors(c *gin.Context, err error) {
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		JSON(c, "", apiErr.Status, nil, errs.New(apiErr.Message, apiErr.Status))
		return
	}
	JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
}
