package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/server/response"
	"github.com/techagentng/photohire/services/jwt"
	"gorm.io/gorm"
)

// Authorize resolves the bearer token to an active user with a messaging role.
// Browsers cannot set headers on a WebSocket handshake, so the token may also
// come from the "token" query parameter.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			accessToken = c.Query("token")
		}
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		accessClaims, err := jwt.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		userID, err := jwt.UserID(accessClaims)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		user, err := s.UserRepository.FindUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
				return
			}
			s.Log.Errorw("authorize: user lookup failed", "user_id", userID, "error", err)
			respondAndAbort(c, "unable to find entity", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		if !user.IsActive {
			respondAndAbort(c, "inactive user", http.StatusUnauthorized, nil, errs.ErrInActiveUser)
			return
		}
		if !user.Role.Valid() {
			respondAndAbort(c, "", http.StatusForbidden, nil, errs.ErrUnknownRole)
			return
		}

		c.Set("user", user)
		c.Set("userID", userID)
		c.Set("role", user.Role)
		c.Next()
	}
}

// limitSendRate caps message sends per user. A zero limit disables it.
func (s *Server) limitSendRate() gin.HandlerFunc {
	if s.Config.SendRateLimit == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  s.Config.SendRateWindow,
		Limit: s.Config.SendRateLimit,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      keyFuncUserID,
	})
}

func keyFuncUserID(c *gin.Context) string {
	return fmt.Sprintf("user:%d", c.GetUint("userID"))
}

func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok && id != 0
}

// respondAndAbort calls response.JSON and aborts the Context
func respondAndAbort(c *gin.Context, message string, status int, data interface{}, e *errs.Error) {
	response.JSON(c, message, status, data, e)
	c.Abort()
}
