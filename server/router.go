package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/photohire/errors"
	"github.com/techagentng/photohire/server/response"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if origins := s.Config.Origins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth())
	if s.Config.StorageDriver == "" || s.Config.StorageDriver == "disk" {
		router.Static("/uploads", s.Config.UploadDir)
	}

	router.GET("/ws", s.Authorize(), s.handleWebSocket())

	apirouter := router.Group("/api/v1")
	messages := apirouter.Group("/messages")
	messages.Use(s.Authorize())
	messages.GET("/conversations", s.handleListConversations())
	messages.POST("/conversations/start", s.handleStartConversation())
	messages.GET("/conversations/:conversationId", s.handleListMessages())
	messages.PATCH("/conversations/:conversationId/read", s.handleMarkRead())
	messages.POST("/send", s.limitSendRate(), s.handleSendMessage())
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			s.Log.Errorw("health check failed", "error", err)
			response.JSON(c, "database unavailable", http.StatusServiceUnavailable, nil, errs.ErrStoreUnavailable)
			return
		}
		response.JSON(c, "ok", http.StatusOK, nil, nil)
	}
}
