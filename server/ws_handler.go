package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/techagentng/photohire/realtime"
)

func (s *Server) handleWebSocket() gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.Log.Warnw("websocket upgrade failed", "user_id", userID, "error", err)
			return
		}

		client := realtime.NewClient(s.Hub, conn, userID)
		s.Log.Debugw("websocket connected", "user_id", userID, "client_id", client.ID)
		client.Serve(s.context(), s.ChatService.RelaySignal)
	}
}

// checkOrigin accepts any origin unless ALLOWED_ORIGINS lists some.
func (s *Server) checkOrigin(r *http.Request) bool {
	origins := s.Config.Origins()
	if len(origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range origins {
		if o == origin {
			return true
		}
	}
	return false
}
