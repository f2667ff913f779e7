package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/techagentng/photohire/config"
	"github.com/techagentng/photohire/db"
	"github.com/techagentng/photohire/realtime"
	"github.com/techagentng/photohire/services"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	Config         *config.Config
	DB             *db.GormDB
	UserRepository db.UserRepository
	ChatService    services.ChatService
	Hub            *realtime.Hub
	Log            *zap.SugaredLogger

	ctx context.Context
}

// Start serves HTTP until ctx is cancelled, then drains in-flight requests.
// Live WebSocket connections are closed through ctx.
func (s *Server) Start(ctx context.Context) error {
	s.ctx = ctx
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Infow("server listening", "port", s.Config.Port, "env", s.Config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Log.Infow("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}
