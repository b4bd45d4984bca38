package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/pigeonchat/pigeon/internal/mockapi"
)

// Server manages the HTTP server lifecycle for the mock backend.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	logger     *zap.Logger
}

// NewServer creates an HTTP server bound to the configured address. Binding
// happens here so a busy port fails fast instead of inside the serve
// goroutine.
func NewServer(p Params, logger *zap.Logger, api *mockapi.Server) (*Server, error) {
	listener, err := net.Listen("tcp", p.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", p.Addr, err)
	}

	return &Server{
		httpServer: &http.Server{Handler: api.Handler()},
		listener:   listener,
		addr:       listener.Addr().String(),
		logger:     logger,
	}, nil
}

// Addr returns the bound address, useful when Params.Addr used port 0.
func (s *Server) Addr() string {
	return s.addr
}

// Start begins serving HTTP requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.addr))
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("http server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("shutdown", zap.Error(err))
	}
	// Shutdown only closes listeners handed to Serve; cover the case
	// where Stop runs before Start.
	_ = s.listener.Close()
}
