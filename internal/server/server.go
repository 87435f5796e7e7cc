package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
)

// Server accepts connections one at a time. A cycle runs to completion before
// the next Accept, so at most one request is ever in flight.
type Server struct {
	Handler *Handler
}

// New returns a Server using h.
func New(h *Handler) *Server {
	return &Server{Handler: h}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is done or Accept fails permanently. It closes
// ln before returning. A cycle already in progress when ctx ends completes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Printf("accept error: %v", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.Handler.ServeConn(conn)
	}
}
