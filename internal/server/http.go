package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/strikeplan/internal/core/observability/log"
)

// HTTPServer serves the debug stream on a single path.
type HTTPServer struct {
	stream *DebugStream
	path   string
	log    log.Log

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

func NewHTTPServer(stream *DebugStream, path string, logger log.Log) *HTTPServer {
	if path == "" {
		path = "/debug"
	}
	return &HTTPServer{stream: stream, path: path, log: log.OrNop(logger).With(log.String("component", "http"))}
}

// Start listens on addr and serves in the background until Stop or ctx
// cancellation.
func (s *HTTPServer) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(s.path, s.stream)
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.listener = ln
	s.done = make(chan struct{})

	srv, done := s.server, s.done
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("debug server stopped", log.Error(err))
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Stop(shutdown)
		case <-done:
		}
	}()

	s.log.Info("debug stream listening", log.String("addr", ln.Addr().String()), log.String("path", s.path))
	return nil
}

// Addr returns the bound address, or "" when not running.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.server, s.done
	s.server, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return ErrServerNotRunning
	}

	// Hijacked websocket connections are not closed by Shutdown.
	s.stream.closeAll()
	err := srv.Shutdown(ctx)
	<-done
	return err
}
