// Package rpc exposes the rank engine to sibling services over a
// newline-delimited JSON protocol on TCP. It trades the weight of a full
// gRPC stack for a dispatch table of "Service.Method" handlers; both ends
// of the wire live in this repository, so the framing never has to
// interoperate with anything else.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// HandlerFunc serves one method. The raw params are decoded by the
// handler, which knows its own request type.
type HandlerFunc func(ctx context.Context, req json.RawMessage) (any, error)

// Request is one frame from client to server.
type Request struct {
	Method string          `json:"method"`
	ID     string          `json:"id"`
	Params json.RawMessage `json:"params"`
}

// Response is one frame back. Exactly one of Data and Error is set.
type Response struct {
	ID    string `json:"id"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server accepts connections and dispatches frames to registered
// handlers. Each connection is served by its own goroutine; frames on one
// connection are handled in order.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	listener net.Listener
	logger   *slog.Logger
	wg       sync.WaitGroup
	done     chan struct{}
}

func NewServer() *Server {
	return &Server{
		handlers: make(map[string]HandlerFunc),
		logger:   slog.Default().With("component", "rpc-server"),
		done:     make(chan struct{}),
	}
}

// Register binds a "Service.Method" name to its handler.
func (s *Server) Register(method string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
	s.logger.Debug("method registered", "method", method)
}

// MethodCount reports how many methods are registered.
func (s *Server) MethodCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

// Serve listens on addr and blocks until Stop.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Info("rpc server listening", "addr", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				s.logger.Error("accept error", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			// Connection closed or unparseable stream; either way the
			// framing is gone.
			return
		}
		if err := encoder.Encode(s.dispatch(req)); err != nil {
			s.logger.Error("write error", "method", req.Method, "error", err)
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	s.mu.RLock()
	handler, exists := s.handlers[req.Method]
	s.mu.RUnlock()

	if !exists {
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
	data, err := handler(context.Background(), req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Data: data}
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	s.logger.Info("rpc server stopped")
}
