package server

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"
)

// TCPServer owns the plaintext chat listener. Each accepted connection gets
// one goroutine running the session lifecycle; there is no pooling or
// admission control.
type TCPServer struct {
	hub      *Hub
	listener net.Listener
	wg       sync.WaitGroup
}

// NewTCPServer creates a TCP front end feeding connections into hub.
func NewTCPServer(hub *Hub) *TCPServer {
	return &TCPServer{hub: hub}
}

// Listen binds the chat listener to addr.
func (s *TCPServer) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listener address.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until the listener is closed. It returns nil on
// orderly shutdown and the accept error otherwise.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Accept error: %v", err)
			return err
		}
		log.Printf("Connection accepted from %s", conn.RemoteAddr())

		cfg := CurrentConfig()
		sess := NewSession(s.hub, newTCPTransport(conn, cfg.MaxMessageSize))

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sess.Run()
		}()
	}
}

// Shutdown closes the listener so no further connections are accepted, then
// waits up to timeout for running sessions to finish. Connected clients are
// not flushed or notified; sessions that outlive the timeout are reported
// via context.DeadlineExceeded and left to die with the process.
func (s *TCPServer) Shutdown(timeout time.Duration) error {
	log.Println("Shutting down TCP listener...")
	if err := s.listener.Close(); err != nil && !isExpectedCloseError(err) {
		log.Printf("Listener close error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("TCP shutdown completed")
		return nil
	case <-time.After(timeout):
		log.Println("TCP shutdown timeout reached, sessions may still be running")
		return context.DeadlineExceeded
	}
}
