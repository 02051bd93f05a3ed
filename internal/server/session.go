package server

import (
	"errors"
	"log"
	"strings"
	"unicode/utf8"
)

// errBadEncoding reports inbound bytes that are not valid UTF-8. It is fatal
// for the affected session only.
var errBadEncoding = errors.New("message is not valid UTF-8")

// Session is one connected, possibly-named user. It owns the ability to send
// bytes to its remote peer through tr and is driven by exactly one goroutine
// running Run; the hub may additionally write to tr while holding its lock.
type Session struct {
	hub     *Hub
	tr      Transport
	addr    string
	limiter *rateLimiter

	// name is empty until negotiation succeeds, then immutable.
	name string
}

// NewSession wraps a transport into an unnamed session attached to hub.
func NewSession(hub *Hub, tr Transport) *Session {
	cfg := CurrentConfig()
	return &Session{
		hub:     hub,
		tr:      tr,
		addr:    tr.RemoteAddr(),
		limiter: newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
	}
}

// Run drives the session from connect to disconnect and returns once the
// connection is closed and the session is no longer registered. Every exit
// path, including the explicit quit command and abrupt disconnects, passes
// through the deferred cleanup so the registry entry is always released.
func (s *Session) Run() {
	defer s.cleanup()

	if err := s.negotiate(); err != nil {
		return
	}
	s.chatLoop()
}

// cleanup removes the session from the registry and closes the connection.
// Unregister is idempotent, so a quit command that already removed the name
// makes this a no-op on the registry side.
func (s *Session) cleanup() {
	if s.name != "" {
		s.hub.Unregister(s.name)
	}
	if err := s.tr.Close(); err != nil && !isExpectedCloseError(err) {
		log.Printf("Error closing connection from %s: %v", s.addr, err)
	}
}

// negotiate prompts the peer for a username until registration succeeds.
// Duplicate names re-prompt without bound; the peer deciding how long to
// retry is accepted behavior.
func (s *Session) negotiate() error {
	for {
		if err := s.tr.Send(namePrompt); err != nil {
			log.Printf("Prompt write to %s failed: %v", s.addr, err)
			return err
		}

		raw, err := s.tr.Recv()
		if err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Read error from %s during negotiation: %v", s.addr, err)
			}
			return err
		}
		if !utf8.ValidString(raw) {
			log.Printf("Closing session %s: username is not valid UTF-8", s.addr)
			return errBadEncoding
		}

		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		if s.hub.Register(name, s) {
			s.name = name
			return nil
		}

		if err := s.tr.Send(duplicateNotice); err != nil {
			log.Printf("Duplicate notice write to %s failed: %v", s.addr, err)
			return err
		}
	}
}

// chatLoop reads messages until the peer quits, disconnects, or fails.
func (s *Session) chatLoop() {
	for {
		raw, err := s.tr.Recv()
		if err != nil {
			if isExpectedCloseError(err) {
				log.Printf("User %q (%s) disconnected", s.name, s.addr)
			} else {
				log.Printf("Read error from %q (%s): %v", s.name, s.addr, err)
			}
			return
		}
		if !utf8.ValidString(raw) {
			log.Printf("Closing session of %q (%s): message is not valid UTF-8", s.name, s.addr)
			return
		}

		in := classify(raw)
		switch in.kind {
		case inputEmpty:
			// whitespace-only input carries nothing to relay

		case inputQuit:
			s.hub.Unregister(s.name)
			return

		case inputCommand:
			// reserved for future commands; unknown commands are ignored

		case inputChat:
			if !s.limiter.allow() {
				log.Printf("Rate limit exceeded for %q (%s); discarding message", s.name, s.addr)
				continue
			}
			s.hub.Broadcast(chatRelay(s.name, in.text))
		}
	}
}

// Name returns the negotiated username, or an empty string while the session
// is still unnamed.
func (s *Session) Name() string {
	return s.name
}
