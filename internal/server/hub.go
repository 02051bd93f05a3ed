package server

import (
	"log"
	"sort"
	"sync"
)

// Hub is the registry of online users and the broadcast engine built on it.
// It maps each username to its session and is the single source of truth for
// who is connected: a name is in the map iff that session is online and
// eligible to receive broadcasts.
//
// One coarse mutex guards membership changes and broadcast iteration, so a
// registration's check-then-insert and its join notice form one critical
// section, and a broadcast never observes the map mid-mutation.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	history  *History
	greets   int
}

// NewHub creates a Hub sized from the active configuration, ready to track
// sessions and relay messages.
func NewHub() *Hub {
	cfg := CurrentConfig()
	return &Hub{
		sessions: make(map[string]*Session),
		history:  NewHistory(cfg.HistorySize),
		greets:   cfg.HistoryGreets,
	}
}

// Register claims name for s. It returns false, without side effects, when
// the name is already taken; exactly one of any set of concurrent attempts
// for the same name wins. On success the new session first receives the tail
// of the broadcast history, then the join notice is broadcast to every
// registered session, the new one included.
func (h *Hub) Register(name string, s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, taken := h.sessions[name]; taken {
		return false
	}
	h.sessions[name] = s

	for _, line := range h.history.Tail(h.greets) {
		if err := s.tr.Send(line); err != nil {
			log.Printf("history replay to %q (%s) failed: %v", name, s.addr, err)
			break
		}
	}

	h.broadcastLocked(joinNotice(name))
	log.Printf("User %q registered from %s. Total users: %d", name, s.addr, len(h.sessions))
	return true
}

// Unregister removes name from the registry and broadcasts the departure
// notice to the remaining sessions. Removing an absent name is a no-op, so
// an explicit quit followed by the disconnect cleanup emits one notice only.
func (h *Hub) Unregister(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[name]; !ok {
		return
	}
	delete(h.sessions, name)

	h.broadcastLocked(departNotice(name))
	log.Printf("User %q unregistered. Total users: %d", name, len(h.sessions))
}

// Broadcast records text in the history and delivers it to every registered
// session. Delivery failures are per-recipient: they are logged and never
// abort the remaining sends or surface to the caller.
func (h *Hub) Broadcast(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history.Push(text)
	h.broadcastLocked(text)
}

func (h *Hub) broadcastLocked(text string) {
	for name, s := range h.sessions {
		if err := s.tr.Send(text); err != nil {
			log.Printf("Broadcast to %q (%s) failed: %v", name, s.addr, err)
		}
	}
}

// Users returns the currently registered usernames in sorted order.
func (h *Hub) Users() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.sessions))
	for name := range h.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
